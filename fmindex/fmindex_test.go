package fmindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bio-fmindex/fmindex"
	"github.com/bio-fmindex/fmindex/alphabet"
)

func build(t *testing.T, ref string, spacing int) *fmindex.Index {
	t.Helper()
	ix, err := fmindex.BuildIndex([]byte(ref), alphabet.DNA, fmindex.Config{Spacing: spacing})
	require.NoError(t, err)
	return ix
}

func encodeQuery(t *testing.T, q string) []byte {
	t.Helper()
	codes, err := alphabet.DNA.EncodeQuery([]byte(q))
	require.NoError(t, err)
	return codes
}

func reverseBytes(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func TestBuildIndexRejectsEmptyReference(t *testing.T) {
	_, err := fmindex.BuildIndex(nil, alphabet.DNA, fmindex.Config{Spacing: 4})
	require.Error(t, err)
	assert.IsType(t, fmindex.EmptyReference{}, err)
}

func TestBuildIndexRejectsBadSpacing(t *testing.T) {
	_, err := fmindex.BuildIndex([]byte("ACGT"), alphabet.DNA, fmindex.Config{Spacing: 0})
	require.Error(t, err)
}

func TestExactSearchFindsAllOccurrences(t *testing.T) {
	ix := build(t, "AGATAGATTCACA", 4)
	lo, hi := ix.ExactSearch(encodeQuery(t, "AGAT"))
	require.Less(t, lo, hi)
	positions := ix.SAPositions(lo, hi)
	assert.ElementsMatch(t, []int{0, 4}, positions)
}

func TestExactSearchEmptyQueryReturnsWholeRange(t *testing.T) {
	ix := build(t, "ACGT", 4)
	lo, hi := ix.ExactSearch(nil)
	assert.Equal(t, 0, lo)
	assert.Equal(t, ix.Len(), hi)
}

func TestExactSearchMiss(t *testing.T) {
	ix := build(t, "AGATAGATTCACA", 4)
	lo, hi := ix.ExactSearch(encodeQuery(t, "GGGG"))
	assert.GreaterOrEqual(t, lo, hi)
}

func TestExactSearchQueryLongerThanReference(t *testing.T) {
	ix := build(t, "AC", 4)
	lo, hi := ix.ExactSearch(encodeQuery(t, "ACGTACGT"))
	assert.GreaterOrEqual(t, lo, hi)
}

func TestSAPermutationAndSorted(t *testing.T) {
	const refStr = "AGATAGATTCACA"
	ix := build(t, refStr, 4)
	positions := ix.SAPositions(0, ix.Len())
	seen := make([]bool, len(positions))
	for _, p := range positions {
		require.False(t, seen[p])
		seen[p] = true
	}
	// The sentinel suffix is refStr[n-1:] == "", which sorts first.
	for i := 1; i < len(positions); i++ {
		require.Less(t, refStr[positions[i-1]:], refStr[positions[i]:])
	}
}

func TestApproxSearchKZeroEqualsExactSearch(t *testing.T) {
	refStr := "AGATAGATTCACA"
	revStr := reverseBytes(refStr)
	ix := build(t, refStr, 4)
	rev := build(t, revStr, 4)

	query := encodeQuery(t, "ATT")
	lo, hi := ix.ExactSearch(query)
	hits := ix.ApproxSearch(rev, query, 0)

	if lo < hi {
		require.Len(t, hits, 1)
		assert.Equal(t, lo, hits[0].Lo)
		assert.Equal(t, hi, hits[0].Hi)
		assert.Equal(t, 0, hits[0].Edits)
		assert.Equal(t, "MMM", hits[0].Cigar)
	} else {
		assert.Empty(t, hits)
	}
}

func TestApproxSearchKZeroSubstitutedQueryIsEmpty(t *testing.T) {
	refStr := "AGATAGATTCACA"
	ix := build(t, refStr, 4)
	rev := build(t, reverseBytes(refStr), 4)

	hits := ix.ApproxSearch(rev, encodeQuery(t, "ATG"), 0)
	assert.Empty(t, hits)
}

func TestApproxSearchTighterBudgetNeverFindsMore(t *testing.T) {
	refStr := "AGATAGATTCACA"
	ix := build(t, refStr, 4)
	rev := build(t, reverseBytes(refStr), 4)
	query := encodeQuery(t, "ATTGGG")

	hits1 := ix.ApproxSearch(rev, query, 1)
	hits0 := ix.ApproxSearch(rev, query, 0)
	// A tighter edit budget can never find more than a looser one: every
	// path within budget 0 is also within budget 1.
	assert.LessOrEqual(t, len(hits0), len(hits1))
}

func TestApproxSearchNeverReturnsEmptyInterval(t *testing.T) {
	refStr := "AGATAGATTCACA"
	ix := build(t, refStr, 4)
	rev := build(t, reverseBytes(refStr), 4)
	hits := ix.ApproxSearch(rev, encodeQuery(t, "ATT"), 1)
	for _, h := range hits {
		assert.Less(t, h.Lo, h.Hi)
	}
}
