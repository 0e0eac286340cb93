package sais_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bio-fmindex/fmindex/alphabet"
	"github.com/bio-fmindex/fmindex/sais"
)

func buildRef(t *testing.T, s string) []byte {
	t.Helper()
	codes, err := alphabet.DNA.EncodeReference([]byte(s))
	require.NoError(t, err)
	return codes
}

func TestBuildMatchesScenario7(t *testing.T) {
	codes := buildRef(t, "CCAATTAATTAAGGAA")
	sa := sais.Build(codes, alphabet.DNA.Size())
	want := []int32{16, 15, 14, 10, 6, 2, 11, 7, 3, 1, 0, 13, 12, 9, 5, 8, 4}
	assert.Equal(t, want, sa)
}

func TestBuildSinglePosition(t *testing.T) {
	codes, err := alphabet.DNA.EncodeReference(nil)
	require.NoError(t, err)
	sa := sais.Build(codes, alphabet.DNA.Size())
	assert.Equal(t, []int32{0}, sa)
}

func TestBuildRepeatedSymbol(t *testing.T) {
	codes := buildRef(t, "AAAAAA")
	sa := sais.Build(codes, alphabet.DNA.Size())
	n := len(codes)
	want := make([]int32, n)
	for i := 0; i < n; i++ {
		want[i] = int32(n - 1 - i)
	}
	assert.Equal(t, want, sa)
}

func TestBuildIsPermutationAndSorted(t *testing.T) {
	codes := buildRef(t, "AGATAGATTCACA")
	sa := sais.Build(codes, alphabet.DNA.Size())
	n := len(codes)
	require.Len(t, sa, n)

	seen := make([]bool, n)
	for _, v := range sa {
		require.False(t, seen[v], "duplicate SA entry %d", v)
		seen[v] = true
	}

	suffix := func(i int32) []byte { return codes[i:] }
	for i := 0; i < n-1; i++ {
		a, b := suffix(sa[i]), suffix(sa[i+1])
		require.LessOrEqual(t, compareBytes(a, b), 0, "SA not sorted at %d", i)
	}
	assert.Equal(t, int32(n-1), sa[0], "sentinel suffix must sort first")
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
