package fmindex_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bio-fmindex/fmindex"
	"github.com/bio-fmindex/fmindex/alphabet"
)

// TestBuildIndexCachedRoundTrip persists the SA and O-table, reloads them
// into a second index, and checks that a fixed set of exact searches agree -
// the spec's round-trip testable property.
func TestBuildIndexCachedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	saPath := filepath.Join(dir, "ref.sa")
	oPath := filepath.Join(dir, "ref.otable")

	refStr := "ACGTATCGTGACGGGCTATAGCGATGTCGATGC"
	ctx := context.Background()

	ix1, err := fmindex.BuildIndexCached(ctx, []byte(refStr), alphabet.DNA, fmindex.Config{Spacing: 4}, saPath, oPath)
	require.NoError(t, err)

	_, statErr := os.Stat(saPath)
	require.NoError(t, statErr)
	_, statErr = os.Stat(oPath)
	require.NoError(t, statErr)

	ix2, err := fmindex.BuildIndexCached(ctx, []byte(refStr), alphabet.DNA, fmindex.Config{Spacing: 4}, saPath, oPath)
	require.NoError(t, err)

	for _, q := range []string{"ACGT", "GATG", "CGTGAC", "TTTT", "C"} {
		query, err := alphabet.DNA.EncodeQuery([]byte(q))
		require.NoError(t, err)
		lo1, hi1 := ix1.ExactSearch(query)
		lo2, hi2 := ix2.ExactSearch(query)
		require.Equal(t, lo1, lo2)
		require.Equal(t, hi1, hi2)
	}
}

// TestBuildIndexCachedRebuildsOnReferenceChange verifies the fingerprint
// check: pointing the same cache paths at a different reference must not
// silently reuse the stale suffix array or O-table.
func TestBuildIndexCachedRebuildsOnReferenceChange(t *testing.T) {
	dir := t.TempDir()
	saPath := filepath.Join(dir, "ref.sa")
	oPath := filepath.Join(dir, "ref.otable")
	ctx := context.Background()

	_, err := fmindex.BuildIndexCached(ctx, []byte("ACGTACGTACGT"), alphabet.DNA, fmindex.Config{Spacing: 4}, saPath, oPath)
	require.NoError(t, err)

	ix2, err := fmindex.BuildIndexCached(ctx, []byte("TTTTGGGGCCCC"), alphabet.DNA, fmindex.Config{Spacing: 4}, saPath, oPath)
	require.NoError(t, err)

	query, err := alphabet.DNA.EncodeQuery([]byte("TTTT"))
	require.NoError(t, err)
	lo, hi := ix2.ExactSearch(query)
	require.Less(t, lo, hi)
}
