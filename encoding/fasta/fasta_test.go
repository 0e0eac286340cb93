package fasta_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bio-fmindex/fmindex/encoding/fasta"
)

func TestReadReferenceFromStripsHeaderAndNewlines(t *testing.T) {
	const in = ">chr7\nACGTAC\nGAGGAC\nGCG\n"
	name, seq, err := fasta.ReadReferenceFrom(bytes.NewReader([]byte(in)))
	require.NoError(t, err)
	assert.Equal(t, "chr7", name)
	assert.Equal(t, []byte("ACGTACGAGGACGCG"), seq)
}

func TestReadReferenceFromStopsAtSecondSequence(t *testing.T) {
	const in = ">first\nACGT\n>second\nTTTT\n"
	name, seq, err := fasta.ReadReferenceFrom(bytes.NewReader([]byte(in)))
	require.NoError(t, err)
	assert.Equal(t, "first", name)
	assert.Equal(t, []byte("ACGT"), seq)
}

func TestReadReferenceFromHeaderNameStopsAtSpace(t *testing.T) {
	const in = ">chr1 A viral sequence\nACGT\n"
	name, _, err := fasta.ReadReferenceFrom(bytes.NewReader([]byte(in)))
	require.NoError(t, err)
	assert.Equal(t, "chr1", name)
}

func TestReadReferenceFromRejectsMissingHeader(t *testing.T) {
	_, _, err := fasta.ReadReferenceFrom(bytes.NewReader([]byte("ACGT\n")))
	require.Error(t, err)
}

func TestReadReferenceFromRejectsEmpty(t *testing.T) {
	_, _, err := fasta.ReadReferenceFrom(bytes.NewReader(nil))
	require.Error(t, err)
}

func TestReadReferenceGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ref.fasta.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(">chrZ\nACGTNNNNACGT\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	name, seq, err := fasta.ReadReference(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "chrZ", name)
	assert.Equal(t, []byte("ACGTNNNNACGT"), seq)
}

func TestReadReferencePlain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ref.fasta")
	require.NoError(t, os.WriteFile(path, []byte(">plain\nGATTACA\n"), 0o644))

	name, seq, err := fasta.ReadReference(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "plain", name)
	assert.Equal(t, []byte("GATTACA"), seq)
}
