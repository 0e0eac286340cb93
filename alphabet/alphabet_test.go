package alphabet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bio-fmindex/fmindex/alphabet"
)

func TestEncodeReferenceAppendsSentinel(t *testing.T) {
	a := alphabet.DNA
	codes, err := a.EncodeReference([]byte("ACGT"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, alphabet.Sentinel}, codes)
}

func TestEncodeQueryNoSentinel(t *testing.T) {
	a := alphabet.DNA
	codes, err := a.EncodeQuery([]byte("ACGT"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, codes)
}

func TestEncodeRejectsUnknownSymbol(t *testing.T) {
	a := alphabet.DNA
	_, err := a.EncodeQuery([]byte("ACGN"))
	require.Error(t, err)
	var invalid *alphabet.InvalidSymbol
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, byte('N'), invalid.Byte)
}

func TestDecodeRoundTrip(t *testing.T) {
	a := alphabet.DNA
	codes, err := a.EncodeReference([]byte("ACGT"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ACGT$"), a.Decode(codes))
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := alphabet.New([]byte("ACGA"))
	require.Error(t, err)
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := alphabet.New(nil)
	require.Error(t, err)
}

func TestSizeIncludesSentinel(t *testing.T) {
	assert.Equal(t, 5, alphabet.DNA.Size())
}
