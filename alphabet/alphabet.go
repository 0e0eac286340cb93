// Package alphabet maps external byte sequences onto the compact integer
// codes the FM-index core operates on. Code 0 is always the sentinel: it is
// strictly smaller than every other symbol and never appears in an external
// string.
package alphabet

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel is the code of the unique sentinel symbol. It is reserved; no
// configured alphabet symbol may use it.
const Sentinel byte = 0

// maxSize bounds sigma (including the sentinel) so that codes fit in a byte,
// which keeps the remapped reference and BWT scans cheap.
const maxSize = 1 << 8

// InvalidSymbol is returned when an external byte does not belong to the
// configured alphabet.
type InvalidSymbol struct {
	Byte byte
}

func (e *InvalidSymbol) Error() string {
	return fmt.Sprintf("invalid symbol %q (0x%02x)", rune(e.Byte), e.Byte)
}

// Alphabet is an ordered, non-sentinel symbol set. Alphabet{} (zero value)
// is not valid; construct with New.
type Alphabet struct {
	symbols []byte   // symbols[i-1] has code i, i in [1, len(symbols)]
	code    [256]int16 // code[b] = code of byte b, or -1 if b is not in the alphabet
}

// New builds an Alphabet from an ordered list of non-sentinel symbols, e.g.
// []byte("ACGT"). Symbols must be distinct and non-empty; their count plus
// the sentinel must fit in a byte.
func New(symbols []byte) (Alphabet, error) {
	if len(symbols) == 0 {
		return Alphabet{}, errors.New("alphabet: symbol list must be non-empty")
	}
	if len(symbols)+1 > maxSize {
		return Alphabet{}, errors.Errorf("alphabet: %d symbols (plus sentinel) exceeds maximum of %d", len(symbols), maxSize-1)
	}
	a := Alphabet{symbols: append([]byte(nil), symbols...)}
	for i := range a.code {
		a.code[i] = -1
	}
	for i, b := range a.symbols {
		if int(a.code[b]) != -1 {
			return Alphabet{}, errors.Errorf("alphabet: duplicate symbol %q", rune(b))
		}
		a.code[b] = int16(i + 1)
	}
	return a, nil
}

// MustNew is like New but panics on error; intended for package-level
// alphabet literals such as DNA.
func MustNew(symbols []byte) Alphabet {
	a, err := New(symbols)
	if err != nil {
		panic(err)
	}
	return a
}

// DNA is the conventional small alphabet used throughout the test
// scenarios: sentinel, then A, C, G, T.
var DNA = MustNew([]byte("ACGT"))

// Size returns sigma, the alphabet size including the sentinel.
func (a Alphabet) Size() int {
	return len(a.symbols) + 1
}

// Symbol returns the external byte for a non-sentinel code, or '$' for the
// sentinel itself. It panics if code is out of range: an out-of-range code
// can only arise from a bug in the core, which is a ContractViolation.
func (a Alphabet) Symbol(code byte) byte {
	if code == Sentinel {
		return '$'
	}
	idx := int(code) - 1
	if idx < 0 || idx >= len(a.symbols) {
		panic(errors.Errorf("alphabet: code %d out of range for alphabet of size %d", code, a.Size()))
	}
	return a.symbols[idx]
}

func (a Alphabet) encode(s []byte) ([]byte, error) {
	out := make([]byte, len(s))
	for i, b := range s {
		c := a.code[b]
		if c < 0 {
			return nil, errors.Wrapf(&InvalidSymbol{Byte: b}, "alphabet: position %d", i)
		}
		out[i] = byte(c)
	}
	return out, nil
}

// EncodeReference remaps a reference string into codes and appends the one
// and only sentinel. s must not already contain a sentinel; every byte of s
// must be in the alphabet.
func (a Alphabet) EncodeReference(s []byte) ([]byte, error) {
	codes, err := a.encode(s)
	if err != nil {
		return nil, err
	}
	return append(codes, Sentinel), nil
}

// EncodeQuery remaps a query string into codes without appending a
// sentinel.
func (a Alphabet) EncodeQuery(s []byte) ([]byte, error) {
	return a.encode(s)
}

// Decode renders a code sequence back into external bytes, mapping the
// sentinel to '$'. It is intended for debug output, not round-tripping.
func (a Alphabet) Decode(codes []byte) []byte {
	out := make([]byte, len(codes))
	for i, c := range codes {
		out[i] = a.Symbol(c)
	}
	return out
}
