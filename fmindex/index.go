// Package fmindex implements the FM-index core: the C-table, the sampled
// O-table, exact backward search, the D-table lower bound, and the
// bounded-edit approximate search that uses it to prune branch-and-bound
// recursion. See package sais for suffix-array construction and package
// alphabet for the symbol remapper that feeds it.
package fmindex

import (
	"io"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/bio-fmindex/fmindex/alphabet"
	"github.com/bio-fmindex/fmindex/sais"
)

// Config is the engine's enumerated configuration (spec §6): the O-table
// sample spacing. The alphabet is passed to BuildIndex separately, and
// edits (k) is a per-search parameter, not a build-time one, passed
// directly to ApproxSearch.
type Config struct {
	// Spacing is the O-table sample period S. Larger values use less
	// memory and cost more per lookup; it must be >= 1.
	Spacing int
}

// Hit is a single approximate-search result: the SA interval [Lo, Hi), the
// CIGAR string over {M, S, I, D}, and the edit count.
type Hit struct {
	Lo, Hi int
	Cigar  string
	Edits  int
}

// Index is a built FM-index: an immutable suffix array, C-table, and
// O-table over a remapped reference. It is safe for concurrent reads —
// ExactSearch, ApproxSearch, and SAPositions allocate no shared mutable
// state.
type Index struct {
	alphabet alphabet.Alphabet
	codes    []byte // remapped reference, sentinel-terminated
	sa       []int32
	cTable   cTable
	oTable   *oTable
}

// BuildIndex remaps reference through alpha, runs SA-IS, and builds the
// C-table and O-table. reference must not already contain sentinel bytes;
// alpha.EncodeReference enforces that.
func BuildIndex(reference []byte, alpha alphabet.Alphabet, cfg Config) (*Index, error) {
	if cfg.Spacing < 1 {
		return nil, errors.Errorf("fmindex: spacing must be >= 1, got %d", cfg.Spacing)
	}
	codes, err := alpha.EncodeReference(reference)
	if err != nil {
		return nil, errors.Wrap(err, "fmindex: remapping reference")
	}
	if len(codes) < 2 {
		return nil, EmptyReference{}
	}

	log.Debug.Printf("fmindex: building suffix array for %d codes", len(codes))
	sa := sais.Build(codes, alpha.Size())

	ct := buildCTable(codes, alpha.Size())
	ot := buildOTable(codes, sa, alpha.Size(), cfg.Spacing)

	return &Index{
		alphabet: alpha,
		codes:    codes,
		sa:       sa,
		cTable:   ct,
		oTable:   ot,
	}, nil
}

// ExactSearch implements spec §4.5: backward search over query, which must
// already be remapped codes (see alphabet.EncodeQuery), not raw external
// bytes. It returns the SA interval [lo, hi) of all reference positions
// where query occurs; lo >= hi means query does not occur.
func (ix *Index) ExactSearch(query []byte) (lo, hi int) {
	lo, hi = 0, len(ix.codes)
	for i := len(query) - 1; i >= 0; i-- {
		a := query[i]
		lo = ix.cTable.bucketStart(a) + ix.oTable.lookup(a, lo)
		hi = ix.cTable.bucketStart(a) + ix.oTable.lookup(a, hi)
		if lo >= hi {
			return lo, hi
		}
	}
	return lo, hi
}

// SAPositions returns the reference offsets SA[lo:hi], the occurrence
// positions of whatever query produced this interval.
func (ix *Index) SAPositions(lo, hi int) []int {
	if lo < 0 || hi > len(ix.sa) || lo > hi {
		panicContract("SAPositions(%d, %d) out of range for SA of length %d", lo, hi, len(ix.sa))
	}
	out := make([]int, hi-lo)
	for i := range out {
		out[i] = int(ix.sa[lo+i])
	}
	return out
}

// Len returns the length of the remapped reference, sentinel included.
func (ix *Index) Len() int {
	return len(ix.codes)
}

// DumpOTable renders the sampled O-table and the BWT header row in tabular
// form, for visual debugging of small indices (original_source's
// o_table.rs Display impl).
func (ix *Index) DumpOTable(w io.Writer) error {
	return dumpOTable(w, ix)
}
