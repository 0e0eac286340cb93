// Package bench runs a fixed timing benchmark of index construction, exact
// search and approximate search, writing a timestamped report file. It has
// no third-party dependency because nothing else in this module's stack
// addresses its concern: wall-clock timing and a timestamped report file are
// served entirely by the standard library.
package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bio-fmindex/fmindex"
	"github.com/bio-fmindex/fmindex/alphabet"
)

const query = "ATCTAGAGAAACAGTTTTGAGCCCTTTTATTTTGCTCAACAGT"

// reference is a synthetic stand-in for the sample genome fragment the
// original benchmark loaded from disk; it is large enough to exercise SA-IS
// and the O-table without requiring a bundled resource file.
func reference() []byte {
	unit := "ACGTACGGTTCAACGGTTAGCATCGATCGGATCAGATTACAGATCTAGAGAAACAGTTTTGAGCCCTTTTATTTTGCTCAACAGTGGCTAGCTAGGATT"
	ref := make([]byte, 0, len(unit)*1000)
	for i := 0; i < 1000; i++ {
		ref = append(ref, unit...)
	}
	return ref
}

// Run builds an index over a synthetic reference, times exact and
// approximate search against a fixed query, and writes the results to
// results/Result_<timestamp>.txt relative to the current directory.
func Run() error {
	if err := os.MkdirAll("results", 0o755); err != nil {
		return err
	}
	filename := filepath.Join("results", fmt.Sprintf("Result_%s.txt", time.Now().Format("2006-01-02T15.04")))
	fmt.Println(filename)

	ref := reference()

	tableStart := time.Now()
	ix, err := fmindex.BuildIndex(ref, alphabet.DNA, fmindex.Config{Spacing: 32})
	if err != nil {
		return err
	}
	tableElapsed := time.Since(tableStart)

	q, err := alphabet.DNA.EncodeQuery([]byte(query))
	if err != nil {
		return err
	}

	exactStart := time.Now()
	lo, hi := ix.ExactSearch(q)
	exactElapsed := time.Since(exactStart)

	approxStart := time.Now()
	revRef := make([]byte, len(ref))
	for i, c := range ref {
		revRef[len(ref)-1-i] = c
	}
	revIx, err := fmindex.BuildIndex(revRef, alphabet.DNA, fmindex.Config{Spacing: 32})
	if err != nil {
		return err
	}
	hits := ix.ApproxSearch(revIx, q, 1)
	approxElapsed := time.Since(approxStart)

	report := fmt.Sprintf(
		"=== TESTS ===\nTable generation took %s\nExact search took %s and yielded [%d, %d)\nApprox search took %s and yielded %d hits\n",
		tableElapsed, exactElapsed, lo, hi, approxElapsed, len(hits),
	)
	return os.WriteFile(filename, []byte(report), 0o644)
}
