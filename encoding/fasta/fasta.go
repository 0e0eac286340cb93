// Package fasta reads a FASTA-formatted reference sequence. FASTA files
// consist of one or more named sequences that may be interrupted by
// newlines. For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
//
// Sequence names are the stretch of characters excluding spaces immediately
// after '>'. Text after a space is ignored, so '>chr1 A viral sequence'
// becomes 'chr1'.
package fasta

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const (
	mib            = 1024 * 1024
	bufferInitSize = 300 * mib
)

// ReadReference reads the first sequence in a FASTA file at path, stripping
// header and newline characters, and returns its name and raw byte
// sequence. Unlike the general-purpose multi-sequence readers this engine's
// teacher package once offered, ReadReference is built for the aligner's
// single-large-reference use case: it reads one sequence up front rather
// than indexing many for random access. A ".gz"-suffixed path is
// transparently decompressed.
func ReadReference(ctx context.Context, path string) (name string, seq []byte, err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return "", nil, errors.Wrapf(err, "fasta: opening %s", path)
	}
	defer func() {
		if e := f.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()

	r := io.Reader(f.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, gzErr := gzip.NewReader(r)
		if gzErr != nil {
			return "", nil, errors.Wrapf(gzErr, "fasta: opening gzip stream for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return ReadReferenceFrom(r)
}

// ReadReferenceFrom is ReadReference's underlying scanner, exposed
// separately so callers that already have a decompressed reader (e.g. over
// an in-memory buffer in tests) can skip the file/gzip plumbing.
func ReadReferenceFrom(r io.Reader) (name string, seq []byte, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)

	var body strings.Builder
	sawHeader := false
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if sawHeader {
				break // only the first sequence is used
			}
			sawHeader = true
			name = strings.Split(line[1:], " ")[0]
			continue
		}
		if !sawHeader {
			return "", nil, errors.Errorf("fasta: sequence data before header")
		}
		body.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return "", nil, errors.Wrap(err, "fasta: reading reference")
	}
	if !sawHeader || body.Len() == 0 {
		return "", nil, errors.Errorf("fasta: empty or malformed reference file")
	}
	return name, []byte(body.String()), nil
}
