/*
fmalign builds an FM-index over a reference FASTA file and aligns query reads
from a FASTQ file against it, reporting exact or approximate matches.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"

	"github.com/bio-fmindex/fmindex"
	"github.com/bio-fmindex/fmindex/alphabet"
	"github.com/bio-fmindex/fmindex/cmd/fmalign/internal/bench"
	"github.com/bio-fmindex/fmindex/encoding/fasta"
	"github.com/bio-fmindex/fmindex/encoding/fastq"
)

var (
	edits           = flag.Int("edits", 0, "Maximum number of edits (substitutions, insertions, deletions) to tolerate per query")
	spacing         = flag.Int("spacing", 32, "O-table sampling spacing; smaller uses more memory and is faster")
	saCachePath     = flag.String("sa-cache", "", "Path to a cached suffix array file; built and written here if absent")
	oTableCachePath = flag.String("otable-cache", "", "Path to a cached O-table file; built and written here if absent")
	out             = flag.String("out", "", "Output TSV path; defaults to stdout")
	dumpOTable      = flag.Bool("debug-dump-otable", false, "Print the O-table to stderr and exit without searching")
	runBench        = flag.Bool("bench", false, "Run the built-in timing benchmark instead of aligning, writing results/Result_<timestamp>.txt")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] reference.fasta[.gz] reads.fastq[.gz]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *runBench {
		if err := bench.Run(); err != nil {
			log.Panicf("%v", err)
		}
		return
	}

	allArgs := flag.Args()
	if len(allArgs) != 2 {
		log.Fatalf("Missing positional arguments (reference.fasta and reads.fastq required); got: '%s'", strings.Join(allArgs, " "))
	}
	ctx := vcontext.Background()

	_, refSeq, err := fasta.ReadReference(ctx, allArgs[0])
	if err != nil {
		log.Panicf("%v", err)
	}

	ix, err := fmindex.BuildIndexCached(ctx, refSeq, alphabet.DNA, fmindex.Config{Spacing: *spacing}, *saCachePath, *oTableCachePath)
	if err != nil {
		log.Panicf("%v", err)
	}

	if *dumpOTable {
		if err := ix.DumpOTable(os.Stderr); err != nil {
			log.Panicf("%v", err)
		}
		return
	}

	var revIx *fmindex.Index
	if *edits > 0 {
		revRefSeq := reverse(refSeq)
		revIx, err = fmindex.BuildIndex(revRefSeq, alphabet.DNA, fmindex.Config{Spacing: *spacing})
		if err != nil {
			log.Panicf("%v", err)
		}
	}

	outFile := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Panicf("%v", err)
		}
		defer f.Close()
		outFile = f
	}
	w := tsv.NewWriter(outFile)
	defer func() {
		if err := w.Flush(); err != nil {
			log.Panicf("%v", err)
		}
	}()

	reader, closeReader, err := fastq.Open(ctx, allArgs[1])
	if err != nil {
		log.Panicf("%v", err)
	}
	defer closeReader()

	scanner := fastq.NewScanner(reader, fastq.ID|fastq.Seq)
	var r fastq.Read
	for scanner.Scan(&r) {
		query, err := alphabet.DNA.EncodeQuery([]byte(r.Seq))
		if err != nil {
			log.Error.Printf("skipping read %s: %v", r.ID, err)
			continue
		}
		var hits []fmindex.Hit
		if *edits == 0 {
			lo, hi := ix.ExactSearch(query)
			if lo < hi {
				hits = []fmindex.Hit{{Lo: lo, Hi: hi, Cigar: strings.Repeat("M", len(query)), Edits: 0}}
			}
		} else {
			hits = ix.ApproxSearch(revIx, query, *edits)
		}
		for _, h := range hits {
			for _, pos := range ix.SAPositions(h.Lo, h.Hi) {
				w.WriteString(r.ID)
				w.WriteInt64(int64(pos))
				w.WriteString(h.Cigar)
				w.WriteInt64(int64(h.Edits))
				if err := w.EndLine(); err != nil {
					log.Panicf("%v", err)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
