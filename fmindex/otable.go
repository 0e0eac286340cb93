package fmindex

import (
	"fmt"
	"io"
)

// oTable is spec component §4.4, the sampled Occ rank table. Row a holds
// Occ(a, q*spacing) for q in [0, len(row)); intermediate values are
// recovered by scanning the virtual BWT over (codes, sa). The sentinel row
// is kept implicit: the sentinel occurs exactly once, so its Occ is a step
// function recorded as a single index.
type oTable struct {
	codes   []byte
	sa      []int32
	sigma   int
	spacing int

	// rows[a-1][q] = Occ(a, q*spacing) for non-sentinel symbol a.
	rows [][]int32

	// sentinelFirstOccAt is the smallest i with Occ(sentinel, i) == 1.
	sentinelFirstOccAt int
}

func buildOTable(codes []byte, sa []int32, sigma, spacing int) *oTable {
	if spacing < 1 {
		panicContract("O-table spacing must be >= 1, got %d", spacing)
	}
	n := len(codes)
	sampledRows := n/spacing + 1

	rows := make([][]int32, sigma-1)
	for a := range rows {
		rows[a] = make([]int32, sampledRows)
	}

	counts := make([]int32, sigma)
	sentinelFirstOccAt := -1
	for i := 1; i <= n; i++ {
		c := bwtAt(codes, sa, i-1)
		counts[c]++
		if c == 0 && sentinelFirstOccAt == -1 {
			sentinelFirstOccAt = i
		}
		if i%spacing == 0 {
			q := i / spacing
			for a := 1; a < sigma; a++ {
				rows[a-1][q] = counts[a]
			}
		}
	}
	if sentinelFirstOccAt == -1 {
		panicContract("reference has no sentinel in its BWT")
	}

	return &oTable{
		codes:              codes,
		sa:                 sa,
		sigma:              sigma,
		spacing:            spacing,
		rows:               rows,
		sentinelFirstOccAt: sentinelFirstOccAt,
	}
}

// bwtAt returns BWT[i] = R[(SA[i]-1) mod n].
func bwtAt(codes []byte, sa []int32, i int) byte {
	n := len(codes)
	pos := int(sa[i]) - 1
	if pos < 0 {
		pos += n
	}
	return codes[pos]
}

// lookup returns Occ(a, i): the number of occurrences of a in BWT[0..i).
func (o *oTable) lookup(a byte, i int) int {
	n := len(o.codes)
	if i < 0 || i > n {
		panicContract("Occ(%d, %d) out of range for reference of length %d", a, i, n)
	}
	if int(a) < 0 || int(a) >= o.sigma {
		panicContract("Occ(%d, _) symbol out of range for alphabet of size %d", a, o.sigma)
	}
	if a == 0 {
		if i >= o.sentinelFirstOccAt {
			return 1
		}
		return 0
	}

	row := o.rows[a-1]
	q, r := i/o.spacing, i%o.spacing
	count := int(row[q])
	base := q * o.spacing
	for k := 0; k < r; k++ {
		if bwtAt(o.codes, o.sa, base+k) == a {
			count++
		}
	}
	return count
}

// dumpOTable renders the sampled O-table alongside a BWT header row, in the
// tabular form the original prototype used for visual debugging. It is not
// a substitute for the sampled representation: this walks the full BWT via
// on-demand lookups, so it is O(n*sigma) and intended for small references.
func dumpOTable(w io.Writer, ix *Index) error {
	n := len(ix.codes)
	if _, err := fmt.Fprintf(w, "%3s", ""); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		c := ix.alphabet.Symbol(bwtAt(ix.codes, ix.sa, i))
		if _, err := fmt.Fprintf(w, "%3c", c); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for code := 0; code < ix.alphabet.Size(); code++ {
		c := ix.alphabet.Symbol(byte(code))
		if _, err := fmt.Fprintf(w, "%3c", c); err != nil {
			return err
		}
		for i := 0; i <= n; i++ {
			if _, err := fmt.Fprintf(w, "%3d", ix.oTable.lookup(byte(code), i)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
