package fmindex

// hitKey identifies a result tuple for the set-dedup spec §4.7 and §9
// require: distinct recursion paths that land on the same (lo, hi, cigar)
// must collapse into one hit.
type hitKey struct {
	lo, hi int
	cigar  string
}

// ApproxSearch implements spec §4.7: branch-and-bound approximate search
// over the forward index, pruned by the D-table built from rev (the
// reverse reference's index). query must already be remapped codes (see
// alphabet.EncodeQuery). The result is a deduplicated slice, order
// unspecified beyond that.
func (ix *Index) ApproxSearch(rev *Index, query []byte, edits int) []Hit {
	seen := make(map[hitKey]struct{})
	var out []Hit

	d := buildDTable(rev, query)
	ix.approxRecurse(query, len(query)-1, edits, 0, len(ix.codes), d, "", 0, seen, &out)
	return out
}

func (ix *Index) emit(lo, hi int, cigar string, editsUsed int, seen map[hitKey]struct{}, out *[]Hit) {
	if lo >= hi {
		return
	}
	key := hitKey{lo, hi, cigar}
	if _, ok := seen[key]; ok {
		return
	}
	seen[key] = struct{}{}
	*out = append(*out, Hit{Lo: lo, Hi: hi, Cigar: cigar, Edits: editsUsed})
}

func (ix *Index) approxRecurse(query []byte, i, editsLeft, lo, hi int, d []int, cigar string, editsUsed int, seen map[hitKey]struct{}, out *[]Hit) {
	lowerBound := 0
	if i >= 0 {
		lowerBound = d[i]
	}
	if editsLeft < lowerBound {
		return
	}

	if i < 0 {
		ix.emit(lo, hi, cigar, editsUsed, seen, out)
		return
	}

	sigma := ix.alphabet.Size()

	// Match / substitute.
	for a := 1; a < sigma; a++ {
		sym := byte(a)
		newLo := ix.cTable.bucketStart(sym) + ix.oTable.lookup(sym, lo)
		newHi := ix.cTable.bucketStart(sym) + ix.oTable.lookup(sym, hi)
		if newLo >= newHi {
			continue
		}
		cost := 1
		op := byte('S')
		if sym == query[i] {
			cost = 0
			op = 'M'
		}
		if editsLeft-cost < 0 {
			continue
		}
		ix.approxRecurse(query, i-1, editsLeft-cost, newLo, newHi, d, string(op)+cigar, editsUsed+cost, seen, out)
	}

	// Insertion in query: consume query[i] without advancing the
	// reference. Pruning at the next call's entry handles edits_left
	// going negative, matching the reference recursion.
	ix.approxRecurse(query, i-1, editsLeft-1, lo, hi, d, "I"+cigar, editsUsed+1, seen, out)

	// Deletion from query: advance the reference without consuming
	// query[i]. Not branched before the last query symbol is consumed, so
	// no CIGAR ends in D.
	if i == len(query)-1 {
		return
	}
	for a := 1; a < sigma; a++ {
		sym := byte(a)
		newLo := ix.cTable.bucketStart(sym) + ix.oTable.lookup(sym, lo)
		newHi := ix.cTable.bucketStart(sym) + ix.oTable.lookup(sym, hi)
		if newLo >= newHi {
			continue
		}
		ix.approxRecurse(query, i, editsLeft-1, newLo, newHi, d, "D"+cigar, editsUsed+1, seen, out)
	}
}
