package fmindex

// buildDTable implements spec §4.6: a monotone lower bound on the edits
// needed to match query[0..i] against the reference, computed via backward
// search on rev, the reverse reference's FM-index.
func buildDTable(rev *Index, query []byte) []int {
	// [start, end] is the current SA interval shifted up by one, so (1, n)
	// is the whole suffix array.
	n := len(rev.codes)
	start, end := 1, n
	editsLeft := 0

	d := make([]int, len(query))
	for i, a := range query {
		start = rev.cTable.bucketStart(a) + rev.oTable.lookup(a, start-1) + 1
		end = rev.cTable.bucketStart(a) + rev.oTable.lookup(a, end)
		if start > end {
			start, end = 1, n
			editsLeft++
		}
		d[i] = editsLeft
	}
	return d
}
