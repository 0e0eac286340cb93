// Package sais builds suffix arrays in linear time by induced sorting
// (Nong, Zhang & Chen). It operates on small-alphabet integer sequences
// whose last element is a unique symbol strictly smaller than every other
// element — exactly the shape alphabet.EncodeReference produces.
package sais

import (
	"encoding/binary"

	farm "github.com/dgryski/go-farm"
)

// Build computes the suffix array of text, a sequence of codes in
// [0, sigma). text must end with exactly one occurrence of code 0, smaller
// than every other code; callers (fmindex) are responsible for that
// contract, since a violation here is a ContractViolation rather than a
// value this package can recover from.
func Build(text []byte, sigma int) []int32 {
	s := make([]int32, len(text))
	for i, b := range text {
		s[i] = int32(b)
	}
	return build(s, int32(sigma))
}

func build(s []int32, sigma int32) []int32 {
	n := len(s)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []int32{0}
	}

	isS := buildTypeMap(s)
	lmsFlag := buildLMSFlags(isS)
	lms := collectLMS(lmsFlag)

	sizes := bucketSizes(s, sigma)
	sa := placeLMSApprox(s, sizes, lms)
	induceL(sa, s, isS, bucketHeads(sizes))
	induceS(sa, s, isS, bucketTails(sizes))

	names, numNames := nameLMSSubstrings(s, isS, lmsFlag, sa)

	var sa1 []int32
	if numNames == len(lms) {
		sa1 = make([]int32, len(lms))
		for i, name := range names {
			sa1[name] = int32(i)
		}
	} else {
		sa1 = build(names, int32(numNames))
	}

	return induceFinal(s, sizes, isS, lms, sa1)
}

// buildTypeMap classifies every position as S-type (true) or L-type
// (false): t[n-1] is S by definition, and scanning right to left, t[i] is S
// iff s[i] < s[i+1], or s[i] == s[i+1] and t[i+1] is S.
func buildTypeMap(s []int32) []bool {
	n := len(s)
	t := make([]bool, n)
	t[n-1] = true
	for i := n - 2; i >= 0; i-- {
		switch {
		case s[i] < s[i+1]:
			t[i] = true
		case s[i] > s[i+1]:
			t[i] = false
		default:
			t[i] = t[i+1]
		}
	}
	return t
}

// buildLMSFlags marks the left-most S-type positions: i > 0, t[i] is S, and
// t[i-1] is L.
func buildLMSFlags(isS []bool) []bool {
	n := len(isS)
	flag := make([]bool, n)
	for i := 1; i < n; i++ {
		if isS[i] && !isS[i-1] {
			flag[i] = true
		}
	}
	return flag
}

func collectLMS(lmsFlag []bool) []int32 {
	var lms []int32
	for i, f := range lmsFlag {
		if f {
			lms = append(lms, int32(i))
		}
	}
	return lms
}

func bucketSizes(s []int32, sigma int32) []int32 {
	sizes := make([]int32, sigma)
	for _, c := range s {
		sizes[c]++
	}
	return sizes
}

func bucketHeads(sizes []int32) []int32 {
	heads := make([]int32, len(sizes))
	var sum int32
	for i, sz := range sizes {
		heads[i] = sum
		sum += sz
	}
	return heads
}

func bucketTails(sizes []int32) []int32 {
	tails := make([]int32, len(sizes))
	var sum int32
	for i, sz := range sizes {
		sum += sz
		tails[i] = sum - 1
	}
	return tails
}

// placeLMSApprox drops every LMS suffix into the tail of its symbol's
// bucket, in the order the suffixes occur in the text. Relative order
// within a bucket is not yet correct; induceL/induceS below fix that up.
func placeLMSApprox(s []int32, sizes []int32, lms []int32) []int32 {
	n := len(s)
	sa := make([]int32, n)
	for i := range sa {
		sa[i] = -1
	}
	tails := bucketTails(sizes)
	for _, idx := range lms {
		c := s[idx]
		sa[tails[c]] = idx
		tails[c]--
	}
	return sa
}

// induceL scans SA left to right; whenever SA[i]-1 is an L-type position it
// is written to the current head of its bucket.
func induceL(sa []int32, s []int32, isS []bool, heads []int32) {
	for i := 0; i < len(sa); i++ {
		if sa[i] < 1 {
			continue
		}
		j := sa[i] - 1
		if !isS[j] {
			c := s[j]
			sa[heads[c]] = j
			heads[c]++
		}
	}
}

// induceS scans SA right to left; whenever SA[i]-1 is an S-type position it
// is written to the current tail of its bucket.
func induceS(sa []int32, s []int32, isS []bool, tails []int32) {
	for i := len(sa) - 1; i >= 0; i-- {
		if sa[i] < 1 {
			continue
		}
		j := sa[i] - 1
		if isS[j] {
			c := s[j]
			sa[tails[c]] = j
			tails[c]--
		}
	}
}

// nameLMSSubstrings walks the (now LMS-correctly-ordered) sa and assigns
// each LMS substring a name equal to its rank among distinct LMS
// substrings. It returns the reduced string S1 — names in the original
// left-to-right order the LMS positions occur in the text — and the number
// of distinct names assigned.
func nameLMSSubstrings(s []int32, isS []bool, lmsFlag []bool, sa []int32) ([]int32, int) {
	n := len(s)
	nameOf := make([]int32, n)
	for i := range nameOf {
		nameOf[i] = -1
	}

	hashes := lmsSubstringHashes(s, lmsFlag)

	var currentName int32 = -1
	var prev int32 = -1
	for _, idx := range sa {
		if !lmsFlag[idx] {
			continue
		}
		if prev == -1 {
			currentName = 0
		} else if hashes[prev] != hashes[idx] || !lmsSubstringsEqual(s, isS, lmsFlag, prev, idx) {
			currentName++
		}
		nameOf[idx] = currentName
		prev = idx
	}

	var names []int32
	for i, flag := range lmsFlag {
		if flag {
			names = append(names, nameOf[i])
		}
	}
	return names, int(currentName) + 1
}

// lmsSubstringHashes returns, for every LMS position, a hash of the codes
// from that position through the next LMS boundary inclusive.
// It is used only as a cheap inequality pre-filter ahead of
// lmsSubstringsEqual — a hash collision always falls back to the exact
// comparison, so it cannot itself cause two distinct substrings to be
// merged.
func lmsSubstringHashes(s []int32, lmsFlag []bool) []uint64 {
	n := len(s)
	hashes := make([]uint64, n)
	var buf []byte
	var tmp [4]byte
	for i, flag := range lmsFlag {
		if !flag {
			continue
		}
		buf = buf[:0]
		for k := 0; ; k++ {
			at := i + k
			binary.LittleEndian.PutUint32(tmp[:], uint32(s[at]))
			buf = append(buf, tmp[:]...)
			if at == n-1 || (k > 0 && lmsFlag[at]) {
				break
			}
		}
		hashes[i] = farm.Hash64(buf)
	}
	return hashes
}

func lmsSubstringsEqual(s []int32, isS []bool, lmsFlag []bool, i, j int32) bool {
	if i == j {
		return true
	}
	n := int32(len(s))
	if i == n-1 || j == n-1 {
		return false
	}
	for k := int32(0); ; k++ {
		iAt, jAt := i+k, j+k
		iBound := k > 0 && lmsFlag[iAt]
		jBound := k > 0 && lmsFlag[jAt]
		if iBound && jBound {
			return true
		}
		if iBound != jBound {
			return false
		}
		if s[iAt] != s[jAt] || isS[iAt] != isS[jAt] {
			return false
		}
	}
}

// induceFinal places the LMS suffixes in their now-exact order (derived
// from SA1, the suffix array of the reduced string) and re-runs the L/S
// induction passes to produce the final suffix array.
func induceFinal(s []int32, sizes []int32, isS []bool, lms []int32, sa1 []int32) []int32 {
	n := len(s)
	sa := make([]int32, n)
	for i := range sa {
		sa[i] = -1
	}
	tails := bucketTails(sizes)
	for i := len(sa1) - 1; i >= 0; i-- {
		origPos := lms[sa1[i]]
		c := s[origPos]
		sa[tails[c]] = origPos
		tails[c]--
	}
	induceL(sa, s, isS, bucketHeads(sizes))
	induceS(sa, s, isS, bucketTails(sizes))
	return sa
}
