// Package swar synthesizes, from a set of known headers grouped by exact
// name length, a branchless-within-a-bucket ordinal-case-insensitive
// matcher against bytes starting at a given offset — the SWAR ("SIMD
// within a register") matcher synthesizer of spec.md §4.3.
package swar

import (
	"encoding/binary"

	"github.com/hexinfra/fielddict/internal/fieldreg"
)

// Term is one masked word-compare: load w bytes at Offset, AND with Mask,
// compare to Comparand. Mask/Comparand are stored widened to uint64 so
// Width selects how many low bytes of each are meaningful.
type Term struct {
	Width     int // 8, 4, 2, or 1
	Offset    int
	Mask      uint64
	Comparand uint64
}

// Candidate is one header's full match condition: the AND of every Term.
type Candidate struct {
	Header *fieldreg.Header
	Terms  []Term
}

// Group coalesces candidates that share an identical first term: the first
// term is tested once, then each member's remaining terms are tested
// independently (spec.md §4.3 "Grouping within a bucket").
type Group struct {
	First   Term
	Members []Candidate // Terms[0] omitted; Members[i].Terms holds the rest
}

// Bucket holds every known header of one exact byte length, grouped for
// emission, in Ordering Policy order (spec.md §4.3 "Ordering within the
// generated cascade").
type Bucket struct {
	Length int
	Groups []Group
}

// maskByte is 0xDF ("upper-case letter or itself") when b is an ASCII
// letter, else 0xFF (exact byte match demanded). This is the rule spec.md
// §4.3's correctness property P3 pins down: folding only ever applies to
// the 0x40-0x5A/0x60-0x7A letter ranges.
func maskByte(b byte) byte {
	if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') {
		return 0xDF
	}
	return 0xFF
}

// terms greedily consumes len(name) bytes in descending word sizes
// 8, 4, 2, 1 starting at offset 0, one Term per chunk (spec.md §4.3 step 1).
func terms(name string) []Term {
	var out []Term
	offset := 0
	remaining := len(name)
	for _, w := range []int{8, 4, 2, 1} {
		for remaining >= w {
			var mask, comparand uint64
			for k := 0; k < w; k++ {
				b := name[offset+k]
				m := maskByte(b)
				mask |= uint64(m) << uint(8*k)
				comparand |= uint64(b&m) << uint(8*k)
			}
			out = append(out, Term{Width: w, Offset: offset, Mask: mask, Comparand: comparand})
			offset += w
			remaining -= w
		}
	}
	return out
}

// BuildBuckets partitions headers (already ordered by fieldreg.Order) by
// Name length and coalesces each bucket's headers into first-term groups,
// preserving the input order within and across groups.
func BuildBuckets(headers []fieldreg.Header) []Bucket {
	byLength := make(map[int][]fieldreg.Header)
	var lengths []int
	for _, h := range headers {
		if _, ok := byLength[len(h.Name)]; !ok {
			lengths = append(lengths, len(h.Name))
		}
		byLength[len(h.Name)] = append(byLength[len(h.Name)], h)
	}
	sortInts(lengths)

	buckets := make([]Bucket, 0, len(lengths))
	for _, length := range lengths {
		buckets = append(buckets, Bucket{Length: length, Groups: groupBucket(byLength[length])})
	}
	return buckets
}

func groupBucket(headers []fieldreg.Header) []Group {
	var groups []Group
	index := make(map[Term]int) // first-term -> index into groups
	for i := range headers {
		h := &headers[i]
		ts := terms(h.Name)
		first := ts[0]
		rest := ts[1:]
		if gi, ok := index[first]; ok {
			groups[gi].Members = append(groups[gi].Members, Candidate{Header: h, Terms: rest})
			continue
		}
		index[first] = len(groups)
		groups = append(groups, Group{First: first, Members: []Candidate{{Header: h, Terms: rest}}})
	}
	return groups
}

// Entry is one header's full, ungrouped term list: the flat form consumed
// by Eval. Grouping (Bucket/Group) is purely a code-generation optimization
// over the same terms; the matching semantics are identical either way
// (spec.md §4.3 correctness property).
type Entry struct {
	Header *fieldreg.Header
	Terms  []Term
}

// FlatEntries computes Entry.Terms for every header, without the first-term
// coalescing BuildBuckets performs for textual emission.
func FlatEntries(headers []fieldreg.Header) []Entry {
	entries := make([]Entry, len(headers))
	for i := range headers {
		entries[i] = Entry{Header: &headers[i], Terms: terms(headers[i].Name)}
	}
	return entries
}

// Eval reports whether name satisfies every term (spec.md §4.3 step 4: AND
// of all chunk terms). len(name) must equal the bucket length the terms
// were built for; Eval does not re-check lengths.
func Eval(terms []Term, name []byte) bool {
	for _, t := range terms {
		var word uint64
		switch t.Width {
		case 8:
			word = binary.LittleEndian.Uint64(name[t.Offset : t.Offset+8])
		case 4:
			word = uint64(binary.LittleEndian.Uint32(name[t.Offset : t.Offset+4]))
		case 2:
			word = uint64(binary.LittleEndian.Uint16(name[t.Offset : t.Offset+2]))
		default: // 1
			word = uint64(name[t.Offset])
		}
		if word&t.Mask != t.Comparand {
			return false
		}
	}
	return true
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}
