package swar

import (
	"fmt"
	"strings"
)

// EmitMatcher prints a Go function named funcName with signature
// `func funcName(name []byte) int8` that returns the matched header's bit
// Index, or -1 if name matches no known header of this direction.
//
// The cascade is ordered first by bucket length (ascending — an arbitrary
// but deterministic choice, since disjoint lengths never compete) and then,
// within a bucket, in the Ordering Policy order BuildBuckets preserved
// (spec.md §4.3 "Ordering within the generated cascade": primary headers
// tested earliest).
func EmitMatcher(funcName string, buckets []Bucket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "func %s(name []byte) int8 {\n", funcName)
	fmt.Fprintf(&b, "\tswitch len(name) {\n")
	for _, bucket := range buckets {
		fmt.Fprintf(&b, "\tcase %d:\n", bucket.Length)
		emitBucketBody(&b, bucket)
	}
	fmt.Fprintf(&b, "\t}\n")
	fmt.Fprintf(&b, "\treturn -1\n")
	fmt.Fprintf(&b, "}\n")
	return b.String()
}

func emitBucketBody(b *strings.Builder, bucket Bucket) {
	for _, g := range bucket.Groups {
		fmt.Fprintf(b, "\t\tif %s {\n", termExpr(g.First))
		for _, m := range g.Members {
			cond := "true"
			if len(m.Terms) > 0 {
				parts := make([]string, len(m.Terms))
				for i, t := range m.Terms {
					parts[i] = termExpr(t)
				}
				cond = strings.Join(parts, " && ")
			}
			fmt.Fprintf(b, "\t\t\tif %s { // %s\n", cond, m.Header.Name)
			fmt.Fprintf(b, "\t\t\t\treturn %d\n", m.Header.Index)
			fmt.Fprintf(b, "\t\t\t}\n")
		}
		fmt.Fprintf(b, "\t\t}\n")
	}
}

// termExpr renders one Term as a Go boolean expression reading name[Offset:].
// Unaligned word loads are realized via encoding/binary on a []byte, which
// is always safe in Go regardless of target alignment (spec.md §9).
func termExpr(t Term) string {
	lo, hi := t.Offset, t.Offset+t.Width
	switch t.Width {
	case 8:
		return fmt.Sprintf("binary.LittleEndian.Uint64(name[%d:%d])&0x%016x == 0x%016x", lo, hi, t.Mask, t.Comparand)
	case 4:
		return fmt.Sprintf("binary.LittleEndian.Uint32(name[%d:%d])&0x%08x == 0x%08x", lo, hi, uint32(t.Mask), uint32(t.Comparand))
	case 2:
		return fmt.Sprintf("binary.LittleEndian.Uint16(name[%d:%d])&0x%04x == 0x%04x", lo, hi, uint16(t.Mask), uint16(t.Comparand))
	default: // 1
		return fmt.Sprintf("name[%d]&0x%02x == 0x%02x", t.Offset, uint8(t.Mask), uint8(t.Comparand))
	}
}
