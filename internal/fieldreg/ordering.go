package fieldreg

import "sort"

// Less implements the Ordering Policy of spec.md §4.8: primary headers
// first, then ascending by name under a culture-invariant (ordinal,
// case-insensitive) compare. Used for bit layout, matcher group emission
// order, and lookup-fast-path ordering within a length bucket.
func Less(a, b Header) bool {
	if a.Primary != b.Primary {
		return a.Primary // primary sorts first
	}
	return compareInvariant(a.Name, b.Name) < 0
}

// compareInvariant is an ordinal, ASCII-case-insensitive comparison: the Go
// stand-in for .NET's StringComparer.OrdinalIgnoreCase / invariant culture
// compare mentioned in spec.md §3 Invariant R4. Byte length differences
// break ties after the shared prefix compares equal, matching ordinal
// semantics (shorter-is-less when one is a prefix of the other).
func compareInvariant(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := foldByte(a[i]), foldByte(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func foldByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 0x20
	}
	return b
}

// Order sorts headers in place per the Ordering Policy.
func Order(headers []Header) {
	sort.SliceStable(headers, func(i, j int) bool { return Less(headers[i], headers[j]) })
}
