package fieldreg

// WireBlob is the per-direction, generator-emitted byte vector: for every
// header with EnhancedSetter, "\r\n" + exact-case name + ": " is appended in
// registry (bit index) order. The serializer writes these bytes verbatim
// (spec.md §4.5, §4.7).
type WireBlob struct {
	Bytes []byte
}

// BuildWireBlob fills Header.WireOffset/WireLength for every enhanced-setter
// header in headers (assumed already bit-assigned by PlanBits) and returns
// the concatenated blob, ordered by Index so a direction's serializer can
// walk set bits low-to-high and find contiguous, monotonically increasing
// wire slices (not required for correctness, but matches the order the
// teacher's own `web_codec.go` keys its pre-encoded pair tables in).
func BuildWireBlob(headers []Header) WireBlob {
	byIndex := make([]int, 0, len(headers))
	for i, h := range headers {
		if h.EnhancedSetter {
			byIndex = append(byIndex, i)
		}
	}
	sortByIndex(headers, byIndex)

	var blob []byte
	for _, i := range byIndex {
		h := &headers[i]
		start := len(blob)
		blob = append(blob, '\r', '\n')
		blob = append(blob, h.Name...)
		blob = append(blob, ':', ' ')
		h.WireOffset = start
		h.WireLength = len(blob) - start
	}
	return WireBlob{Bytes: blob}
}

func sortByIndex(headers []Header, idx []int) {
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && headers[idx[j-1]].Index > headers[idx[j]].Index; j-- {
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
}
