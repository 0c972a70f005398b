package fieldreg

// invalidH2H3Names are the connection-level, hop-by-hop response headers
// that are illegal under HTTP/2 and HTTP/3 (spec.md §3 "Invalid-for-H2/H3
// Mask", §4.4).
var invalidH2H3Names = map[string]bool{
	"connection":       true,
	"transfer-encoding": true,
	"keep-alive":       true,
	"upgrade":          true,
	"proxy-connection": true,
}

// PlanBits orders headers per the Ordering Policy and assigns each a
// distinct Index in 0..63 (spec.md §4.4, Invariant R1/R2). For DirResponse,
// Content-Length is pulled out of the ordering and pinned back at index 63
// (spec.md §3, §9): the asymmetry with DirRequest, where Content-Length gets
// Index -1 and is tracked outside the bitmap entirely, is intentional.
//
// Returns the ordered, indexed headers and the InvalidH2H3ResponseHeadersBits
// mask (zero for directions other than DirResponse).
func PlanBits(dir Direction, headers []Header) ([]Header, uint64) {
	AssignIdentifiers(headers)
	Order(headers)

	if dir != DirResponse {
		pos := int8(0)
		for i := range headers {
			if lowerASCII(headers[i].Name) == "content-length" {
				headers[i].Index = -1 // not bit-tracked for requests; see spec.md §9
				continue
			}
			headers[i].Index = pos
			pos++
		}
		if int(pos) > pinnedIndex+1 {
			panic("fieldreg: too many request headers for a 64-bit bitmap")
		}
		return headers, 0
	}

	// DirResponse: pull Content-Length out, assign the rest 0..N-1, then
	// pin Content-Length at 63.
	var contentLengthAt = -1
	ordered := make([]Header, 0, len(headers))
	for i, h := range headers {
		if lowerASCII(h.Name) == "content-length" {
			contentLengthAt = i
			continue
		}
		ordered = append(ordered, h)
	}
	if contentLengthAt < 0 {
		panic("fieldreg: response registry is missing Content-Length")
	}
	if len(ordered) > pinnedIndex {
		panic("fieldreg: too many response headers for a 64-bit bitmap")
	}
	for i := range ordered {
		ordered[i].Index = int8(i)
	}
	contentLength := headers[contentLengthAt]
	contentLength.Index = pinnedIndex
	ordered = append(ordered, contentLength)

	var mask uint64
	for _, h := range ordered {
		if h.Index >= 0 && invalidH2H3Names[lowerASCII(h.Name)] {
			mask |= 1 << uint(h.Index)
		}
	}
	return ordered, mask
}
