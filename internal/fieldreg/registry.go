package fieldreg

// commonHeaders appear in both the request and the response direction
// (spec.md §4.1: "Shared commonHeaders contribute to both request and
// response"). Content-Length lives here too; PlanBits (bitlayout.go) pins it
// to index 63 for DirResponse only (spec.md §4.4, §9).
var commonHeaders = []rawHeader{
	{name: "Content-Length", dirs: bitRequest | bitResponse, primary: true, existenceCheck: true, enhancedSetter: true},
	{name: "Content-Type", dirs: bitRequest | bitResponse, primary: true, enhancedSetter: true},
	{name: "Content-Encoding", dirs: bitRequest | bitResponse, enhancedSetter: true},
	{name: "Content-Language", dirs: bitRequest | bitResponse, enhancedSetter: true},
	{name: "Content-Location", dirs: bitRequest | bitResponse, enhancedSetter: true},
	{name: "Transfer-Encoding", dirs: bitRequest | bitResponse, existenceCheck: true},
	{name: "Connection", dirs: bitRequest | bitResponse, primary: true, existenceCheck: true},
	{name: "Keep-Alive", dirs: bitRequest | bitResponse},
	{name: "Upgrade", dirs: bitRequest | bitResponse, existenceCheck: true},
	{name: "Proxy-Connection", dirs: bitRequest | bitResponse},
	{name: "Date", dirs: bitRequest | bitResponse, primary: true, enhancedSetter: true},
	{name: "Via", dirs: bitRequest | bitResponse},
	{name: "Cache-Control", dirs: bitRequest | bitResponse, primary: true, fastCount: true},
	{name: "baggage", dirs: bitRequest | bitResponse | bitTrailer},
	{name: "traceparent", dirs: bitRequest | bitResponse | bitTrailer, primary: true},
	{name: "tracestate", dirs: bitRequest | bitResponse | bitTrailer},
}

// requestOnlyHeaders are carried only by DirRequest.
var requestOnlyHeaders = []rawHeader{
	{name: "Host", dirs: bitRequest, primary: true, existenceCheck: true},
	{name: "Accept", dirs: bitRequest, fastCount: true},
	{name: "Accept-Encoding", dirs: bitRequest, fastCount: true},
	{name: "Accept-Language", dirs: bitRequest, fastCount: true},
	{name: "Authorization", dirs: bitRequest, existenceCheck: true},
	{name: "Proxy-Authorization", dirs: bitRequest},
	{name: "Cookie", dirs: bitRequest, primary: true, fastCount: true},
	{name: "Referer", dirs: bitRequest},
	{name: "User-Agent", dirs: bitRequest, primary: true, existenceCheck: true},
	{name: "Origin", dirs: bitRequest},
	{name: "Range", dirs: bitRequest, existenceCheck: true},
	{name: "If-Range", dirs: bitRequest},
	{name: "If-Match", dirs: bitRequest, fastCount: true},
	{name: "If-None-Match", dirs: bitRequest, fastCount: true},
	{name: "If-Modified-Since", dirs: bitRequest},
	{name: "If-Unmodified-Since", dirs: bitRequest},
	{name: "Max-Forwards", dirs: bitRequest},
	{name: "Forwarded", dirs: bitRequest},
	{name: "X-Forwarded-For", dirs: bitRequest, fastCount: true},
	{name: "TE", dirs: bitRequest},
	{name: "Sec-WebSocket-Key", dirs: bitRequest},
	{name: "Sec-WebSocket-Version", dirs: bitRequest},
	{name: "Sec-WebSocket-Protocol", dirs: bitRequest, fastCount: true},
}

// responseOnlyHeaders are carried only by DirResponse. The spec's invalid
// H2/H3 connection-level headers (spec.md §4.4) live in commonHeaders above
// since they are equally meaningful as request headers; the mask in
// bitlayout.go is built from the response direction's assigned indexes.
var responseOnlyHeaders = []rawHeader{
	{name: "Set-Cookie", dirs: bitResponse, primary: true, fastCount: true, enhancedSetter: true},
	{name: "Server", dirs: bitResponse, primary: true, enhancedSetter: true},
	{name: "Location", dirs: bitResponse, existenceCheck: true},
	{name: "ETag", dirs: bitResponse, existenceCheck: true},
	{name: "Expires", dirs: bitResponse},
	{name: "Last-Modified", dirs: bitResponse},
	{name: "WWW-Authenticate", dirs: bitResponse},
	{name: "Proxy-Authenticate", dirs: bitResponse},
	{name: "Allow", dirs: bitResponse, existenceCheck: true},
	{name: "Retry-After", dirs: bitResponse},
	{name: "Vary", dirs: bitResponse, fastCount: true},
	{name: "Content-Range", dirs: bitResponse},
	{name: "Content-Disposition", dirs: bitResponse, enhancedSetter: true},
	{name: "Sec-WebSocket-Accept", dirs: bitResponse},
	{name: "Strict-Transport-Security", dirs: bitResponse},
	{name: "Content-Security-Policy", dirs: bitResponse},
}

// trailerHeaders is the registry for DirTrailer, independent of request and
// response (spec.md §4.1: "Trailers unconstrained except by 64-bit ceiling").
var trailerHeaders = []rawHeader{
	{name: "ETag", dirs: bitTrailer, existenceCheck: true},
	{name: "Content-MD5", dirs: bitTrailer},
	{name: "Server-Timing", dirs: bitTrailer, fastCount: true},
	{name: "Expires", dirs: bitTrailer},
}

// pseudoHeaderNames are HTTP/2 pseudo-headers: excluded from the public
// IHeaderDictionary-like surface, retained only for internal HTTP/2 handling
// (spec.md §4.1).
var pseudoHeaderNames = []string{":authority", ":method", ":path", ":scheme", ":status"}

// BuildDirection merges the registry arrays relevant to dir, deduplicating
// by name (a header present in both commonHeaders and a direction-specific
// list is a build error, never expected in this registry). Content-Length
// is pinned to index 63 for DirResponse by BuildDirection's caller
// (bitlayout.go), not here: BuildDirection only decides membership.
func BuildDirection(dir Direction, overrides Overrides) []Header {
	var raws []rawHeader
	switch dir {
	case DirRequest:
		raws = append(append([]rawHeader{}, commonHeaders...), requestOnlyHeaders...)
	case DirResponse:
		raws = append(append([]rawHeader{}, commonHeaders...), responseOnlyHeaders...)
	case DirTrailer:
		raws = append([]rawHeader{}, trailerHeaders...)
	default:
		panic("fieldreg: unknown direction")
	}

	seen := make(map[string]bool, len(raws))
	headers := make([]Header, 0, len(raws))
	for _, raw := range raws {
		key := lowerASCII(raw.name)
		if seen[key] {
			panic("fieldreg: duplicate header name in registry: " + raw.name)
		}
		seen[key] = true
		h := raw.header()
		overrides.apply(&h)
		headers = append(headers, h)
	}
	return headers
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 0x20
		}
	}
	return string(b)
}
