package fieldreg

// StaticEntry is one row of the RFC 7541 Appendix A HPACK static table.
type StaticEntry struct {
	Index int
	Name  string
	Value string // "" when the entry only fixes a name, not a value
}

// HTTP2StaticTable is the IETF-defined 61-entry HPACK static table
// (spec.md §6 generator input, §4.6). The teacher's own `http2StaticTable`
// in `hemi/web_http2_suite.go` is left as an unfilled `TODO` stub; this is
// the complete table it never grew.
var HTTP2StaticTable = [61]StaticEntry{
	{1, ":authority", ""},
	{2, ":method", "GET"},
	{3, ":method", "POST"},
	{4, ":path", "/"},
	{5, ":path", "/index.html"},
	{6, ":scheme", "http"},
	{7, ":scheme", "https"},
	{8, ":status", "200"},
	{9, ":status", "204"},
	{10, ":status", "206"},
	{11, ":status", "304"},
	{12, ":status", "400"},
	{13, ":status", "404"},
	{14, ":status", "500"},
	{15, "accept-charset", ""},
	{16, "accept-encoding", "gzip, deflate"},
	{17, "accept-language", ""},
	{18, "accept-ranges", ""},
	{19, "accept", ""},
	{20, "access-control-allow-origin", ""},
	{21, "age", ""},
	{22, "allow", ""},
	{23, "authorization", ""},
	{24, "cache-control", ""},
	{25, "content-disposition", ""},
	{26, "content-encoding", ""},
	{27, "content-language", ""},
	{28, "content-length", ""},
	{29, "content-location", ""},
	{30, "content-range", ""},
	{31, "content-type", ""},
	{32, "cookie", ""},
	{33, "date", ""},
	{34, "etag", ""},
	{35, "expect", ""},
	{36, "expires", ""},
	{37, "from", ""},
	{38, "host", ""},
	{39, "if-match", ""},
	{40, "if-modified-since", ""},
	{41, "if-none-match", ""},
	{42, "if-range", ""},
	{43, "if-unmodified-since", ""},
	{44, "last-modified", ""},
	{45, "link", ""},
	{46, "location", ""},
	{47, "max-forwards", ""},
	{48, "proxy-authenticate", ""},
	{49, "proxy-authorization", ""},
	{50, "range", ""},
	{51, "referer", ""},
	{52, "refresh", ""},
	{53, "retry-after", ""},
	{54, "server", ""},
	{55, "set-cookie", ""},
	{56, "strict-transport-security", ""},
	{57, "transfer-encoding", ""},
	{58, "user-agent", ""},
	{59, "vary", ""},
	{60, "via", ""},
	{61, "www-authenticate", ""},
}

// HPACKGroup is one wire name from the static table together with every
// static index sharing it and, if the registry has one, the matching known
// header (spec.md §3 "HPACK Group", §4.6).
type HPACKGroup struct {
	Name          string
	Header        *Header // nil if no known header of this direction uses Name
	Indices       []int
	IsContentLength bool
}

// BuildHPACKGroups groups HTTP2StaticTable by case-insensitive name and
// resolves each group against headers (already bit-assigned by PlanBits).
// headers must outlive the returned groups: Header points into it.
func BuildHPACKGroups(headers []Header) []HPACKGroup {
	order := make([]string, 0, len(HTTP2StaticTable))
	byName := make(map[string]*HPACKGroup, len(HTTP2StaticTable))
	for _, entry := range HTTP2StaticTable {
		key := lowerASCII(entry.Name)
		g, ok := byName[key]
		if !ok {
			g = &HPACKGroup{Name: entry.Name, IsContentLength: key == "content-length"}
			byName[key] = g
			order = append(order, key)
		}
		g.Indices = append(g.Indices, entry.Index)
	}

	byHeaderName := make(map[string]*Header, len(headers))
	for i := range headers {
		byHeaderName[lowerASCII(headers[i].Name)] = &headers[i]
	}

	groups := make([]HPACKGroup, 0, len(order))
	for _, key := range order {
		g := *byName[key]
		if h, ok := byHeaderName[key]; ok {
			g.Header = h
		}
		groups = append(groups, g)
	}
	return groups
}
