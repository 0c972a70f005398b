package fieldreg

// lowercaseOverrides are the three hard-coded exceptions spec.md §4.2/§9
// calls out as not derivable from the general rule. Kept as an explicit
// table, per the open question in spec.md §9.
var lowercaseOverrides = map[string]string{
	"baggage":     "Baggage",
	"traceparent": "TraceParent",
	"tracestate":  "TraceState",
}

// Identifier derives the stable, direction-independent identifier used to
// name accessors in the emitted dictionary (spec.md §4.2).
func Identifier(name string) string {
	if id, ok := lowercaseOverrides[name]; ok {
		return id
	}

	stripped := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] != '-' {
			stripped = append(stripped, name[i])
		}
	}

	if len(stripped) > 0 && stripped[0] == ':' {
		stripped = stripped[1:]
		if len(stripped) > 0 && stripped[0] >= 'a' && stripped[0] <= 'z' {
			stripped[0] -= 0x20
		}
	}

	return string(stripped)
}

// AssignIdentifiers fills Header.Identifier for every header, then asserts
// invariant P1/R3: equal identifiers imply case-insensitively equal names.
func AssignIdentifiers(headers []Header) {
	seen := make(map[string]string, len(headers))
	for i := range headers {
		id := Identifier(headers[i].Name)
		headers[i].Identifier = id
		if prior, ok := seen[id]; ok && lowerASCII(prior) != lowerASCII(headers[i].Name) {
			panic("fieldreg: identifier collision between " + prior + " and " + headers[i].Name)
		}
		seen[id] = headers[i].Name
	}
}
