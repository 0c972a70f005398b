package fieldreg

import "testing"

func buildAll(t *testing.T, dir Direction) []Header {
	t.Helper()
	headers := BuildDirection(dir, Overrides{})
	headers, _ = PlanBits(dir, headers)
	return headers
}

// P1: identifier uniqueness — either identifiers differ, or names are
// equal case-insensitively.
func TestIdentifierUniqueness(t *testing.T) {
	for _, dir := range []Direction{DirRequest, DirResponse, DirTrailer} {
		headers := buildAll(t, dir)
		seen := make(map[string]string)
		for _, h := range headers {
			if prior, ok := seen[h.Identifier]; ok && lowerASCII(prior) != lowerASCII(h.Name) {
				t.Fatalf("%s: identifier %q collides: %q vs %q", dir, h.Identifier, prior, h.Name)
			}
			seen[h.Identifier] = h.Name
		}
	}
}

// P2: bit disjointness — distinct indexes within a direction; response has
// exactly one index == 63 (Content-Length).
func TestBitDisjointness(t *testing.T) {
	for _, dir := range []Direction{DirRequest, DirResponse, DirTrailer} {
		headers := buildAll(t, dir)
		seen := make(map[int8]bool)
		pinned := 0
		for _, h := range headers {
			if h.Index < 0 {
				continue // request Content-Length, see spec.md §9
			}
			if seen[h.Index] {
				t.Fatalf("%s: duplicate index %d", dir, h.Index)
			}
			seen[h.Index] = true
			if h.Index == pinnedIndex {
				pinned++
			}
		}
		if dir == DirResponse && pinned != 1 {
			t.Fatalf("response: expected exactly one header pinned at %d, got %d", pinnedIndex, pinned)
		}
		if dir != DirResponse && pinned != 0 {
			t.Fatalf("%s: no header should occupy the pinned response slot", dir)
		}
	}
}

// P8: invalid-mask popcount is 5 and names exactly the five connection-
// level headers.
func TestInvalidH2H3Mask(t *testing.T) {
	headers := BuildDirection(DirResponse, Overrides{})
	headers, mask := PlanBits(DirResponse, headers)

	want := map[string]bool{
		"connection":        true,
		"transfer-encoding":  true,
		"keep-alive":        true,
		"upgrade":           true,
		"proxy-connection":  true,
	}
	popcount := 0
	for _, h := range headers {
		if mask&(1<<uint(h.Index)) == 0 {
			continue
		}
		popcount++
		if !want[lowerASCII(h.Name)] {
			t.Errorf("unexpected header in invalid-H2/H3 mask: %s", h.Name)
		}
		delete(want, lowerASCII(h.Name))
	}
	if popcount != 5 {
		t.Fatalf("expected popcount 5, got %d", popcount)
	}
	if len(want) != 0 {
		t.Fatalf("mask is missing headers: %v", want)
	}
}

func TestRequestContentLengthNotBitTracked(t *testing.T) {
	headers := buildAll(t, DirRequest)
	for _, h := range headers {
		if lowerASCII(h.Name) == "content-length" {
			if h.Index != -1 {
				t.Fatalf("request Content-Length should have Index -1, got %d", h.Index)
			}
			return
		}
	}
	t.Fatal("request registry is missing Content-Length")
}

func TestIdentifierOverrides(t *testing.T) {
	cases := map[string]string{
		"baggage":     "Baggage",
		"traceparent": "TraceParent",
		"tracestate":  "TraceState",
		":authority":  "Authority",
		"Content-Type": "ContentType",
	}
	for name, want := range cases {
		if got := Identifier(name); got != want {
			t.Errorf("Identifier(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestOrderingPrimaryFirst(t *testing.T) {
	headers := buildAll(t, DirRequest)
	sawNonPrimary := false
	for _, h := range headers {
		if !h.Primary {
			sawNonPrimary = true
			continue
		}
		if sawNonPrimary {
			t.Fatalf("primary header %q sorted after a non-primary header", h.Name)
		}
	}
}
