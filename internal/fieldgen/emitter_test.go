package fieldgen

import (
	"go/format"
	"strings"
	"testing"

	"github.com/hexinfra/fielddict/internal/fieldreg"
)

// Generate's output must already be gofmt'd: format.Source is idempotent on
// well-formed input, so running it again must return the identical bytes.
func TestGenerateIsAlreadyFormatted(t *testing.T) {
	for _, dir := range []fieldreg.Direction{fieldreg.DirRequest, fieldreg.DirResponse, fieldreg.DirTrailer} {
		src, err := Generate(dir, fieldreg.Overrides{})
		if err != nil {
			t.Fatalf("%s: Generate: %v", dir, err)
		}
		again, err := format.Source(src)
		if err != nil {
			t.Fatalf("%s: format.Source: %v", dir, err)
		}
		if string(again) != string(src) {
			t.Fatalf("%s: Generate output is not gofmt-stable", dir)
		}
	}
}

// Generate must be deterministic: same direction and overrides produce
// byte-identical output (spec.md §5).
func TestGenerateIsDeterministic(t *testing.T) {
	for _, dir := range []fieldreg.Direction{fieldreg.DirRequest, fieldreg.DirResponse, fieldreg.DirTrailer} {
		a, err := Generate(dir, fieldreg.Overrides{})
		if err != nil {
			t.Fatalf("%s: Generate: %v", dir, err)
		}
		b, err := Generate(dir, fieldreg.Overrides{})
		if err != nil {
			t.Fatalf("%s: Generate: %v", dir, err)
		}
		if string(a) != string(b) {
			t.Fatalf("%s: Generate is not deterministic", dir)
		}
	}
}

// Every direction's output declares its own package and a self-contained
// Dictionary type with the full get/set/add/remove/copy_to/clear surface —
// no dependency on the headers package or any other printed output.
func TestGenerateEmitsSelfContainedDictionary(t *testing.T) {
	for _, dir := range []fieldreg.Direction{fieldreg.DirRequest, fieldreg.DirResponse, fieldreg.DirTrailer} {
		src, err := Generate(dir, fieldreg.Overrides{})
		if err != nil {
			t.Fatalf("%s: Generate: %v", dir, err)
		}
		got := string(src)

		if !strings.Contains(got, "package "+dir.String()) {
			t.Fatalf("%s: missing package declaration", dir)
		}
		if strings.Contains(got, "hexinfra/fielddict/headers") {
			t.Fatalf("%s: generated package imports the hand-written headers package", dir)
		}
		if strings.Contains(got, "hexinfra/fielddict/internal/fieldreg") || strings.Contains(got, "hexinfra/fielddict/internal/swar") {
			t.Fatalf("%s: generated package imports a generator-internal package", dir)
		}

		for _, want := range []string{
			"type Dictionary struct",
			"func New() *Dictionary",
			"func (d *Dictionary) Get(",
			"func (d *Dictionary) Set(",
			"func (d *Dictionary) Add(",
			"func (d *Dictionary) Remove(",
			"func (d *Dictionary) CopyTo(",
			"func (d *Dictionary) Clear(",
			"func (d *Dictionary) Each(",
			"func (d *Dictionary) Serialize(",
			"func (d *Dictionary) TryAppend(",
			"func (d *Dictionary) TryHPACKAppend(",
			"func matchHeader(name []byte) int8",
		} {
			if !strings.Contains(got, want) {
				t.Fatalf("%s: missing %q", dir, want)
			}
		}
	}
}

// Request direction carries Recycle (per-connection Value Reuse snapshot);
// response/trailer do not, matching the hand-written runtime's contract.
func TestGenerateRecycleOnlyOnRequest(t *testing.T) {
	req, err := Generate(fieldreg.DirRequest, fieldreg.Overrides{})
	if err != nil {
		t.Fatalf("request: Generate: %v", err)
	}
	if !strings.Contains(string(req), "func (d *Dictionary) Recycle(") {
		t.Fatalf("request: missing Recycle")
	}

	for _, dir := range []fieldreg.Direction{fieldreg.DirResponse, fieldreg.DirTrailer} {
		src, err := Generate(dir, fieldreg.Overrides{})
		if err != nil {
			t.Fatalf("%s: Generate: %v", dir, err)
		}
		if strings.Contains(string(src), "func (d *Dictionary) Recycle(") {
			t.Fatalf("%s: unexpected Recycle", dir)
		}
	}
}

// PlanBits computes the invalid-H2/H3 mask for the response direction only
// (request carries the same connection-level headers but gets a zero mask),
// so only the response output carries the invalid-mask helpers.
func TestGenerateInvalidH2H3OnlyOnResponse(t *testing.T) {
	resp, err := Generate(fieldreg.DirResponse, fieldreg.Overrides{})
	if err != nil {
		t.Fatalf("response: Generate: %v", err)
	}
	if !strings.Contains(string(resp), "func (d *Dictionary) HasInvalidH2H3Headers(") {
		t.Fatalf("response: missing HasInvalidH2H3Headers")
	}

	req, err := Generate(fieldreg.DirRequest, fieldreg.Overrides{})
	if err != nil {
		t.Fatalf("request: Generate: %v", err)
	}
	if strings.Contains(string(req), "invalidH2H3Mask") {
		t.Fatalf("request: unexpected invalid-H2/H3 mask")
	}
}

// Request direction's Content-Length is tracked outside the bitmap (real
// Index -1) and must never collide with matchHeader's "no match" return.
func TestGenerateRequestContentLengthSentinelDiffersFromNoMatch(t *testing.T) {
	src, err := Generate(fieldreg.DirRequest, fieldreg.Overrides{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got := string(src)
	if !strings.Contains(got, "const noMatch int8 = -1") {
		t.Fatalf("missing noMatch constant")
	}
	if !strings.Contains(got, "if h == -2 {") {
		t.Fatalf("expected request Content-Length branch to key off the -2 sentinel, not -1")
	}
}

// Request direction: an ExistenceCheck header (Host) gets a Has accessor, a
// FastCount header (Cache-Control) gets a Count accessor, and Content-Length
// gets an int64 accessor instead of the plain string one.
func TestGenerateAccessorsCoverExistenceAndCount(t *testing.T) {
	src, err := Generate(fieldreg.DirRequest, fieldreg.Overrides{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got := string(src)
	for _, want := range []string{
		"func (d *Dictionary) HasHost() bool",
		"func (d *Dictionary) CacheControlCount() int",
		"func (d *Dictionary) ContentLength() (int64, bool)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing accessor %q", want)
		}
	}
}
