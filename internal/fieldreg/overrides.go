package fieldreg

import "strings"

// ValueEncoding selects the character-legality check a response/trailer
// header's Set applies (spec.md §4.7, §6 InvalidHeaderValueError). Default
// is EncASCII; an override file (spec.md §4.10) can relax specific headers.
type ValueEncoding uint8

const (
	EncASCII ValueEncoding = iota // only 0x20-0x7E and tab are legal
	EncUTF8                       // any valid, non-control UTF-8 byte sequence
)

// Overrides carries generator-config-file input (spec.md §4.10): extra
// primary headers and per-header value encodings, layered onto the
// compile-time registry literal without editing it.
type Overrides struct {
	Primary  map[string]bool
	Encoding map[string]ValueEncoding
}

// apply mutates h in place per the override tables, keyed case-insensitively.
func (o Overrides) apply(h *Header) {
	key := strings.ToLower(h.Name)
	if o.Primary != nil && o.Primary[key] {
		h.Primary = true
	}
	_ = o.Encoding // consulted by the emitter via EncodingFor, not here
}

// EncodingFor returns the configured ValueEncoding for name, defaulting to
// EncASCII when unconfigured.
func (o Overrides) EncodingFor(name string) ValueEncoding {
	if o.Encoding == nil {
		return EncASCII
	}
	if enc, ok := o.Encoding[strings.ToLower(name)]; ok {
		return enc
	}
	return EncASCII
}
