package headers

import (
	"io"

	"github.com/hexinfra/fielddict/headers/metrics"
)

// ResponseHeaders is the known-header dictionary for the response
// direction. Unlike the request direction, Content-Length here is
// bit-tracked, pinned to index 63 (spec.md §3, §9), and values are
// validated against each header's configured encoding (spec.md §4.7).
type ResponseHeaders struct {
	d *dict
}

// NewResponseHeaders returns an empty, writable response dictionary.
func NewResponseHeaders(recorder *metrics.Recorder) *ResponseHeaders {
	d := newDict(responseSchema)
	d.recorder = recorder
	return &ResponseHeaders{d: d}
}

func (r *ResponseHeaders) Get(name string) (string, bool)       { return r.d.get(name) }
func (r *ResponseHeaders) Set(name, value string) error         { return r.d.set(name, value) }
func (r *ResponseHeaders) Add(name, value string) error         { return r.d.add(name, value) }
func (r *ResponseHeaders) Remove(name string) bool               { return r.d.remove(name) }
func (r *ResponseHeaders) Field(identifier string) (string, bool) { return r.d.field(identifier) }
func (r *ResponseHeaders) Has(identifier string) bool             { return r.d.has(identifier) }
func (r *ResponseHeaders) Count(identifier string) int            { return r.d.count(identifier) }
func (r *ResponseHeaders) Each(fn func(name, value string))       { r.d.each(fn) }
func (r *ResponseHeaders) Freeze()                                { r.d.freeze() }
func (r *ResponseHeaders) IsReadonly() bool                       { return r.d.isReadonly() }
func (r *ResponseHeaders) Clear()                                 { r.d.clear() }

// CopyTo implements spec.md §6 "copy_to": it overwrites dst's known,
// unknown, and Content-Length state with r's.
func (r *ResponseHeaders) CopyTo(dst *ResponseHeaders) error { return r.d.copyTo(dst.d) }

// TryAppend implements spec.md §4.7 "try_append(name_bytes, value_bytes)":
// the HTTP/1.1 parser's entry point for one raw header line.
func (r *ResponseHeaders) TryAppend(nameBytes, valueBytes []byte) (bool, error) {
	return r.d.tryAppend(nameBytes, valueBytes)
}

// TryHPACKAppend implements spec.md §4.7 "try_hpack_append(index,
// value_bytes)": the HTTP/2 path, dispatching by static-table index
// instead of matching the name.
func (r *ResponseHeaders) TryHPACKAppend(index int, valueBytes []byte) (bool, error) {
	return r.d.tryHPACKAppend(index, valueBytes)
}

// SetContentLength sets the pinned Content-Length header directly, as the
// HPACK/1.1 builder paths do, bypassing name matching.
func (r *ResponseHeaders) SetContentLength(value int64) error {
	if r.d.readonly {
		return ErrReadOnly
	}
	r.d.contentLength = value
	r.d.contentLengthSet = true
	r.d.setBit(r.d.schema.contentLength.Index)
	return nil
}

// ContentLength returns the response Content-Length and whether it is set.
func (r *ResponseHeaders) ContentLength() (int64, bool) {
	return r.d.contentLength, r.d.contentLengthSet
}

// SetRaw installs identifier's pre-encoded companion bytes (spec.md §3
// "enhanced_setter"): Serialize writes raw verbatim instead of formatting
// the value slot, per the concrete scenario of spec.md §8 #5.
func (r *ResponseHeaders) SetRaw(identifier string, raw []byte) bool {
	return r.d.setRaw(identifier, raw)
}

// HasInvalidH2H3Headers reports whether any connection-level header
// illegal under HTTP/2 and HTTP/3 is currently set (spec.md §3 "Invalid-
// for-H2/H3 Mask").
func (r *ResponseHeaders) HasInvalidH2H3Headers() bool { return r.d.hasInvalidH2H3() }

// ClearInvalidH2H3Headers clears every such header's bit and value slot.
func (r *ResponseHeaders) ClearInvalidH2H3Headers() { r.d.clearInvalidH2H3() }

// Serialize writes the dictionary's set headers to w in the order
// described by spec.md §4.7 "Serialization".
func (r *ResponseHeaders) Serialize(w io.Writer) error { return r.d.serialize(w) }
