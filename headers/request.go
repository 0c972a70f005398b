package headers

import (
	"github.com/hexinfra/fielddict/headers/metrics"
)

// RequestHeaders is the known-header dictionary for the request direction
// (spec.md §4.7). Request Content-Length is tracked outside the 64-bit
// bitmap entirely (index -1, spec.md §9): the asymmetry with the response
// direction, where Content-Length is pinned to bit 63, is intentional.
type RequestHeaders struct {
	d *dict
}

// NewRequestHeaders returns an empty, writable request dictionary. Pass a
// non-nil recorder to instrument lookups and clears; nil disables metrics.
func NewRequestHeaders(recorder *metrics.Recorder) *RequestHeaders {
	d := newDict(requestSchema)
	d.recorder = recorder
	return &RequestHeaders{d: d}
}

// Get implements spec.md §4.7 "get(name)".
func (r *RequestHeaders) Get(name string) (string, bool) { return r.d.get(name) }

// Set implements spec.md §4.7 "set(name, value)".
func (r *RequestHeaders) Set(name, value string) error { return r.d.set(name, value) }

// Add implements spec.md §4.7 "add(name, value)".
func (r *RequestHeaders) Add(name, value string) error { return r.d.add(name, value) }

// Remove implements spec.md §4.7 "remove(name)".
func (r *RequestHeaders) Remove(name string) bool { return r.d.remove(name) }

// TryAppend implements spec.md §4.7 "try_append(name_bytes, value_bytes)":
// the HTTP/1 parser's entry point for one raw header line.
func (r *RequestHeaders) TryAppend(nameBytes, valueBytes []byte) (bool, error) {
	return r.d.tryAppend(nameBytes, valueBytes)
}

// TryHPACKAppend implements spec.md §4.7 "try_hpack_append(index,
// value_bytes)": the HTTP/2 path, dispatching by static-table index
// instead of matching the name.
func (r *RequestHeaders) TryHPACKAppend(index int, valueBytes []byte) (bool, error) {
	return r.d.tryHPACKAppend(index, valueBytes)
}

// Field is the identifier-indexed stand-in for the per-header typed fast
// accessors spec.md §6 has the generator print (see schema.go doc).
func (r *RequestHeaders) Field(identifier string) (string, bool) { return r.d.field(identifier) }

// Has reports whether identifier's existence_check header is present.
func (r *RequestHeaders) Has(identifier string) bool { return r.d.has(identifier) }

// Count reports identifier's fast_count value count.
func (r *RequestHeaders) Count(identifier string) int { return r.d.count(identifier) }

// ContentLength returns the parsed Content-Length and whether it was set.
func (r *RequestHeaders) ContentLength() (int64, bool) {
	return r.d.contentLength, r.d.contentLengthSet
}

// Each enumerates name/value pairs in spec.md §4.7's deterministic order.
func (r *RequestHeaders) Each(fn func(name, value string)) { r.d.each(fn) }

// Freeze marks the dictionary read-only; every mutator after this fails
// with ErrReadOnly.
func (r *RequestHeaders) Freeze() { r.d.freeze() }

// IsReadonly reports whether Freeze has been called.
func (r *RequestHeaders) IsReadonly() bool { return r.d.isReadonly() }

// Recycle snapshots single-valued known headers for the Value Reuse Rule
// and clears the dictionary for the next message on the same connection
// (spec.md §4.7, §9 "per-instance, not process-wide").
func (r *RequestHeaders) Recycle() { r.d.recycle() }

// Clear implements spec.md §4.7 "Clear" without taking a reuse snapshot.
func (r *RequestHeaders) Clear() { r.d.clear() }

// CopyTo implements spec.md §6 "copy_to": it overwrites dst's known,
// unknown, and Content-Length state with r's.
func (r *RequestHeaders) CopyTo(dst *RequestHeaders) error { return r.d.copyTo(dst.d) }
