package headers

import (
	"io"

	"github.com/hexinfra/fielddict/headers/metrics"
)

// TrailerHeaders is the known-header dictionary for response trailers
// (spec.md §4.1 "Trailers unconstrained except by 64-bit ceiling"): no
// Content-Length, no invalid-H2/H3 mask, and no TryAppend, TryHPACKAppend
// or SetRaw methods; the remaining methods behave as on ResponseHeaders.
type TrailerHeaders struct {
	d *dict
}

// NewTrailerHeaders returns an empty, writable trailer dictionary.
func NewTrailerHeaders(recorder *metrics.Recorder) *TrailerHeaders {
	d := newDict(trailerSchema)
	d.recorder = recorder
	return &TrailerHeaders{d: d}
}

func (t *TrailerHeaders) Get(name string) (string, bool)        { return t.d.get(name) }
func (t *TrailerHeaders) Set(name, value string) error          { return t.d.set(name, value) }
func (t *TrailerHeaders) Add(name, value string) error          { return t.d.add(name, value) }
func (t *TrailerHeaders) Remove(name string) bool                { return t.d.remove(name) }
func (t *TrailerHeaders) Field(identifier string) (string, bool) { return t.d.field(identifier) }
func (t *TrailerHeaders) Has(identifier string) bool             { return t.d.has(identifier) }
func (t *TrailerHeaders) Count(identifier string) int            { return t.d.count(identifier) }
func (t *TrailerHeaders) Each(fn func(name, value string))       { t.d.each(fn) }
func (t *TrailerHeaders) Freeze()                                { t.d.freeze() }
func (t *TrailerHeaders) IsReadonly() bool                       { return t.d.isReadonly() }
func (t *TrailerHeaders) Clear()                                 { t.d.clear() }

// CopyTo implements spec.md §6 "copy_to": it overwrites dst's known and
// unknown header state with t's.
func (t *TrailerHeaders) CopyTo(dst *TrailerHeaders) error { return t.d.copyTo(dst.d) }

// Serialize writes the dictionary's set headers to w in the order
// described by spec.md §4.7 "Serialization".
func (t *TrailerHeaders) Serialize(w io.Writer) error { return t.d.serialize(w) }
