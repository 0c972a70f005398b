package headers

import (
	"io"
	"math/bits"
	"strconv"
	"unicode/utf8"

	"github.com/hexinfra/fielddict/headers/metrics"
	"github.com/hexinfra/fielddict/internal/fieldreg"
)

// dict is the shared core behind RequestHeaders, ResponseHeaders, and
// TrailerHeaders: the generated runtime contract of spec.md §4.7, minus
// the direction-specific wrapping each of those three types supplies.
type dict struct {
	schema *schema

	bits           uint64
	previousBits   uint64
	previousValues map[int8]string

	values map[int8][]string
	raw    map[int8][]byte

	unknown *unknownMap

	contentLength    int64
	contentLengthSet bool

	readonly bool

	recorder *metrics.Recorder
}

func newDict(s *schema) *dict {
	return &dict{
		schema:  s,
		values:  make(map[int8][]string),
		raw:     make(map[int8][]byte),
		unknown: newUnknownMap(),
	}
}

func (d *dict) bitSet(idx int8) bool { return d.bits&(1<<uint(idx)) != 0 }
func (d *dict) setBit(idx int8)      { d.bits |= 1 << uint(idx) }
func (d *dict) clearBit(idx int8)    { d.bits &^= 1 << uint(idx) }

// get implements spec.md §4.7 "get(name)".
func (d *dict) get(name string) (string, bool) {
	if h := d.schema.match([]byte(name)); h != nil {
		if h == d.schema.contentLength {
			if d.contentLengthSet {
				return strconv.FormatInt(d.contentLength, 10), true
			}
			return "", false
		}
		if d.bitSet(h.Index) {
			if vs := d.values[h.Index]; len(vs) > 0 {
				d.record(true)
				return vs[0], true
			}
		}
		return "", false
	}
	ok := false
	var v string
	if v, ok = d.unknown.get(name); ok {
		d.record(false)
	}
	return v, ok
}

// set implements spec.md §4.7 "set(name, value)".
func (d *dict) set(name, value string) error {
	if d.readonly {
		return ErrReadOnly
	}
	h := d.schema.match([]byte(name))
	if h == nil {
		d.unknown.set(name, value)
		d.record(false)
		return nil
	}
	d.record(true)
	if h == d.schema.contentLength {
		return d.setContentLength(h, value)
	}
	if d.schema.dir != fieldreg.DirRequest {
		if err := d.validate(h, value); err != nil {
			return err
		}
	}
	if value == "" {
		d.clearBit(h.Index)
		delete(d.values, h.Index)
	} else {
		d.values[h.Index] = []string{value}
		d.setBit(h.Index)
	}
	if h.EnhancedSetter {
		delete(d.raw, h.Index)
	}
	return nil
}

// add implements spec.md §4.7 "add(name, value)".
func (d *dict) add(name, value string) error {
	if d.readonly {
		return ErrReadOnly
	}
	if _, present := d.get(name); present {
		return ErrValueExists
	}
	return d.set(name, value)
}

// remove implements spec.md §4.7 "remove(name)".
func (d *dict) remove(name string) bool {
	if d.readonly {
		return false
	}
	if h := d.schema.match([]byte(name)); h != nil {
		if h == d.schema.contentLength {
			had := d.contentLengthSet
			d.contentLengthSet = false
			d.contentLength = 0
			if h.Index >= 0 {
				d.clearBit(h.Index)
				delete(d.values, h.Index)
				delete(d.raw, h.Index)
			}
			return had
		}
		had := d.bitSet(h.Index)
		d.clearBit(h.Index)
		delete(d.values, h.Index)
		delete(d.raw, h.Index)
		return had
	}
	return d.unknown.remove(name)
}

// setContentLength parses value into the dictionary's separate int64 slot
// (spec.md §9: Content-Length is never stored in the generic string-value
// table). Response direction also pins Content-Length to bit 63 of the
// bitmap (h.Index >= 0), so serialize's and each's bit-scans see it; request
// direction tracks it outside the bitmap entirely (h.Index == -1) and
// leaves bits untouched.
func (d *dict) setContentLength(h *fieldreg.Header, value string) error {
	if value == "" {
		d.contentLengthSet = false
		d.contentLength = 0
		if h.Index >= 0 {
			d.clearBit(h.Index)
			delete(d.values, h.Index)
		}
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return &InvalidHeaderValueError{Header: h.Name, Byte: 0}
	}
	d.contentLength = n
	d.contentLengthSet = true
	if h.Index >= 0 {
		d.setBit(h.Index)
	}
	return nil
}

// tryAppend implements spec.md §4.7 "try_append(name_bytes, value_bytes)".
func (d *dict) tryAppend(nameBytes, valueBytes []byte) (bool, error) {
	if d.readonly {
		return false, ErrReadOnly
	}
	h := d.schema.match(nameBytes)
	if h == nil {
		decoded, err := d.decode(nil, valueBytes)
		if err != nil {
			return false, err
		}
		d.unknown.append(string(nameBytes), decoded)
		d.record(false)
		return true, nil
	}
	d.record(true)
	if h == d.schema.contentLength {
		return true, d.appendContentLength(h, valueBytes)
	}
	return true, d.appendKnown(h, valueBytes)
}

// tryHPACKAppend implements spec.md §4.7 "try_hpack_append(index, value_bytes)".
func (d *dict) tryHPACKAppend(index int, valueBytes []byte) (bool, error) {
	if d.readonly {
		return false, ErrReadOnly
	}
	idx, ok := d.schema.hpackIndexToBit[uint32(index)]
	if !ok {
		return false, nil
	}
	h := d.schema.byIndex[idx]
	assertf(h != nil, "hpack index %d maps to unknown bit %d", index, idx)
	d.record(true)
	if h == d.schema.contentLength {
		return true, d.appendContentLength(h, valueBytes)
	}
	return true, d.appendKnown(h, valueBytes)
}

// appendContentLength parses valueBytes into the dictionary's separate
// int64 slot, the try_append/try_hpack_append counterpart of
// setContentLength: it bypasses the Value Reuse Rule entirely, since
// Content-Length changes with every message it's present on.
func (d *dict) appendContentLength(h *fieldreg.Header, valueBytes []byte) error {
	n, err := strconv.ParseInt(string(valueBytes), 10, 64)
	if err != nil || n < 0 {
		return &InvalidHeaderValueError{Header: h.Name, Byte: 0}
	}
	d.contentLength = n
	d.contentLengthSet = true
	if h.Index >= 0 {
		d.setBit(h.Index)
	}
	return nil
}

// appendKnown applies the Value Reuse Rule of spec.md §4.7 for a known,
// bit-tracked header other than Content-Length (h.Index >= 0).
func (d *dict) appendKnown(h *fieldreg.Header, valueBytes []byte) error {
	idx := h.Index
	if d.previousBits&(1<<uint(idx)) != 0 {
		d.previousBits &^= 1 << uint(idx)
		if prev, ok := d.previousValues[idx]; ok && asciiEqual(prev, valueBytes) {
			d.values[idx] = []string{prev}
			d.setBit(idx)
			if h.EnhancedSetter {
				delete(d.raw, idx)
			}
			return nil
		}
	}
	decoded, err := d.decode(h, valueBytes)
	if err != nil {
		return err
	}
	if d.bitSet(idx) {
		d.values[idx] = append(d.values[idx], decoded)
	} else {
		d.values[idx] = []string{decoded}
		d.setBit(idx)
	}
	if h.EnhancedSetter {
		delete(d.raw, idx)
	}
	return nil
}

func asciiEqual(prev string, b []byte) bool {
	if len(prev) != len(b) {
		return false
	}
	for i := 0; i < len(b); i++ {
		if prev[i] != b[i] {
			return false
		}
	}
	return true
}

// decode turns raw wire bytes into a string under h's configured encoding
// (EncASCII for request direction / unknown headers). h may be nil for an
// unknown header, which is always treated as EncASCII.
func (d *dict) decode(h *fieldreg.Header, b []byte) (string, error) {
	enc := fieldreg.EncASCII
	name := "header"
	if h != nil {
		enc = d.schema.encoding[h.Index]
		name = h.Name
	}
	if d.schema.dir == fieldreg.DirRequest {
		enc = fieldreg.EncASCII
	}
	if bad, ok := illegalByte(b, enc); ok {
		return "", &InvalidHeaderValueError{Header: name, Byte: bad}
	}
	return string(b), nil
}

func (d *dict) validate(h *fieldreg.Header, value string) error {
	enc := d.schema.encoding[h.Index]
	if bad, ok := illegalByte([]byte(value), enc); ok {
		return &InvalidHeaderValueError{Header: h.Name, Byte: bad}
	}
	return nil
}

// illegalByte reports the first byte of b illegal under enc, if any
// (spec.md §4.7 "validate that value characters are legal under the
// configured per-header encoding").
func illegalByte(b []byte, enc fieldreg.ValueEncoding) (byte, bool) {
	if enc == fieldreg.EncUTF8 {
		for i := 0; i < len(b); {
			r, size := utf8.DecodeRune(b[i:])
			if (r == utf8.RuneError && size == 1) || (b[i] < 0x20 && b[i] != '\t') {
				return b[i], true
			}
			i += size
		}
		return 0, false
	}
	for _, c := range b {
		if (c < 0x20 || c > 0x7E) && c != '\t' {
			return c, true
		}
	}
	return 0, false
}

// recycle snapshots the single-valued known headers of the current message
// into previousBits/previousValues (spec.md §4.7 Value Reuse Rule, §9 "per-
// connection previous_bits, not process-wide") and clears the dictionary
// for the next message on the same connection.
func (d *dict) recycle() {
	prevBits := uint64(0)
	prevValues := make(map[int8]string, len(d.values))
	for idx, vs := range d.values {
		if len(vs) == 1 {
			prevBits |= 1 << uint(idx)
			prevValues[idx] = vs[0]
		}
	}
	d.previousBits = prevBits
	d.previousValues = prevValues
	d.clear()
}

// clearBitsCutoff is the documented heuristic of spec.md §4.7/§9: above
// this many set bits, clear() overwrites the whole slot table instead of
// visiting each set bit individually.
const clearBitsCutoff = 12

// clear implements spec.md §4.7 "Clear".
func (d *dict) clear() {
	d.unknown.clear()
	d.contentLength = 0
	d.contentLengthSet = false

	n := bits.OnesCount64(d.bits)
	if n > clearBitsCutoff {
		d.values = make(map[int8][]string)
		d.raw = make(map[int8][]byte)
	} else {
		for d.bits != 0 {
			idx := int8(bits.TrailingZeros64(d.bits))
			delete(d.values, idx)
			delete(d.raw, idx)
			d.bits &^= 1 << uint(idx)
		}
	}
	d.bits = 0
	if d.recorder != nil {
		d.recorder.ObserveClear(n)
	}
}

// copyTo implements spec.md §6 "copy_to": it overwrites dst's entire known,
// unknown, and Content-Length state with d's, leaving d itself untouched.
// dst's readonly flag is not copied; freezing is a per-instance operation
// callers apply after copying, not a property that travels with the data.
func (d *dict) copyTo(dst *dict) error {
	if dst.readonly {
		return ErrReadOnly
	}
	dst.bits = d.bits
	dst.previousBits = d.previousBits

	dst.values = make(map[int8][]string, len(d.values))
	for idx, vs := range d.values {
		cp := make([]string, len(vs))
		copy(cp, vs)
		dst.values[idx] = cp
	}

	dst.raw = make(map[int8][]byte, len(d.raw))
	for idx, raw := range d.raw {
		cp := make([]byte, len(raw))
		copy(cp, raw)
		dst.raw[idx] = cp
	}

	if d.previousValues != nil {
		dst.previousValues = make(map[int8]string, len(d.previousValues))
		for idx, v := range d.previousValues {
			dst.previousValues[idx] = v
		}
	} else {
		dst.previousValues = nil
	}

	dst.contentLength = d.contentLength
	dst.contentLengthSet = d.contentLengthSet
	dst.unknown = d.unknown.clone()
	return nil
}

func (d *dict) freeze()          { d.readonly = true }
func (d *dict) isReadonly() bool { return d.readonly }

func (d *dict) record(known bool) {
	if d.recorder == nil {
		return
	}
	d.recorder.ObserveLookup(d.schema.dir.String(), known)
}

// field is the generic stand-in for the per-identifier typed fast
// accessors spec.md §6 asks the generator to print one of per header:
// this package resolves the identifier against the schema built at init
// instead of having one generated method per header (see the schema type's
// doc in schema.go).
func (d *dict) field(identifier string) (string, bool) {
	idx, ok := d.schema.identifierIndex[identifier]
	if !ok {
		return "", false
	}
	if cl := d.schema.contentLength; cl != nil && idx == cl.Index {
		if d.contentLengthSet {
			return strconv.FormatInt(d.contentLength, 10), true
		}
		return "", false
	}
	if !d.bitSet(idx) {
		return "", false
	}
	vs := d.values[idx]
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func (d *dict) has(identifier string) bool {
	idx, ok := d.schema.identifierIndex[identifier]
	if !ok {
		return false
	}
	if cl := d.schema.contentLength; cl != nil && idx == cl.Index {
		return d.contentLengthSet
	}
	return d.bitSet(idx)
}

func (d *dict) count(identifier string) int {
	idx, ok := d.schema.identifierIndex[identifier]
	if !ok || idx < 0 {
		return 0
	}
	return len(d.values[idx])
}

// setRaw installs the pre-encoded companion bytes of an enhanced-setter
// header (spec.md §3 "enhanced_setter"): the serializer writes this
// verbatim instead of formatting the value slot.
func (d *dict) setRaw(identifier string, raw []byte) bool {
	if d.readonly {
		return false
	}
	idx, ok := d.schema.identifierIndex[identifier]
	if !ok || idx < 0 {
		return false
	}
	h := d.schema.byIndex[idx]
	if h == nil || !h.EnhancedSetter {
		return false
	}
	d.raw[idx] = raw
	d.setBit(idx)
	return true
}

// each walks every set bit in the deterministic order of spec.md §4.7
// "Enumeration": index order, then the Content-Length pseudo-entry when it
// is not already bit-tracked (request direction), then unknown in
// insertion order.
func (d *dict) each(fn func(name, value string)) {
	bitsLeft := d.bits
	for bitsLeft != 0 {
		idx := int8(bits.TrailingZeros64(bitsLeft))
		h := d.schema.byIndex[idx]
		assertf(h != nil, "set bit %d has no known header", idx)
		if h == d.schema.contentLength {
			fn(h.Name, strconv.FormatInt(d.contentLength, 10))
		} else {
			for _, v := range d.values[idx] {
				fn(h.Name, v)
			}
		}
		bitsLeft &^= 1 << uint(idx)
	}
	// Request direction's Content-Length (Index == -1) is never bit-tracked,
	// so the bit-scan above never visits it.
	if d.schema.contentLength != nil && d.schema.contentLength.Index < 0 && d.contentLengthSet {
		fn(d.schema.contentLength.Name, strconv.FormatInt(d.contentLength, 10))
	}
	d.unknown.each(fn)
}

// hasInvalidH2H3 and clearInvalidH2H3 implement the concrete scenario of
// spec.md §8 #4 for the response direction's connection-level headers.
func (d *dict) hasInvalidH2H3() bool { return d.bits&d.schema.invalidMask != 0 }

func (d *dict) clearInvalidH2H3() {
	bitsLeft := d.bits & d.schema.invalidMask
	for bitsLeft != 0 {
		idx := int8(bits.TrailingZeros64(bitsLeft))
		d.clearBit(idx)
		delete(d.values, idx)
		delete(d.raw, idx)
		bitsLeft &^= 1 << uint(idx)
	}
}

// serialize implements spec.md §4.7 "Serialization (response/trailer
// only)". It consumes bits left-to-right by trailing-zero count, as
// prescribed, but does not mutate d: callers that want the "clear as
// consumed" behavior literally should follow up with clear().
func (d *dict) serialize(w io.Writer) error {
	bitsLeft := d.bits
	for bitsLeft != 0 {
		idx := int8(bits.TrailingZeros64(bitsLeft))
		h := d.schema.byIndex[idx]
		if h == nil {
			return &invalidBitsError{idx: idx}
		}
		if h == d.schema.contentLength {
			if err := writeKey(w, d.schema.wireBlob, h); err != nil {
				return err
			}
			if _, err := io.WriteString(w, strconv.FormatInt(d.contentLength, 10)); err != nil {
				return err
			}
		} else if h.EnhancedSetter {
			if raw, ok := d.raw[idx]; ok {
				if _, err := w.Write(raw); err != nil {
					return err
				}
			} else if err := writeValues(w, d.schema.wireBlob, h, d.values[idx]); err != nil {
				return err
			}
		} else if err := writeValues(w, d.schema.wireBlob, h, d.values[idx]); err != nil {
			return err
		}
		bitsLeft &^= 1 << uint(idx)
	}
	return nil
}

func writeKey(w io.Writer, blob []byte, h *fieldreg.Header) error {
	if h.WireLength == 0 {
		_, err := io.WriteString(w, "\r\n"+h.Name+": ")
		return err
	}
	_, err := w.Write(blob[h.WireOffset : h.WireOffset+h.WireLength])
	return err
}

func writeValues(w io.Writer, blob []byte, h *fieldreg.Header, values []string) error {
	for _, v := range values {
		if err := writeKey(w, blob, h); err != nil {
			return err
		}
		if _, err := io.WriteString(w, v); err != nil {
			return err
		}
	}
	return nil
}

// invalidBitsError is InvalidHeaderBitsError (spec.md §6): a bit outside
// the legal set was observed during serialization, an implementation bug.
type invalidBitsError struct{ idx int8 }

func (e *invalidBitsError) Error() string {
	return "headers: invariant violation: bit " + strconv.Itoa(int(e.idx)) + " has no known header"
}
