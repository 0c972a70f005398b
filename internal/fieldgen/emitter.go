// Package fieldgen is the Dictionary Emitter of spec.md §4.7: it composes
// the Header Registry, SWAR Matcher Synthesizer, Bit Layout Planner,
// Wire-Bytes Table Builder, and HPACK Dispatcher into the final, printed
// per-direction source artifact cmd/fieldgen writes to disk.
//
// Generate's output is a complete, independently compiling package: a
// Dictionary type plus every primitive spec.md §6 asks for (get/set/add/
// remove/copy_to/clear, an enumerator, a direction-specific serializer, and
// one typed fast accessor per known header), built entirely against the
// standard library. It does not import headers (the hand-authored runtime
// package that shares its matching/bit-layout semantics, see the doc of
// the schema type in headers/schema.go) or any other printed output: running it
// is a standalone proof that the generator's own artifact is real, not just
// a semantic mirror of the hand-written runtime.
package fieldgen

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"

	"github.com/hexinfra/fielddict/internal/fieldreg"
	"github.com/hexinfra/fielddict/internal/swar"
)

// noMatch is matchHeader's "nothing known matched" return value.
const noMatch int8 = -1

// contentLengthSentinel replaces Content-Length's real Index purely for
// matcher codegen when that real Index would otherwise equal noMatch (the
// request direction: Content-Length is tracked outside the bitmap at real
// Index -1, spec.md §9). matchHeader only ever returns a header's real
// Index or noMatch, so without this substitution a request-direction
// Content-Length match would be indistinguishable from "no header
// matched". Bit operations always key off the real Index; only the
// printed matchHeader/consumer comparisons use this sentinel.
const contentLengthSentinel int8 = -2

// Generate prints the complete, gofmt'd source file for one direction.
// Running it twice on the same registry and overrides produces
// byte-identical output (spec.md §5: "serialize to byte-identical output").
func Generate(dir fieldreg.Direction, overrides fieldreg.Overrides) ([]byte, error) {
	headers := fieldreg.BuildDirection(dir, overrides)
	headers, mask := fieldreg.PlanBits(dir, headers)
	wire := fieldreg.BuildWireBlob(headers)
	groups := fieldreg.BuildHPACKGroups(headers)

	var contentLength *fieldreg.Header
	for i := range headers {
		if strings.EqualFold(headers[i].Name, "Content-Length") {
			contentLength = &headers[i]
		}
	}
	hasContentLength := contentLength != nil
	contentLengthIndex := noMatch
	if hasContentLength {
		contentLengthIndex = contentLength.Index
	}
	contentLengthBitTracked := hasContentLength && contentLengthIndex >= 0

	contentLengthMatch := contentLengthIndex
	genHeaders := headers
	if hasContentLength && contentLengthIndex == noMatch {
		contentLengthMatch = contentLengthSentinel
		genHeaders = append([]fieldreg.Header(nil), headers...)
		for i := range genHeaders {
			if genHeaders[i].Index == noMatch {
				genHeaders[i].Index = contentLengthSentinel
			}
		}
	}
	buckets := swar.BuildBuckets(genHeaders)

	dirName := dir.String()
	title := titleCase(dirName)

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by fieldgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "// Package %s is the standalone, generated %s-direction header\n", dirName, dirName)
	fmt.Fprintf(&b, "// dictionary (spec.md §4.7, §6): a Dictionary type plus every\n")
	fmt.Fprintf(&b, "// get/set/add/remove/copy_to/clear primitive, an enumerator, a\n")
	fmt.Fprintf(&b, "// serializer, and one typed fast accessor per known header.\n")
	fmt.Fprintf(&b, "package %s\n\n", dirName)
	fmt.Fprintf(&b, "import (\n")
	fmt.Fprintf(&b, "\t\"encoding/binary\"\n")
	fmt.Fprintf(&b, "\t\"fmt\"\n")
	fmt.Fprintf(&b, "\t\"io\"\n")
	fmt.Fprintf(&b, "\t\"math/bits\"\n")
	if hasContentLength {
		fmt.Fprintf(&b, "\t\"strconv\"\n")
	}
	fmt.Fprintf(&b, "\t\"unicode/utf8\"\n")
	fmt.Fprintf(&b, ")\n\n")

	emitErrors(&b, dirName)
	emitConstants(&b, headers, mask, hasContentLength, contentLengthBitTracked)
	emitMeta(&b, headers, wire, overrides)
	fmt.Fprintf(&b, "%s\n", swar.EmitMatcher("matchHeader", buckets))
	emitHPACKMap(&b, groups)
	emitDictionary(&b, title)
	emitBitHelpers(&b)
	emitUnknownHelpers(&b)
	emitGet(&b, hasContentLength, contentLengthMatch)
	emitSet(&b, dir, hasContentLength, contentLengthMatch)
	emitAdd(&b)
	emitRemove(&b, hasContentLength, contentLengthMatch, contentLengthBitTracked)
	if hasContentLength {
		emitContentLengthHelpers(&b, contentLengthBitTracked)
	}
	emitTryAppend(&b, hasContentLength, contentLengthMatch)
	emitTryHPACKAppend(&b, hasContentLength, contentLengthIndex)
	emitAppendKnown(&b)
	emitDecodeValidate(&b, dir)
	emitCopyTo(&b)
	emitClear(&b)
	if dir == fieldreg.DirRequest {
		emitRecycle(&b)
	}
	emitEach(&b, hasContentLength, contentLengthBitTracked, contentLengthIndex)
	emitSerialize(&b, hasContentLength, contentLengthBitTracked, contentLengthIndex)
	if mask != 0 {
		emitInvalidH2H3(&b)
	}
	anyEnhanced := false
	for _, h := range headers {
		if h.EnhancedSetter {
			anyEnhanced = true
		}
	}
	if anyEnhanced {
		emitSetRaw(&b)
	}
	for _, h := range headers {
		emitAccessor(&b, h, hasContentLength, contentLength)
	}

	return format.Source(b.Bytes())
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 0x20
	}
	return string(b)
}

func emitErrors(b *bytes.Buffer, dirName string) {
	fmt.Fprintf(b, "// ErrReadOnly is returned by every mutator once a dictionary has been\n")
	fmt.Fprintf(b, "// frozen (spec.md §6 ReadOnlyError).\n")
	fmt.Fprintf(b, "var ErrReadOnly = fmt.Errorf(%q)\n\n", dirName+": dictionary is read-only")
	fmt.Fprintf(b, "// ErrValueExists is returned by Add when the header already holds a value.\n")
	fmt.Fprintf(b, "var ErrValueExists = fmt.Errorf(%q)\n\n", dirName+": value already present")
	fmt.Fprintf(b, "// InvalidHeaderValueError is returned by Set/Add/TryAppend when a value\n")
	fmt.Fprintf(b, "// byte is illegal under the header's configured encoding (spec.md §6).\n")
	fmt.Fprintf(b, "type InvalidHeaderValueError struct {\n\tHeader string\n\tByte   byte\n}\n\n")
	fmt.Fprintf(b, "func (e *InvalidHeaderValueError) Error() string {\n")
	fmt.Fprintf(b, "\treturn fmt.Sprintf(%q, e.Header, e.Byte)\n", dirName+": %s: illegal byte 0x%02x in value")
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "// invalidBitsError reports a set bit with no known header: an invariant\n")
	fmt.Fprintf(b, "// violation a well-formed build must never produce.\n")
	fmt.Fprintf(b, "type invalidBitsError struct{ idx int8 }\n\n")
	fmt.Fprintf(b, "func (e *invalidBitsError) Error() string {\n")
	fmt.Fprintf(b, "\treturn fmt.Sprintf(%q, e.idx)\n", dirName+": invariant violation: bit %d has no known header")
	fmt.Fprintf(b, "}\n\n")
}

func emitConstants(b *bytes.Buffer, headers []fieldreg.Header, mask uint64, hasContentLength, contentLengthBitTracked bool) {
	fmt.Fprintf(b, "const ( // known header bit indexes\n")
	for _, h := range headers {
		fmt.Fprintf(b, "\tidx%s int8 = %d // %s\n", h.Identifier, h.Index, h.Name)
	}
	fmt.Fprintf(b, ")\n\n")
	fmt.Fprintf(b, "// noMatch is matchHeader's \"nothing known matched\" return value.\n")
	fmt.Fprintf(b, "const noMatch int8 = %d\n\n", noMatch)
	fmt.Fprintf(b, "// clearBitsCutoff is the documented heuristic of spec.md §4.7/§9: above\n")
	fmt.Fprintf(b, "// this many set bits, Clear overwrites the whole slot table instead of\n")
	fmt.Fprintf(b, "// visiting each set bit individually.\n")
	fmt.Fprintf(b, "const clearBitsCutoff = 12\n\n")
	if mask != 0 {
		fmt.Fprintf(b, "// invalidH2H3Mask is the OR of bit indexes for every connection-level\n")
		fmt.Fprintf(b, "// header illegal under HTTP/2 and HTTP/3 (spec.md §3/§4.4).\n")
		fmt.Fprintf(b, "const invalidH2H3Mask uint64 = 0x%x\n\n", mask)
	}
	if hasContentLength {
		fmt.Fprintf(b, "// contentLengthBitTracked records this direction's Content-Length\n")
		fmt.Fprintf(b, "// asymmetry (spec.md §9): it is never stored in the generic value\n")
		fmt.Fprintf(b, "// table, and is only bit-tracked (pinned to bit 63) for directions\n")
		fmt.Fprintf(b, "// where the response format requires it.\n")
		fmt.Fprintf(b, "const contentLengthBitTracked = %t\n\n", contentLengthBitTracked)
	}
}

func emitMeta(b *bytes.Buffer, headers []fieldreg.Header, wire fieldreg.WireBlob, overrides fieldreg.Overrides) {
	fmt.Fprintf(b, "// headerMeta is one known header's serialization and validation\n")
	fmt.Fprintf(b, "// metadata, keyed by bit index.\n")
	fmt.Fprintf(b, "type headerMeta struct {\n")
	fmt.Fprintf(b, "\tName           string\n")
	fmt.Fprintf(b, "\tEnhancedSetter bool\n")
	fmt.Fprintf(b, "\tUTF8           bool\n")
	fmt.Fprintf(b, "\tWireOffset     int\n")
	fmt.Fprintf(b, "\tWireLength     int\n")
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "var headerMetaByIndex = map[int8]headerMeta{\n")
	for _, h := range headers {
		utf8Allowed := overrides.EncodingFor(h.Name) == fieldreg.EncUTF8
		fmt.Fprintf(b, "\t%d: {Name: %q, EnhancedSetter: %t, UTF8: %t, WireOffset: %d, WireLength: %d},\n",
			h.Index, h.Name, h.EnhancedSetter, utf8Allowed, h.WireOffset, h.WireLength)
	}
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "// wireBlob holds, for every enhanced-setter header, \"\\r\\n\" + exact-case\n")
	fmt.Fprintf(b, "// name + \": \" at [WireOffset:WireOffset+WireLength].\n")
	fmt.Fprintf(b, "var wireBlob = []byte(%q)\n\n", string(wire.Bytes))
}

func emitHPACKMap(b *bytes.Buffer, groups []fieldreg.HPACKGroup) {
	fmt.Fprintf(b, "// hpackIndexToBit maps an HTTP/2 static-table index to the known header\n")
	fmt.Fprintf(b, "// bit it should be applied to without further name matching (spec.md\n")
	fmt.Fprintf(b, "// §4.6). Indexes whose name has no known header here are absent; callers\n")
	fmt.Fprintf(b, "// fall back to literal name matching.\n")
	fmt.Fprintf(b, "var hpackIndexToBit = map[uint32]int8{\n")
	for _, g := range groups {
		if g.Header == nil {
			continue
		}
		for _, idx := range g.Indices {
			fmt.Fprintf(b, "\t%d: %d, // %s\n", idx, g.Header.Index, g.Name)
		}
	}
	fmt.Fprintf(b, "}\n\n")
}

func emitDictionary(b *bytes.Buffer, title string) {
	fmt.Fprintf(b, "// UnknownEntry is one name -> value-sequence pair in insertion order.\n")
	fmt.Fprintf(b, "type UnknownEntry struct {\n\tName   string\n\tValues []string\n}\n\n")
	fmt.Fprintf(b, "// Dictionary is the %s-direction known-header dictionary (spec.md §4.7).\n", title)
	fmt.Fprintf(b, "type Dictionary struct {\n")
	fmt.Fprintf(b, "\tbits           uint64\n")
	fmt.Fprintf(b, "\tpreviousBits   uint64\n")
	fmt.Fprintf(b, "\tpreviousValues map[int8]string\n\n")
	fmt.Fprintf(b, "\tvalues map[int8][]string\n")
	fmt.Fprintf(b, "\traw    map[int8][]byte\n\n")
	fmt.Fprintf(b, "\tunknownOrder []UnknownEntry\n")
	fmt.Fprintf(b, "\tunknownIndex map[string]int\n\n")
	fmt.Fprintf(b, "\tcontentLength    int64\n")
	fmt.Fprintf(b, "\tcontentLengthSet bool\n\n")
	fmt.Fprintf(b, "\treadonly bool\n")
	fmt.Fprintf(b, "}\n\n")
	fmt.Fprintf(b, "// New returns an empty, writable %s dictionary.\n", title)
	fmt.Fprintf(b, "func New() *Dictionary {\n")
	fmt.Fprintf(b, "\treturn &Dictionary{\n")
	fmt.Fprintf(b, "\t\tvalues:       make(map[int8][]string),\n")
	fmt.Fprintf(b, "\t\traw:          make(map[int8][]byte),\n")
	fmt.Fprintf(b, "\t\tunknownIndex: make(map[string]int),\n")
	fmt.Fprintf(b, "\t}\n")
	fmt.Fprintf(b, "}\n\n")
}

func emitBitHelpers(b *bytes.Buffer) {
	fmt.Fprintf(b, "func (d *Dictionary) bitSet(idx int8) bool { return d.bits&(1<<uint(idx)) != 0 }\n")
	fmt.Fprintf(b, "func (d *Dictionary) setBit(idx int8)      { d.bits |= 1 << uint(idx) }\n")
	fmt.Fprintf(b, "func (d *Dictionary) clearBit(idx int8)    { d.bits &^= 1 << uint(idx) }\n\n")
}

func emitUnknownHelpers(b *bytes.Buffer) {
	fmt.Fprintf(b, "func (d *Dictionary) unknownGet(name string) (string, bool) {\n")
	fmt.Fprintf(b, "\ti, ok := d.unknownIndex[lowerASCII(name)]\n")
	fmt.Fprintf(b, "\tif !ok || len(d.unknownOrder[i].Values) == 0 {\n\t\treturn \"\", false\n\t}\n")
	fmt.Fprintf(b, "\treturn d.unknownOrder[i].Values[0], true\n}\n\n")

	fmt.Fprintf(b, "func (d *Dictionary) unknownSet(name, value string) {\n")
	fmt.Fprintf(b, "\tkey := lowerASCII(name)\n")
	fmt.Fprintf(b, "\tif i, ok := d.unknownIndex[key]; ok {\n")
	fmt.Fprintf(b, "\t\td.unknownOrder[i].Values = []string{value}\n\t\treturn\n\t}\n")
	fmt.Fprintf(b, "\td.unknownIndex[key] = len(d.unknownOrder)\n")
	fmt.Fprintf(b, "\td.unknownOrder = append(d.unknownOrder, UnknownEntry{Name: name, Values: []string{value}})\n}\n\n")

	fmt.Fprintf(b, "func (d *Dictionary) unknownAppend(name, value string) {\n")
	fmt.Fprintf(b, "\tkey := lowerASCII(name)\n")
	fmt.Fprintf(b, "\tif i, ok := d.unknownIndex[key]; ok {\n")
	fmt.Fprintf(b, "\t\td.unknownOrder[i].Values = append(d.unknownOrder[i].Values, value)\n\t\treturn\n\t}\n")
	fmt.Fprintf(b, "\td.unknownIndex[key] = len(d.unknownOrder)\n")
	fmt.Fprintf(b, "\td.unknownOrder = append(d.unknownOrder, UnknownEntry{Name: name, Values: []string{value}})\n}\n\n")

	fmt.Fprintf(b, "func (d *Dictionary) unknownRemove(name string) bool {\n")
	fmt.Fprintf(b, "\tkey := lowerASCII(name)\n")
	fmt.Fprintf(b, "\ti, ok := d.unknownIndex[key]\n\tif !ok {\n\t\treturn false\n\t}\n")
	fmt.Fprintf(b, "\td.unknownOrder = append(d.unknownOrder[:i], d.unknownOrder[i+1:]...)\n")
	fmt.Fprintf(b, "\tdelete(d.unknownIndex, key)\n")
	fmt.Fprintf(b, "\tfor j := i; j < len(d.unknownOrder); j++ {\n")
	fmt.Fprintf(b, "\t\td.unknownIndex[lowerASCII(d.unknownOrder[j].Name)] = j\n\t}\n")
	fmt.Fprintf(b, "\treturn true\n}\n\n")

	fmt.Fprintf(b, "func (d *Dictionary) unknownEach(fn func(name, value string)) {\n")
	fmt.Fprintf(b, "\tfor _, e := range d.unknownOrder {\n")
	fmt.Fprintf(b, "\t\tfor _, v := range e.Values {\n\t\t\tfn(e.Name, v)\n\t\t}\n\t}\n}\n\n")

	fmt.Fprintf(b, "func lowerASCII(s string) string {\n")
	fmt.Fprintf(b, "\tbz := []byte(s)\n")
	fmt.Fprintf(b, "\tfor i, c := range bz {\n\t\tif c >= 'A' && c <= 'Z' {\n\t\t\tbz[i] = c + 0x20\n\t\t}\n\t}\n")
	fmt.Fprintf(b, "\treturn string(bz)\n}\n\n")
}

func emitGet(b *bytes.Buffer, hasContentLength bool, contentLengthMatch int8) {
	fmt.Fprintf(b, "// Get implements spec.md §4.7 \"get(name)\".\n")
	fmt.Fprintf(b, "func (d *Dictionary) Get(name string) (string, bool) {\n")
	fmt.Fprintf(b, "\th := matchHeader([]byte(name))\n")
	fmt.Fprintf(b, "\tif h == noMatch {\n\t\treturn d.unknownGet(name)\n\t}\n")
	if hasContentLength {
		fmt.Fprintf(b, "\tif h == %d {\n", contentLengthMatch)
		fmt.Fprintf(b, "\t\tif d.contentLengthSet {\n\t\t\treturn strconv.FormatInt(d.contentLength, 10), true\n\t\t}\n")
		fmt.Fprintf(b, "\t\treturn \"\", false\n\t}\n")
	}
	fmt.Fprintf(b, "\tif d.bitSet(h) {\n")
	fmt.Fprintf(b, "\t\tif vs := d.values[h]; len(vs) > 0 {\n\t\t\treturn vs[0], true\n\t\t}\n\t}\n")
	fmt.Fprintf(b, "\treturn \"\", false\n}\n\n")
}

func emitSet(b *bytes.Buffer, dir fieldreg.Direction, hasContentLength bool, contentLengthMatch int8) {
	fmt.Fprintf(b, "// Set implements spec.md §4.7 \"set(name, value)\".\n")
	fmt.Fprintf(b, "func (d *Dictionary) Set(name, value string) error {\n")
	fmt.Fprintf(b, "\tif d.readonly {\n\t\treturn ErrReadOnly\n\t}\n")
	fmt.Fprintf(b, "\th := matchHeader([]byte(name))\n")
	fmt.Fprintf(b, "\tif h == noMatch {\n\t\td.unknownSet(name, value)\n\t\treturn nil\n\t}\n")
	if hasContentLength {
		fmt.Fprintf(b, "\tif h == %d {\n\t\treturn d.setContentLength(value)\n\t}\n", contentLengthMatch)
	}
	if dir != fieldreg.DirRequest {
		fmt.Fprintf(b, "\tif err := d.validate(h, value); err != nil {\n\t\treturn err\n\t}\n")
	}
	fmt.Fprintf(b, "\tif value == \"\" {\n\t\td.clearBit(h)\n\t\tdelete(d.values, h)\n\t} else {\n")
	fmt.Fprintf(b, "\t\td.values[h] = []string{value}\n\t\td.setBit(h)\n\t}\n")
	fmt.Fprintf(b, "\tif meta, ok := headerMetaByIndex[h]; ok && meta.EnhancedSetter {\n\t\tdelete(d.raw, h)\n\t}\n")
	fmt.Fprintf(b, "\treturn nil\n}\n\n")
}

func emitAdd(b *bytes.Buffer) {
	fmt.Fprintf(b, "// Add implements spec.md §4.7 \"add(name, value)\".\n")
	fmt.Fprintf(b, "func (d *Dictionary) Add(name, value string) error {\n")
	fmt.Fprintf(b, "\tif d.readonly {\n\t\treturn ErrReadOnly\n\t}\n")
	fmt.Fprintf(b, "\tif _, present := d.Get(name); present {\n\t\treturn ErrValueExists\n\t}\n")
	fmt.Fprintf(b, "\treturn d.Set(name, value)\n}\n\n")
}

func emitRemove(b *bytes.Buffer, hasContentLength bool, contentLengthMatch int8, contentLengthBitTracked bool) {
	fmt.Fprintf(b, "// Remove implements spec.md §4.7 \"remove(name)\".\n")
	fmt.Fprintf(b, "func (d *Dictionary) Remove(name string) bool {\n")
	fmt.Fprintf(b, "\tif d.readonly {\n\t\treturn false\n\t}\n")
	fmt.Fprintf(b, "\th := matchHeader([]byte(name))\n")
	fmt.Fprintf(b, "\tif h == noMatch {\n\t\treturn d.unknownRemove(name)\n\t}\n")
	if hasContentLength {
		fmt.Fprintf(b, "\tif h == %d {\n", contentLengthMatch)
		fmt.Fprintf(b, "\t\thad := d.contentLengthSet\n\t\td.contentLengthSet = false\n\t\td.contentLength = 0\n")
		if contentLengthBitTracked {
			fmt.Fprintf(b, "\t\td.clearBit(h)\n\t\tdelete(d.values, h)\n\t\tdelete(d.raw, h)\n")
		}
		fmt.Fprintf(b, "\t\treturn had\n\t}\n")
	}
	fmt.Fprintf(b, "\thad := d.bitSet(h)\n\td.clearBit(h)\n\tdelete(d.values, h)\n\tdelete(d.raw, h)\n")
	fmt.Fprintf(b, "\treturn had\n}\n\n")
}

func emitContentLengthHelpers(b *bytes.Buffer, contentLengthBitTracked bool) {
	fmt.Fprintf(b, "// setContentLength parses value into the dictionary's separate int64\n")
	fmt.Fprintf(b, "// slot (spec.md §9: Content-Length is never stored in the generic\n")
	fmt.Fprintf(b, "// string-value table).\n")
	fmt.Fprintf(b, "func (d *Dictionary) setContentLength(value string) error {\n")
	fmt.Fprintf(b, "\tif value == \"\" {\n\t\td.contentLengthSet = false\n\t\td.contentLength = 0\n")
	if contentLengthBitTracked {
		fmt.Fprintf(b, "\t\td.clearBit(idxContentLength)\n\t\tdelete(d.values, idxContentLength)\n")
	}
	fmt.Fprintf(b, "\t\treturn nil\n\t}\n")
	fmt.Fprintf(b, "\tn, err := strconv.ParseInt(value, 10, 64)\n")
	fmt.Fprintf(b, "\tif err != nil || n < 0 {\n\t\treturn &InvalidHeaderValueError{Header: \"Content-Length\", Byte: 0}\n\t}\n")
	fmt.Fprintf(b, "\td.contentLength = n\n\td.contentLengthSet = true\n")
	if contentLengthBitTracked {
		fmt.Fprintf(b, "\td.setBit(idxContentLength)\n")
	}
	fmt.Fprintf(b, "\treturn nil\n}\n\n")

	fmt.Fprintf(b, "// appendContentLength is the try_append/try_hpack_append counterpart of\n")
	fmt.Fprintf(b, "// setContentLength: it bypasses the Value Reuse Rule entirely, since\n")
	fmt.Fprintf(b, "// Content-Length changes with every message it's present on.\n")
	fmt.Fprintf(b, "func (d *Dictionary) appendContentLength(valueBytes []byte) error {\n")
	fmt.Fprintf(b, "\tn, err := strconv.ParseInt(string(valueBytes), 10, 64)\n")
	fmt.Fprintf(b, "\tif err != nil || n < 0 {\n\t\treturn &InvalidHeaderValueError{Header: \"Content-Length\", Byte: 0}\n\t}\n")
	fmt.Fprintf(b, "\td.contentLength = n\n\td.contentLengthSet = true\n")
	if contentLengthBitTracked {
		fmt.Fprintf(b, "\td.setBit(idxContentLength)\n")
	}
	fmt.Fprintf(b, "\treturn nil\n}\n\n")
}

func emitTryAppend(b *bytes.Buffer, hasContentLength bool, contentLengthMatch int8) {
	fmt.Fprintf(b, "// TryAppend implements spec.md §4.7 \"try_append(name_bytes, value_bytes)\":\n")
	fmt.Fprintf(b, "// the HTTP/1 parser's entry point for one raw header line.\n")
	fmt.Fprintf(b, "func (d *Dictionary) TryAppend(nameBytes, valueBytes []byte) (bool, error) {\n")
	fmt.Fprintf(b, "\tif d.readonly {\n\t\treturn false, ErrReadOnly\n\t}\n")
	fmt.Fprintf(b, "\th := matchHeader(nameBytes)\n")
	fmt.Fprintf(b, "\tif h == noMatch {\n")
	fmt.Fprintf(b, "\t\tdecoded, err := d.decode(noMatch, valueBytes)\n")
	fmt.Fprintf(b, "\t\tif err != nil {\n\t\t\treturn false, err\n\t\t}\n")
	fmt.Fprintf(b, "\t\td.unknownAppend(string(nameBytes), decoded)\n\t\treturn true, nil\n\t}\n")
	if hasContentLength {
		fmt.Fprintf(b, "\tif h == %d {\n\t\treturn true, d.appendContentLength(valueBytes)\n\t}\n", contentLengthMatch)
	}
	fmt.Fprintf(b, "\treturn true, d.appendKnown(h, valueBytes)\n}\n\n")
}

func emitTryHPACKAppend(b *bytes.Buffer, hasContentLength bool, contentLengthIndex int8) {
	fmt.Fprintf(b, "// TryHPACKAppend implements spec.md §4.7 \"try_hpack_append(index,\n")
	fmt.Fprintf(b, "// value_bytes)\": the HTTP/2 path, dispatching by static-table index\n")
	fmt.Fprintf(b, "// instead of matching the name.\n")
	fmt.Fprintf(b, "func (d *Dictionary) TryHPACKAppend(index int, valueBytes []byte) (bool, error) {\n")
	fmt.Fprintf(b, "\tif d.readonly {\n\t\treturn false, ErrReadOnly\n\t}\n")
	fmt.Fprintf(b, "\th, ok := hpackIndexToBit[uint32(index)]\n\tif !ok {\n\t\treturn false, nil\n\t}\n")
	if hasContentLength {
		fmt.Fprintf(b, "\tif h == %d {\n\t\treturn true, d.appendContentLength(valueBytes)\n\t}\n", contentLengthIndex)
	}
	fmt.Fprintf(b, "\treturn true, d.appendKnown(h, valueBytes)\n}\n\n")
}

func emitAppendKnown(b *bytes.Buffer) {
	fmt.Fprintf(b, "// appendKnown applies the Value Reuse Rule of spec.md §4.7 for a known,\n")
	fmt.Fprintf(b, "// bit-tracked header other than Content-Length.\n")
	fmt.Fprintf(b, "func (d *Dictionary) appendKnown(idx int8, valueBytes []byte) error {\n")
	fmt.Fprintf(b, "\tmeta := headerMetaByIndex[idx]\n")
	fmt.Fprintf(b, "\tif d.previousBits&(1<<uint(idx)) != 0 {\n")
	fmt.Fprintf(b, "\t\td.previousBits &^= 1 << uint(idx)\n")
	fmt.Fprintf(b, "\t\tif prev, ok := d.previousValues[idx]; ok && asciiEqual(prev, valueBytes) {\n")
	fmt.Fprintf(b, "\t\t\td.values[idx] = []string{prev}\n\t\t\td.setBit(idx)\n")
	fmt.Fprintf(b, "\t\t\tif meta.EnhancedSetter {\n\t\t\t\tdelete(d.raw, idx)\n\t\t\t}\n\t\t\treturn nil\n\t\t}\n\t}\n")
	fmt.Fprintf(b, "\tdecoded, err := d.decode(idx, valueBytes)\n\tif err != nil {\n\t\treturn err\n\t}\n")
	fmt.Fprintf(b, "\tif d.bitSet(idx) {\n\t\td.values[idx] = append(d.values[idx], decoded)\n\t} else {\n")
	fmt.Fprintf(b, "\t\td.values[idx] = []string{decoded}\n\t\td.setBit(idx)\n\t}\n")
	fmt.Fprintf(b, "\tif meta.EnhancedSetter {\n\t\tdelete(d.raw, idx)\n\t}\n\treturn nil\n}\n\n")

	fmt.Fprintf(b, "func asciiEqual(prev string, bz []byte) bool {\n")
	fmt.Fprintf(b, "\tif len(prev) != len(bz) {\n\t\treturn false\n\t}\n")
	fmt.Fprintf(b, "\tfor i := 0; i < len(bz); i++ {\n\t\tif prev[i] != bz[i] {\n\t\t\treturn false\n\t\t}\n\t}\n")
	fmt.Fprintf(b, "\treturn true\n}\n\n")
}

func emitDecodeValidate(b *bytes.Buffer, dir fieldreg.Direction) {
	fmt.Fprintf(b, "// decode turns raw wire bytes into a string, validating against idx's\n")
	fmt.Fprintf(b, "// configured encoding. idx may be noMatch for an unknown header, always\n")
	fmt.Fprintf(b, "// treated as ASCII.\n")
	fmt.Fprintf(b, "func (d *Dictionary) decode(idx int8, bz []byte) (string, error) {\n")
	fmt.Fprintf(b, "\tutf8Allowed := false\n\tname := \"header\"\n")
	fmt.Fprintf(b, "\tif meta, ok := headerMetaByIndex[idx]; ok {\n\t\tutf8Allowed = meta.UTF8\n\t\tname = meta.Name\n\t}\n")
	if dir == fieldreg.DirRequest {
		fmt.Fprintf(b, "\tutf8Allowed = false\n")
	}
	fmt.Fprintf(b, "\tif bad, ok := illegalByte(bz, utf8Allowed); ok {\n")
	fmt.Fprintf(b, "\t\treturn \"\", &InvalidHeaderValueError{Header: name, Byte: bad}\n\t}\n")
	fmt.Fprintf(b, "\treturn string(bz), nil\n}\n\n")

	fmt.Fprintf(b, "func (d *Dictionary) validate(idx int8, value string) error {\n")
	fmt.Fprintf(b, "\tmeta := headerMetaByIndex[idx]\n")
	fmt.Fprintf(b, "\tif bad, ok := illegalByte([]byte(value), meta.UTF8); ok {\n")
	fmt.Fprintf(b, "\t\treturn &InvalidHeaderValueError{Header: meta.Name, Byte: bad}\n\t}\n")
	fmt.Fprintf(b, "\treturn nil\n}\n\n")

	fmt.Fprintf(b, "// illegalByte reports the first byte of bz illegal under the header's\n")
	fmt.Fprintf(b, "// configured encoding, if any.\n")
	fmt.Fprintf(b, "func illegalByte(bz []byte, utf8Allowed bool) (byte, bool) {\n")
	fmt.Fprintf(b, "\tif utf8Allowed {\n")
	fmt.Fprintf(b, "\t\tfor i := 0; i < len(bz); {\n")
	fmt.Fprintf(b, "\t\t\tr, size := utf8.DecodeRune(bz[i:])\n")
	fmt.Fprintf(b, "\t\t\tif (r == utf8.RuneError && size == 1) || (bz[i] < 0x20 && bz[i] != '\\t') {\n\t\t\t\treturn bz[i], true\n\t\t\t}\n")
	fmt.Fprintf(b, "\t\t\ti += size\n\t\t}\n")
	fmt.Fprintf(b, "\t\treturn 0, false\n\t}\n")
	fmt.Fprintf(b, "\tfor _, c := range bz {\n\t\tif (c < 0x20 || c > 0x7E) && c != '\\t' {\n\t\t\treturn c, true\n\t\t}\n\t}\n")
	fmt.Fprintf(b, "\treturn 0, false\n}\n\n")
}

func emitCopyTo(b *bytes.Buffer) {
	fmt.Fprintf(b, "// CopyTo implements spec.md §6 \"copy_to\": it overwrites dst's entire\n")
	fmt.Fprintf(b, "// known, unknown, and Content-Length state with d's, leaving d itself\n")
	fmt.Fprintf(b, "// untouched. dst's readonly flag is not copied.\n")
	fmt.Fprintf(b, "func (d *Dictionary) CopyTo(dst *Dictionary) error {\n")
	fmt.Fprintf(b, "\tif dst.readonly {\n\t\treturn ErrReadOnly\n\t}\n")
	fmt.Fprintf(b, "\tdst.bits = d.bits\n\tdst.previousBits = d.previousBits\n\n")
	fmt.Fprintf(b, "\tdst.values = make(map[int8][]string, len(d.values))\n")
	fmt.Fprintf(b, "\tfor idx, vs := range d.values {\n")
	fmt.Fprintf(b, "\t\tcp := make([]string, len(vs))\n\t\tcopy(cp, vs)\n\t\tdst.values[idx] = cp\n\t}\n\n")
	fmt.Fprintf(b, "\tdst.raw = make(map[int8][]byte, len(d.raw))\n")
	fmt.Fprintf(b, "\tfor idx, raw := range d.raw {\n")
	fmt.Fprintf(b, "\t\tcp := make([]byte, len(raw))\n\t\tcopy(cp, raw)\n\t\tdst.raw[idx] = cp\n\t}\n\n")
	fmt.Fprintf(b, "\tif d.previousValues != nil {\n")
	fmt.Fprintf(b, "\t\tdst.previousValues = make(map[int8]string, len(d.previousValues))\n")
	fmt.Fprintf(b, "\t\tfor idx, v := range d.previousValues {\n\t\t\tdst.previousValues[idx] = v\n\t\t}\n")
	fmt.Fprintf(b, "\t} else {\n\t\tdst.previousValues = nil\n\t}\n\n")
	fmt.Fprintf(b, "\tdst.contentLength = d.contentLength\n\tdst.contentLengthSet = d.contentLengthSet\n\n")
	fmt.Fprintf(b, "\tdst.unknownOrder = make([]UnknownEntry, len(d.unknownOrder))\n")
	fmt.Fprintf(b, "\tcopy(dst.unknownOrder, d.unknownOrder)\n")
	fmt.Fprintf(b, "\tdst.unknownIndex = make(map[string]int, len(d.unknownIndex))\n")
	fmt.Fprintf(b, "\tfor k, v := range d.unknownIndex {\n\t\tdst.unknownIndex[k] = v\n\t}\n")
	fmt.Fprintf(b, "\treturn nil\n}\n\n")
}

func emitClear(b *bytes.Buffer) {
	fmt.Fprintf(b, "// Clear implements spec.md §4.7 \"Clear\".\n")
	fmt.Fprintf(b, "func (d *Dictionary) Clear() {\n")
	fmt.Fprintf(b, "\td.unknownOrder = d.unknownOrder[:0]\n")
	fmt.Fprintf(b, "\tfor k := range d.unknownIndex {\n\t\tdelete(d.unknownIndex, k)\n\t}\n")
	fmt.Fprintf(b, "\td.contentLength = 0\n\td.contentLengthSet = false\n\n")
	fmt.Fprintf(b, "\tn := bits.OnesCount64(d.bits)\n")
	fmt.Fprintf(b, "\tif n > clearBitsCutoff {\n")
	fmt.Fprintf(b, "\t\td.values = make(map[int8][]string)\n\t\td.raw = make(map[int8][]byte)\n")
	fmt.Fprintf(b, "\t} else {\n")
	fmt.Fprintf(b, "\t\tfor d.bits != 0 {\n")
	fmt.Fprintf(b, "\t\t\tidx := int8(bits.TrailingZeros64(d.bits))\n")
	fmt.Fprintf(b, "\t\t\tdelete(d.values, idx)\n\t\t\tdelete(d.raw, idx)\n\t\t\td.bits &^= 1 << uint(idx)\n\t\t}\n")
	fmt.Fprintf(b, "\t}\n\td.bits = 0\n}\n\n")
	fmt.Fprintf(b, "func (d *Dictionary) Freeze()          { d.readonly = true }\n")
	fmt.Fprintf(b, "func (d *Dictionary) IsReadonly() bool { return d.readonly }\n\n")
}

func emitRecycle(b *bytes.Buffer) {
	fmt.Fprintf(b, "// Recycle snapshots single-valued known headers for the Value Reuse\n")
	fmt.Fprintf(b, "// Rule and clears the dictionary for the next message on the same\n")
	fmt.Fprintf(b, "// connection (spec.md §4.7, §9 \"per-instance, not process-wide\").\n")
	fmt.Fprintf(b, "func (d *Dictionary) Recycle() {\n")
	fmt.Fprintf(b, "\tprevBits := uint64(0)\n")
	fmt.Fprintf(b, "\tprevValues := make(map[int8]string, len(d.values))\n")
	fmt.Fprintf(b, "\tfor idx, vs := range d.values {\n")
	fmt.Fprintf(b, "\t\tif len(vs) == 1 {\n\t\t\tprevBits |= 1 << uint(idx)\n\t\t\tprevValues[idx] = vs[0]\n\t\t}\n\t}\n")
	fmt.Fprintf(b, "\td.previousBits = prevBits\n\td.previousValues = prevValues\n\td.Clear()\n}\n\n")
}

func emitEach(b *bytes.Buffer, hasContentLength, contentLengthBitTracked bool, contentLengthIndex int8) {
	fmt.Fprintf(b, "// Each enumerates name/value pairs in spec.md §4.7's deterministic order.\n")
	fmt.Fprintf(b, "func (d *Dictionary) Each(fn func(name, value string)) {\n")
	fmt.Fprintf(b, "\tbitsLeft := d.bits\n")
	fmt.Fprintf(b, "\tfor bitsLeft != 0 {\n")
	fmt.Fprintf(b, "\t\tidx := int8(bits.TrailingZeros64(bitsLeft))\n")
	fmt.Fprintf(b, "\t\tmeta, ok := headerMetaByIndex[idx]\n")
	fmt.Fprintf(b, "\t\tif !ok {\n\t\t\tpanic(fmt.Sprintf(\"generated: invariant violation: bit %%d has no known header\", idx))\n\t\t}\n")
	if hasContentLength && contentLengthBitTracked {
		fmt.Fprintf(b, "\t\tif idx == %d {\n\t\t\tfn(meta.Name, strconv.FormatInt(d.contentLength, 10))\n\t\t} else {\n", contentLengthIndex)
		fmt.Fprintf(b, "\t\t\tfor _, v := range d.values[idx] {\n\t\t\t\tfn(meta.Name, v)\n\t\t\t}\n\t\t}\n")
	} else {
		fmt.Fprintf(b, "\t\tfor _, v := range d.values[idx] {\n\t\t\tfn(meta.Name, v)\n\t\t}\n")
	}
	fmt.Fprintf(b, "\t\tbitsLeft &^= 1 << uint(idx)\n\t}\n")
	if hasContentLength && !contentLengthBitTracked {
		fmt.Fprintf(b, "\t// Content-Length is never bit-tracked in this direction, so the\n")
		fmt.Fprintf(b, "\t// bit-scan above never visits it.\n")
		fmt.Fprintf(b, "\tif d.contentLengthSet {\n\t\tfn(%q, strconv.FormatInt(d.contentLength, 10))\n\t}\n", "Content-Length")
	}
	fmt.Fprintf(b, "\td.unknownEach(fn)\n}\n\n")
}

func emitSerialize(b *bytes.Buffer, hasContentLength, contentLengthBitTracked bool, contentLengthIndex int8) {
	fmt.Fprintf(b, "// Serialize writes the dictionary's set headers to w in the order\n")
	fmt.Fprintf(b, "// described by spec.md §4.7 \"Serialization\".\n")
	fmt.Fprintf(b, "func (d *Dictionary) Serialize(w io.Writer) error {\n")
	fmt.Fprintf(b, "\tbitsLeft := d.bits\n")
	fmt.Fprintf(b, "\tfor bitsLeft != 0 {\n")
	fmt.Fprintf(b, "\t\tidx := int8(bits.TrailingZeros64(bitsLeft))\n")
	fmt.Fprintf(b, "\t\tmeta, ok := headerMetaByIndex[idx]\n")
	fmt.Fprintf(b, "\t\tif !ok {\n\t\t\treturn &invalidBitsError{idx: idx}\n\t\t}\n")
	if hasContentLength && contentLengthBitTracked {
		fmt.Fprintf(b, "\t\tswitch {\n\t\tcase idx == %d:\n", contentLengthIndex)
		fmt.Fprintf(b, "\t\t\tif err := writeKey(w, meta); err != nil {\n\t\t\t\treturn err\n\t\t\t}\n")
		fmt.Fprintf(b, "\t\t\tif _, err := io.WriteString(w, strconv.FormatInt(d.contentLength, 10)); err != nil {\n\t\t\t\treturn err\n\t\t\t}\n")
		fmt.Fprintf(b, "\t\tcase meta.EnhancedSetter:\n")
		fmt.Fprintf(b, "\t\t\tif raw, ok := d.raw[idx]; ok {\n\t\t\t\tif _, err := w.Write(raw); err != nil {\n\t\t\t\t\treturn err\n\t\t\t\t}\n")
		fmt.Fprintf(b, "\t\t\t} else if err := writeValues(w, meta, d.values[idx]); err != nil {\n\t\t\t\treturn err\n\t\t\t}\n")
		fmt.Fprintf(b, "\t\tdefault:\n\t\t\tif err := writeValues(w, meta, d.values[idx]); err != nil {\n\t\t\t\treturn err\n\t\t\t}\n\t\t}\n")
	} else {
		fmt.Fprintf(b, "\t\tif meta.EnhancedSetter {\n")
		fmt.Fprintf(b, "\t\t\tif raw, ok := d.raw[idx]; ok {\n\t\t\t\tif _, err := w.Write(raw); err != nil {\n\t\t\t\t\treturn err\n\t\t\t\t}\n")
		fmt.Fprintf(b, "\t\t\t} else if err := writeValues(w, meta, d.values[idx]); err != nil {\n\t\t\t\treturn err\n\t\t\t}\n")
		fmt.Fprintf(b, "\t\t} else if err := writeValues(w, meta, d.values[idx]); err != nil {\n\t\t\treturn err\n\t\t}\n")
	}
	fmt.Fprintf(b, "\t\tbitsLeft &^= 1 << uint(idx)\n\t}\n")
	if hasContentLength && !contentLengthBitTracked {
		fmt.Fprintf(b, "\tif d.contentLengthSet {\n")
		fmt.Fprintf(b, "\t\tif _, err := io.WriteString(w, \"\\r\\nContent-Length: \"+strconv.FormatInt(d.contentLength, 10)); err != nil {\n\t\t\treturn err\n\t\t}\n\t}\n")
	}
	fmt.Fprintf(b, "\treturn nil\n}\n\n")

	fmt.Fprintf(b, "func writeKey(w io.Writer, meta headerMeta) error {\n")
	fmt.Fprintf(b, "\tif meta.WireLength == 0 {\n")
	fmt.Fprintf(b, "\t\t_, err := io.WriteString(w, \"\\r\\n\"+meta.Name+\": \")\n\t\treturn err\n\t}\n")
	fmt.Fprintf(b, "\t_, err := w.Write(wireBlob[meta.WireOffset : meta.WireOffset+meta.WireLength])\n\treturn err\n}\n\n")

	fmt.Fprintf(b, "func writeValues(w io.Writer, meta headerMeta, values []string) error {\n")
	fmt.Fprintf(b, "\tfor _, v := range values {\n")
	fmt.Fprintf(b, "\t\tif err := writeKey(w, meta); err != nil {\n\t\t\treturn err\n\t\t}\n")
	fmt.Fprintf(b, "\t\tif _, err := io.WriteString(w, v); err != nil {\n\t\t\treturn err\n\t\t}\n\t}\n")
	fmt.Fprintf(b, "\treturn nil\n}\n\n")
}

func emitInvalidH2H3(b *bytes.Buffer) {
	fmt.Fprintf(b, "// HasInvalidH2H3Headers reports whether any connection-level header\n")
	fmt.Fprintf(b, "// illegal under HTTP/2 and HTTP/3 is currently set (spec.md §3).\n")
	fmt.Fprintf(b, "func (d *Dictionary) HasInvalidH2H3Headers() bool { return d.bits&invalidH2H3Mask != 0 }\n\n")
	fmt.Fprintf(b, "// ClearInvalidH2H3Headers clears every such header's bit and value slot.\n")
	fmt.Fprintf(b, "func (d *Dictionary) ClearInvalidH2H3Headers() {\n")
	fmt.Fprintf(b, "\tbitsLeft := d.bits & invalidH2H3Mask\n")
	fmt.Fprintf(b, "\tfor bitsLeft != 0 {\n")
	fmt.Fprintf(b, "\t\tidx := int8(bits.TrailingZeros64(bitsLeft))\n")
	fmt.Fprintf(b, "\t\td.clearBit(idx)\n\t\tdelete(d.values, idx)\n\t\tdelete(d.raw, idx)\n")
	fmt.Fprintf(b, "\t\tbitsLeft &^= 1 << uint(idx)\n\t}\n}\n\n")
}

func emitSetRaw(b *bytes.Buffer) {
	fmt.Fprintf(b, "// SetRaw installs idx's pre-encoded companion bytes (spec.md §3\n")
	fmt.Fprintf(b, "// \"enhanced_setter\"): Serialize writes raw verbatim instead of formatting\n")
	fmt.Fprintf(b, "// the value slot. idx is one of the package's unexported idxXxx constants above.\n")
	fmt.Fprintf(b, "func (d *Dictionary) SetRaw(idx int8, raw []byte) bool {\n")
	fmt.Fprintf(b, "\tmeta, ok := headerMetaByIndex[idx]\n")
	fmt.Fprintf(b, "\tif !ok || !meta.EnhancedSetter {\n\t\treturn false\n\t}\n")
	fmt.Fprintf(b, "\td.raw[idx] = raw\n\td.setBit(idx)\n\treturn true\n}\n\n")
}

// emitAccessor prints the identifier-named fast accessor spec.md §6 calls
// for ("Known-typed fast accessors by identifier"), reading directly from
// the Dictionary's own fields (no assumed helper methods, no embedding).
func emitAccessor(b *bytes.Buffer, h fieldreg.Header, hasContentLength bool, contentLength *fieldreg.Header) {
	if hasContentLength && h.Index == contentLength.Index && h.Name == contentLength.Name {
		fmt.Fprintf(b, "func (d *Dictionary) %s() (int64, bool) { return d.contentLength, d.contentLengthSet }\n\n", h.Identifier)
		return
	}
	fmt.Fprintf(b, "func (d *Dictionary) %s() (string, bool) {\n", h.Identifier)
	fmt.Fprintf(b, "\tif !d.bitSet(idx%s) {\n\t\treturn \"\", false\n\t}\n", h.Identifier)
	fmt.Fprintf(b, "\tvs := d.values[idx%s]\n", h.Identifier)
	fmt.Fprintf(b, "\tif len(vs) == 0 {\n\t\treturn \"\", false\n\t}\n")
	fmt.Fprintf(b, "\treturn vs[0], true\n}\n\n")
	if h.ExistenceCheck {
		fmt.Fprintf(b, "func (d *Dictionary) Has%s() bool { return d.bitSet(idx%s) }\n\n", h.Identifier, h.Identifier)
	}
	if h.FastCount {
		fmt.Fprintf(b, "func (d *Dictionary) %sCount() int { return len(d.values[idx%s]) }\n\n", h.Identifier, h.Identifier)
	}
}
