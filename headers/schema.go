package headers

import (
	"strings"

	"github.com/hexinfra/fielddict/internal/fieldreg"
	"github.com/hexinfra/fielddict/internal/swar"
)

// schema is the runtime-resident form of everything internal/fieldgen
// would otherwise print as Go source (spec.md §4.7): it is built once, at
// package init, by driving the same Header Registry / Bit Layout Planner /
// SWAR Matcher Synthesizer / HPACK Dispatcher the generator drives, and
// evaluated directly with swar.Eval instead of through printed code. The
// matching semantics are thus defined exactly once and shared by
// cmd/fieldgen's printed artifact and this package's runtime dictionaries.
type schema struct {
	dir             fieldreg.Direction
	headers         []fieldreg.Header
	byLength        map[int][]swar.Entry
	byIndex         map[int8]*fieldreg.Header
	identifierIndex map[string]int8
	hpackIndexToBit map[uint32]int8
	invalidMask     uint64
	wireBlob        []byte
	contentLength   *fieldreg.Header // nil for directions without Content-Length
	encoding        map[int8]fieldreg.ValueEncoding
}

func buildSchema(dir fieldreg.Direction) *schema {
	hs := fieldreg.BuildDirection(dir, fieldreg.Overrides{})
	hs, mask := fieldreg.PlanBits(dir, hs)
	wire := fieldreg.BuildWireBlob(hs)
	entries := swar.FlatEntries(hs)

	s := &schema{
		dir:             dir,
		headers:         hs,
		byLength:        make(map[int][]swar.Entry),
		byIndex:         make(map[int8]*fieldreg.Header, len(hs)),
		identifierIndex: make(map[string]int8, len(hs)),
		hpackIndexToBit: make(map[uint32]int8),
		invalidMask:     mask,
		wireBlob:        wire.Bytes,
		encoding:        make(map[int8]fieldreg.ValueEncoding, len(hs)),
	}

	for _, e := range entries {
		s.byLength[len(e.Header.Name)] = append(s.byLength[len(e.Header.Name)], e)
	}
	for i := range hs {
		h := &hs[i]
		s.byIndex[h.Index] = h
		s.identifierIndex[h.Identifier] = h.Index
		s.encoding[h.Index] = fieldreg.Overrides{}.EncodingFor(h.Name)
		if strings.EqualFold(h.Name, "Content-Length") {
			s.contentLength = h
		}
	}

	groups := fieldreg.BuildHPACKGroups(hs)
	for _, g := range groups {
		if g.Header == nil {
			continue
		}
		for _, idx := range g.Indices {
			s.hpackIndexToBit[uint32(idx)] = g.Header.Index
		}
	}

	return s
}

// match reports the known header whose name case-insensitively equals
// name, or nil. Property P4 (matcher exclusivity) guarantees at most one
// entry of the matching length bucket ever evaluates true.
func (s *schema) match(name []byte) *fieldreg.Header {
	for _, e := range s.byLength[len(name)] {
		if swar.Eval(e.Terms, name) {
			return e.Header
		}
	}
	return nil
}

var (
	requestSchema  = buildSchema(fieldreg.DirRequest)
	responseSchema = buildSchema(fieldreg.DirResponse)
	trailerSchema  = buildSchema(fieldreg.DirTrailer)
)
