package headers

import (
	"errors"
	"fmt"
)

// ErrReadOnly is returned by every mutator once a dictionary has been
// frozen (spec.md §6 ReadOnlyError).
var ErrReadOnly = errors.New("headers: dictionary is read-only")

// ErrValueExists is returned by Add when the header already holds a value
// (spec.md §4.7 "add: as set, but fails if a value is already present").
var ErrValueExists = errors.New("headers: value already present")

// InvalidHeaderValueError is returned when a value byte is illegal under the
// header's configured encoding (spec.md §6 InvalidHeaderValueError): by
// Set/Add on the response/trailer directions, and by TryAppend/
// TryHPACKAppend in every direction. It is also returned, with Byte 0, when
// a Content-Length value is not a non-negative decimal integer.
type InvalidHeaderValueError struct {
	Header string
	Byte   byte
}

func (e *InvalidHeaderValueError) Error() string {
	return fmt.Sprintf("headers: %s: illegal byte 0x%02x in value", e.Header, e.Byte)
}

// assertf panics on an invariant violation: an unknown bit set in bits, an
// index collision, a mismatched wire slice, or any other condition that a
// well-formed build must never produce (spec.md §7 "Invariant violations
// treated as assertions").
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("headers: invariant violation: "+format, args...))
	}
}
