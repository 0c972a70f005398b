package headers

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// P5: serialization round-trip.
func TestSerializationRoundTrip(t *testing.T) {
	resp := NewResponseHeaders(nil)
	require.NoError(t, resp.Set("ETag", `"abc123"`))

	var buf bytes.Buffer
	require.NoError(t, resp.Serialize(&buf))
	assert.Equal(t, "\r\nETag: \"abc123\"", buf.String())

	fresh := NewResponseHeaders(nil)
	ok, err := fresh.d.tryAppend([]byte("ETag"), []byte(`"abc123"`))
	require.NoError(t, err)
	require.True(t, ok)
	v, ok := fresh.Get("ETag")
	require.True(t, ok)
	assert.Equal(t, `"abc123"`, v)
}

// P6: enumeration order stability — set bits in index order, then
// Content-Length, then unknown insertion order.
func TestEnumerationOrder(t *testing.T) {
	req := NewRequestHeaders(nil)
	require.NoError(t, req.Set("User-Agent", "curl/8.0"))
	require.NoError(t, req.Set("Host", "example.com"))
	require.NoError(t, req.Set("Content-Length", "5"))
	require.NoError(t, req.Set("X-Custom-First", "a"))
	require.NoError(t, req.Set("X-Custom-Second", "b"))

	var names []string
	req.Each(func(name, value string) { names = append(names, name) })

	// Content-Length (index -1) is not bit-tracked for requests, so it is
	// appended after the bit-ordered known headers and before unknown.
	idxCL := indexOf(names, "Content-Length")
	idxFirst := indexOf(names, "X-Custom-First")
	idxSecond := indexOf(names, "X-Custom-Second")
	require.GreaterOrEqual(t, idxCL, 0)
	require.GreaterOrEqual(t, idxFirst, 0)
	require.GreaterOrEqual(t, idxSecond, 0)
	assert.Less(t, idxCL, idxFirst, "Content-Length must enumerate before unknown headers")
	assert.Less(t, idxFirst, idxSecond, "unknown headers enumerate in insertion order")
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// P7: reuse rule — a previously single-valued header's bytes, if ASCII-
// ordinal equal, are re-used as the same string object on re-append.
func TestReuseRule(t *testing.T) {
	req := NewRequestHeaders(nil)
	ok, err := req.TryAppend([]byte("Host"), []byte("example.com"))
	require.NoError(t, err)
	require.True(t, ok)

	prev, ok := req.Get("Host")
	require.True(t, ok)

	req.Recycle()

	ok, err = req.TryAppend([]byte("Host"), []byte("example.com"))
	require.NoError(t, err)
	require.True(t, ok)

	got := req.d.values[req.d.schema.identifierIndex["Host"]][0]
	assert.True(t, unsafe.StringData(got) == unsafe.StringData(prev), "reused value should be the same string object")
}

// Concrete scenario 6: illegal byte in a response header value under the
// default ASCII encoding is rejected and the bit stays clear.
func TestInvalidHeaderValueRejected(t *testing.T) {
	resp := NewResponseHeaders(nil)
	err := resp.Set("ETag", "bad\x01value")
	require.Error(t, err)
	var ive *InvalidHeaderValueError
	require.ErrorAs(t, err, &ive)
	assert.False(t, resp.Has("ETag"))
}
