package headers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Concrete scenario 4: Connection + Transfer-Encoding make the response
// invalid for H2/H3; clearing removes both and serialization omits them.
func TestScenarioInvalidH2H3Clearing(t *testing.T) {
	resp := NewResponseHeaders(nil)
	require.NoError(t, resp.Set("Connection", "close"))
	require.NoError(t, resp.Set("Transfer-Encoding", "chunked"))
	require.True(t, resp.HasInvalidH2H3Headers())

	resp.ClearInvalidH2H3Headers()
	assert.False(t, resp.HasInvalidH2H3Headers())
	assert.False(t, resp.Has("Connection"))
	assert.False(t, resp.Has("TransferEncoding"))

	var buf bytes.Buffer
	require.NoError(t, resp.Serialize(&buf))
	assert.NotContains(t, buf.String(), "Connection")
	assert.NotContains(t, buf.String(), "Transfer-Encoding")
}

// Concrete scenario 5: enhanced-setter headers with a populated raw slot
// serialize verbatim, skipping formatted value emission.
func TestScenarioEnhancedSetterRawSlots(t *testing.T) {
	resp := NewResponseHeaders(nil)
	require.True(t, resp.SetRaw("Date", []byte("\r\nDate: Wed, 21 Oct 2026 07:28:00 GMT")))
	require.True(t, resp.SetRaw("Server", []byte("\r\nServer: fielddict/1.0")))
	require.True(t, resp.SetRaw("ContentType", []byte("\r\nContent-Type: text/plain")))

	var buf bytes.Buffer
	require.NoError(t, resp.Serialize(&buf))

	got := buf.String()
	assert.Contains(t, got, "\r\nDate: Wed, 21 Oct 2026 07:28:00 GMT")
	assert.Contains(t, got, "\r\nServer: fielddict/1.0")
	assert.Contains(t, got, "\r\nContent-Type: text/plain")
}

func TestResponseContentLengthSerializesAsDecimal(t *testing.T) {
	resp := NewResponseHeaders(nil)
	require.NoError(t, resp.SetContentLength(42))

	var buf bytes.Buffer
	require.NoError(t, resp.Serialize(&buf))
	assert.Contains(t, buf.String(), "Content-Length: 42")
}

// SetContentLength and SetRaw must honor Freeze like every other mutator.
func TestFreezeRejectsContentLengthAndRawMutation(t *testing.T) {
	resp := NewResponseHeaders(nil)
	resp.Freeze()
	assert.ErrorIs(t, resp.SetContentLength(42), ErrReadOnly)
	assert.False(t, resp.SetRaw("Date", []byte("\r\nDate: x")))
}

// Regression: response direction's Content-Length is bit-tracked (pinned
// to index 63) instead of untracked like the request direction, but it is
// never stored in the generic value table: after Set, every read path
// (ContentLength, Get, Has, Serialize, Each) agrees with the dedicated int64
// slot, and Remove clears both the slot and the bit.
func TestScenarioResponseSetContentLengthAgreesAcrossReads(t *testing.T) {
	resp := NewResponseHeaders(nil)
	require.NoError(t, resp.Set("Content-Length", "42"))

	n, set := resp.ContentLength()
	require.True(t, set)
	assert.Equal(t, int64(42), n)

	v, ok := resp.Get("Content-Length")
	require.True(t, ok)
	assert.Equal(t, "42", v)
	assert.True(t, resp.Has("ContentLength"))

	var buf bytes.Buffer
	require.NoError(t, resp.Serialize(&buf))
	assert.Equal(t, "\r\nContent-Length: 42", buf.String())

	var seen []string
	resp.Each(func(name, value string) { seen = append(seen, name+"="+value) })
	assert.Equal(t, []string{"Content-Length=42"}, seen)

	require.True(t, resp.Remove("Content-Length"))
	_, set = resp.ContentLength()
	assert.False(t, set)
	assert.False(t, resp.d.bitSet(resp.d.schema.contentLength.Index))
}

// Same desync class, exercised through the HPACK static-table path (index
// 28) instead of Set.
func TestScenarioResponseHPACKContentLength(t *testing.T) {
	resp := NewResponseHeaders(nil)
	ok, err := resp.TryHPACKAppend(28, []byte("7"))
	require.NoError(t, err)
	require.True(t, ok)

	n, set := resp.ContentLength()
	require.True(t, set)
	assert.Equal(t, int64(7), n)

	var buf bytes.Buffer
	require.NoError(t, resp.Serialize(&buf))
	assert.Equal(t, "\r\nContent-Length: 7", buf.String())
}

func TestCopyToOverwritesDestinationState(t *testing.T) {
	src := NewResponseHeaders(nil)
	require.NoError(t, src.Set("Content-Length", "10"))
	require.NoError(t, src.Set("ETag", `"a"`))
	require.NoError(t, src.Add("X-Trace-Id", "abc"))

	dst := NewResponseHeaders(nil)
	require.NoError(t, dst.Set("ETag", "stale"))
	require.NoError(t, src.CopyTo(dst))

	n, set := dst.ContentLength()
	require.True(t, set)
	assert.Equal(t, int64(10), n)
	v, ok := dst.Get("ETag")
	require.True(t, ok)
	assert.Equal(t, `"a"`, v)
	v, ok = dst.Get("X-Trace-Id")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, dst.Set("ETag", "changed"))
	v, _ = src.Get("ETag")
	assert.Equal(t, `"a"`, v)
}

func TestCopyToRejectsReadonlyDestination(t *testing.T) {
	src := NewResponseHeaders(nil)
	dst := NewResponseHeaders(nil)
	dst.Freeze()
	assert.ErrorIs(t, src.CopyTo(dst), ErrReadOnly)
}

func TestTrailerSetAndSerialize(t *testing.T) {
	tr := NewTrailerHeaders(nil)
	require.NoError(t, tr.Set("ETag", `"xyz"`))

	var buf bytes.Buffer
	require.NoError(t, tr.Serialize(&buf))
	assert.Equal(t, "\r\nETag: \"xyz\"", buf.String())
}

func TestClearOverCutoffResetsSlots(t *testing.T) {
	resp := NewResponseHeaders(nil)
	require.NoError(t, resp.Set("ETag", "a"))
	require.NoError(t, resp.Set("Location", "b"))
	require.NoError(t, resp.Set("Expires", "c"))
	require.NoError(t, resp.Set("Last-Modified", "d"))
	require.NoError(t, resp.Set("WWW-Authenticate", "e"))
	require.NoError(t, resp.Set("Proxy-Authenticate", "f"))
	require.NoError(t, resp.Set("Allow", "g"))
	require.NoError(t, resp.Set("Retry-After", "h"))
	require.NoError(t, resp.Set("Vary", "i"))
	require.NoError(t, resp.Set("Content-Range", "j"))
	require.NoError(t, resp.Set("Content-Disposition", "k"))
	require.NoError(t, resp.Set("Sec-WebSocket-Accept", "l"))
	require.NoError(t, resp.Set("Strict-Transport-Security", "m"))

	resp.Clear()
	assert.Equal(t, uint64(0), resp.d.bits)
	assert.False(t, resp.Has("ETag"))
}
