package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Concrete scenario 1: a single Host header.
func TestScenarioHost(t *testing.T) {
	req := NewRequestHeaders(nil)
	ok, err := req.TryAppend([]byte("Host"), []byte("example.com"))
	require.NoError(t, err)
	require.True(t, ok)

	v, ok := req.Get("host")
	require.True(t, ok)
	assert.Equal(t, "example.com", v)
	assert.Equal(t, 1, req.Count("Host"))
	assert.True(t, req.Has("Host"))

	var unknownSeen bool
	req.Each(func(name, value string) {
		if name != "Host" {
			unknownSeen = true
		}
	})
	assert.False(t, unknownSeen)
}

// Concrete scenario 2: two Accept-Encoding values appended in order.
func TestScenarioRepeatedAcceptEncoding(t *testing.T) {
	req := NewRequestHeaders(nil)
	ok, err := req.TryAppend([]byte("Accept-Encoding"), []byte("gzip"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = req.TryAppend([]byte("Accept-Encoding"), []byte("br"))
	require.NoError(t, err)
	require.True(t, ok)

	idx := req.d.schema.identifierIndex["AcceptEncoding"]
	assert.Equal(t, []string{"gzip", "br"}, req.d.values[idx])
	assert.Equal(t, 2, req.Count("AcceptEncoding"))
	assert.True(t, req.d.bitSet(idx))
}

// Concrete scenario 3: HPACK append of Content-Length by static index 28.
func TestScenarioHPACKContentLength(t *testing.T) {
	req := NewRequestHeaders(nil)
	ok, err := req.TryHPACKAppend(28, []byte("42"))
	require.NoError(t, err)
	require.True(t, ok)

	n, set := req.ContentLength()
	require.True(t, set)
	assert.Equal(t, int64(42), n)
}

func TestTryAppendUnknownHeader(t *testing.T) {
	req := NewRequestHeaders(nil)
	ok, err := req.TryAppend([]byte("X-Trace-Id"), []byte("abc"))
	require.NoError(t, err)
	require.True(t, ok)

	v, ok := req.Get("x-trace-id")
	require.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestTryHPACKAppendMiss(t *testing.T) {
	req := NewRequestHeaders(nil)
	ok, err := req.TryHPACKAppend(999, []byte("x"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFreezeRejectsMutation(t *testing.T) {
	req := NewRequestHeaders(nil)
	req.Freeze()
	err := req.Set("Host", "example.com")
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestAddFailsWhenPresent(t *testing.T) {
	req := NewRequestHeaders(nil)
	require.NoError(t, req.Add("Host", "example.com"))
	err := req.Add("Host", "example.org")
	assert.ErrorIs(t, err, ErrValueExists)
}

func TestRemoveClearsKnownHeader(t *testing.T) {
	req := NewRequestHeaders(nil)
	require.NoError(t, req.Set("Host", "example.com"))
	assert.True(t, req.Remove("Host"))
	assert.False(t, req.Has("Host"))
	assert.False(t, req.Remove("Host"))
}

func TestCopyToCarriesUntrackedContentLength(t *testing.T) {
	src := NewRequestHeaders(nil)
	ok, err := src.TryHPACKAppend(28, []byte("99"))
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, src.Set("Host", "example.com"))

	dst := NewRequestHeaders(nil)
	require.NoError(t, src.CopyTo(dst))

	n, set := dst.ContentLength()
	require.True(t, set)
	assert.Equal(t, int64(99), n)
	v, ok := dst.Get("Host")
	require.True(t, ok)
	assert.Equal(t, "example.com", v)
}
