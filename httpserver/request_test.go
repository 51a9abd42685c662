package httpserver

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/co-async-go/co-async/stream"
)

// memChannel is an in-memory stream.RawChannel, mirroring stream package's
// own test fixture, used here to feed ParseRequest raw request bytes
// without a real socket.
type memChannel struct {
	rd      *bytes.Reader
	written bytes.Buffer
}

func newMemChannel(data []byte) *memChannel {
	return &memChannel{rd: bytes.NewReader(data)}
}

func (c *memChannel) Read(buf []byte) (int, error) {
	n, err := c.rd.Read(buf)
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

func (c *memChannel) Write(buf []byte) (int, error) { return c.written.Write(buf) }
func (c *memChannel) Seek(offset int64) error        { _, err := c.rd.Seek(offset, io.SeekStart); return err }
func (c *memChannel) Flush() error                   { return nil }
func (c *memChannel) Close() error                   { return nil }
func (c *memChannel) SetTimeout(time.Duration)       {}

func TestParseRequestLineAndHeaders(t *testing.T) {
	raw := "GET /foo?a=1 HTTP/1.1\r\nHost: example.com\r\nX-Tag: v\r\n\r\n"
	ch := newMemChannel([]byte(raw))
	s := stream.New(ch, true)

	req, err := ParseRequest(s)
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/foo", req.URI.Path)
	assert.Equal(t, "example.com", req.Headers.Get("host"))
	assert.Equal(t, "v", req.Headers.Get("x-tag"))
	assert.Empty(t, req.Body)
}

func TestParseRequestWithContentLengthBody(t *testing.T) {
	raw := "POST /echo HTTP/1.1\r\nContent-Length: 3\r\n\r\nabc"
	ch := newMemChannel([]byte(raw))
	s := stream.New(ch, true)

	req, err := ParseRequest(s)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(req.Body))
}

func TestParseRequestWithChunkedBody(t *testing.T) {
	raw := "POST /echo HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n3\r\nabc\r\n2\r\nde\r\n0\r\n\r\n"
	ch := newMemChannel([]byte(raw))
	s := stream.New(ch, true)

	req, err := ParseRequest(s)
	require.NoError(t, err)
	assert.Equal(t, "abcde", string(req.Body))
}

func TestParseRequestMalformedRequestLineIsProtocolError(t *testing.T) {
	ch := newMemChannel([]byte("garbage\r\n\r\n"))
	s := stream.New(ch, true)

	_, err := ParseRequest(s)
	assert.Error(t, err)
}

func TestKeepAliveDefaultsTrueOnHTTP11(t *testing.T) {
	req := &Request{Version: "HTTP/1.1", Headers: NewHeader()}
	assert.True(t, KeepAlive(req))
}

func TestKeepAliveFalseOnExplicitClose(t *testing.T) {
	req := &Request{Version: "HTTP/1.1", Headers: NewHeader()}
	req.Headers.Set("Connection", "close")
	assert.False(t, KeepAlive(req))
}

func TestKeepAliveFalseByDefaultOnHTTP10(t *testing.T) {
	req := &Request{Version: "HTTP/1.0", Headers: NewHeader()}
	assert.False(t, KeepAlive(req))
}
