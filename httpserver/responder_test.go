package httpserver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/co-async-go/co-async/stream"
)

func TestResponderWritesContentLengthFramedBody(t *testing.T) {
	ch := newMemChannel(nil)
	s := stream.New(ch, true)
	r := NewResponder(s, nil)

	resp := NewResponse(200)
	resp.Headers.Set("Content-Length", "5")
	require.NoError(t, r.WriteHeader(resp))
	require.NoError(t, r.WriteBody([]byte("hello")))
	require.NoError(t, r.FinishBody())

	out := ch.written.String()
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"))
	assert.True(t, strings.HasSuffix(out, "hello"))
	assert.NotContains(t, out, "Transfer-Encoding")
}

func TestResponderChunksWhenLengthUnknown(t *testing.T) {
	ch := newMemChannel(nil)
	s := stream.New(ch, true)
	r := NewResponder(s, nil)

	resp := NewResponse(200)
	require.NoError(t, r.WriteHeader(resp))
	require.NoError(t, r.WriteBody([]byte("abc")))
	require.NoError(t, r.FinishBody())

	out := ch.written.String()
	assert.Contains(t, out, "Transfer-Encoding: chunked")
	assert.Contains(t, out, "3\r\nabc\r\n")
	assert.True(t, strings.HasSuffix(out, "0\r\n\r\n"))
}

func TestResponderRejectsBodyBeforeHeader(t *testing.T) {
	ch := newMemChannel(nil)
	s := stream.New(ch, true)
	r := NewResponder(s, nil)

	err := r.WriteBody([]byte("too early"))
	assert.Error(t, err)
}

func TestResponderRejectsDoubleHeaderWrite(t *testing.T) {
	ch := newMemChannel(nil)
	s := stream.New(ch, true)
	r := NewResponder(s, nil)

	require.NoError(t, r.WriteHeader(NewResponse(200)))
	assert.Error(t, r.WriteHeader(NewResponse(200)))
}

func TestMakeErrorResponseBody(t *testing.T) {
	ch := newMemChannel(nil)
	s := stream.New(ch, true)
	r := NewResponder(s, nil)

	require.NoError(t, MakeErrorResponse(r, 404))
	out := ch.written.String()
	assert.Contains(t, out, "HTTP/1.1 404 Not Found")
	assert.Contains(t, out, "<h1>404 Not Found</h1>")
	assert.Contains(t, out, "Content-Type: text/html;charset=utf-8")
}
