package cgi

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/co-async-go/co-async/httpserver"
	"github.com/co-async-go/co-async/stream"
)

// memChannel is an in-memory stream.RawChannel, mirroring the fixture used
// throughout this module's other packages, for exercising the header-block
// parser without a real pipe.
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

func TestReadResponseParsesHeaderBlockAndStatus(t *testing.T) {
	raw := "Status: 201\r\nContent-Type: text/plain\r\n\r\nok\n"
	s := stream.New(newMemChannel([]byte(raw)), true)

	headers, status, body, err := readResponse(s)
	require.NoError(t, err)
	assert.Equal(t, 201, status)
	assert.Equal(t, "text/plain", headers["content-type"])
	_, hasStatus := headers["status"]
	assert.False(t, hasStatus)
	assert.Equal(t, "ok\n", string(body))
}

func TestReadResponseDefaultsStatusTo200(t *testing.T) {
	raw := "Content-Type: text/plain\r\n\r\nhi\n"
	s := stream.New(newMemChannel([]byte(raw)), true)

	_, status, body, err := readResponse(s)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, "hi\n", string(body))
}

func TestReadResponseMissingColonIsProtocolError(t *testing.T) {
	raw := "not a header line\r\n\r\nbody"
	s := stream.New(newMemChannel([]byte(raw)), true)

	_, _, _, err := readResponse(s)
	assert.Error(t, err)
}

func TestReadResponseBadStatusIsProtocolError(t *testing.T) {
	raw := "Status: not-a-number\r\n\r\n"
	s := stream.New(newMemChannel([]byte(raw)), true)

	_, _, _, err := readResponse(s)
	assert.Error(t, err)
}

func TestWriteStdinFlushesExactBody(t *testing.T) {
	ch := newMemChannel(nil)
	s := stream.New(ch, true)

	require.NoError(t, writeStdin(s, []byte("request body")))
	assert.Equal(t, "request body", ch.written.String())
}

func TestWriteStdinHandlesEmptyBody(t *testing.T) {
	ch := newMemChannel(nil)
	s := stream.New(ch, true)

	require.NoError(t, writeStdin(s, nil))
	assert.Empty(t, ch.written.String())
}

func TestBuildEnvRestrictsGetKeysToLetters(t *testing.T) {
	req := &httpserver.Request{
		Method: "GET",
		URI: httpserver.URI{
			Path: "/cgi.sh",
			Params: []httpserver.KV{
				{Key: "foo", Value: "bar"},
				{Key: "bad-key", Value: "skipped"},
				{Key: "also2bad", Value: "skipped"},
			},
		},
		Headers: httpserver.NewHeader(),
	}

	env := buildEnv(req)
	assert.Contains(t, env, "HTTP_GET_foo=bar")
	assert.Contains(t, env, "HTTP_PATH=/cgi.sh")
	assert.Contains(t, env, "HTTP_METHOD=GET")
	for _, e := range env {
		assert.NotContains(t, e, "HTTP_GET_bad")
		assert.NotContains(t, e, "HTTP_GET_also2bad")
	}
}

func TestBuildEnvRemapsHeaderDashesAndRestrictsToLowerAlpha(t *testing.T) {
	req := &httpserver.Request{
		Method:  "GET",
		URI:     httpserver.URI{Path: "/cgi.sh"},
		Headers: httpserver.NewHeader(),
	}
	req.Headers.Set("User-Agent", "test-client")
	req.Headers.Set("X-Request-Id-2", "skipped")

	env := buildEnv(req)
	assert.Contains(t, env, "HTTP_HEADER_user_agent=test-client")
	for _, e := range env {
		assert.NotContains(t, e, "HTTP_HEADER_x_request_id_2")
	}
}
