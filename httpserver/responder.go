package httpserver

import (
	"fmt"
	"io"

	"github.com/co-async-go/co-async/sched"
	"github.com/co-async-go/co-async/stream"
)

// Responder is the per-request I/O object handed to route handlers. The
// header must be written before any body; the body is framed by either
// Content-Length or chunked transfer encoding.
type Responder struct {
	s             *stream.Stream
	req           *Request
	headerWritten bool
	chunked       bool
}

func NewResponder(s *stream.Stream, req *Request) *Responder {
	return &Responder{s: s, req: req}
}

// WriteHeader writes the status line and headers. If resp carries neither
// Content-Length nor Transfer-Encoding, the body is framed as chunked;
// writing the body must follow.
func (r *Responder) WriteHeader(resp *Response) error {
	if r.headerWritten {
		return sched.New(sched.InvalidArgument)
	}
	if !resp.Headers.Has("Content-Length") && !resp.Headers.Has("Transfer-Encoding") {
		resp.Headers.Set("Transfer-Encoding", "chunked")
	}
	r.chunked = resp.Headers.Get("Transfer-Encoding") == "chunked"

	if err := r.s.WriteString(fmt.Sprintf("HTTP/1.1 %d %s\r\n", resp.Status, reasonPhrase(resp.Status))); err != nil {
		return err
	}
	for _, k := range resp.Headers.Keys() {
		for _, v := range resp.Headers.Values(k) {
			if err := r.s.WriteString(canonicalHeaderName(k) + ": " + v + "\r\n"); err != nil {
				return err
			}
		}
	}
	if err := r.s.WriteString("\r\n"); err != nil {
		return err
	}
	r.headerWritten = true
	return nil
}

// WriteBody writes data as one chunk (if chunked) or as raw bytes (if
// framed by Content-Length, where the caller is responsible for writing
// exactly that many total bytes across one or more calls).
func (r *Responder) WriteBody(data []byte) error {
	if !r.headerWritten {
		return sched.New(sched.InvalidArgument)
	}
	if !r.chunked {
		return r.s.WriteSpan(data)
	}
	if len(data) == 0 {
		return nil
	}
	if err := r.s.WriteString(fmt.Sprintf("%x\r\n", len(data))); err != nil {
		return err
	}
	if err := r.s.WriteSpan(data); err != nil {
		return err
	}
	return r.s.WriteString("\r\n")
}

// WriteBodyStream copies src to the body in fixed-size chunks.
func (r *Responder) WriteBodyStream(src io.Reader) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if werr := r.WriteBody(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return r.FinishBody()
		}
		if err != nil {
			return sched.Wrap(sched.IoError, err)
		}
	}
}

// FinishBody writes the terminating zero-length chunk when framed as
// chunked, then flushes the stream; with Content-Length framing it only
// flushes. Callers streaming a body in multiple WriteBody calls must call
// this once done.
func (r *Responder) FinishBody() error {
	if !r.chunked {
		return r.s.Flush()
	}
	if err := r.s.WriteString("0\r\n\r\n"); err != nil {
		return err
	}
	return r.s.Flush()
}

// ReadBody returns req's already-parsed body (parsed eagerly by the
// connection loop per Content-Length/chunked framing on the request).
func (r *Responder) ReadBody(req *Request) []byte {
	return req.Body
}

func reasonPhrase(status int) string {
	switch status {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 204:
		return "No Content"
	case 301:
		return "Moved Permanently"
	case 400:
		return "Bad Request"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 500:
		return "Internal Server Error"
	default:
		return "Unknown"
	}
}

// canonicalHeaderName renders a lower-cased internal key back to
// Title-Case-With-Dashes for the wire, e.g. "content-type" -> "Content-Type".
func canonicalHeaderName(key string) string {
	out := []byte(key)
	upperNext := true
	for i, c := range out {
		if upperNext && c >= 'a' && c <= 'z' {
			out[i] = c - 'a' + 'A'
		}
		upperNext = c == '-'
	}
	return string(out)
}
