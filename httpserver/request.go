package httpserver

import (
	"strconv"
	"strings"

	"github.com/co-async-go/co-async/sched"
	"github.com/co-async-go/co-async/stream"
)

// maxHeaderLines guards against an unbounded peer; generous enough never
// to bite a legitimate client.
const maxHeaderLines = 256

// ParseRequest reads one request (method, target, version, headers, body)
// off s. A malformed request line or header surfaces as a ProtocolError.
func ParseRequest(s *stream.Stream) (*Request, error) {
	line, err := s.ReadLine('\n')
	if err != nil {
		return nil, err
	}
	line = strings.TrimSuffix(line, "\r")

	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return nil, sched.New(sched.ProtocolError)
	}
	req := &Request{
		Method:  strings.ToUpper(parts[0]),
		URI:     ParseURI(parts[1]),
		Version: parts[2],
		Headers: NewHeader(),
	}

	for i := 0; ; i++ {
		if i >= maxHeaderLines {
			return nil, sched.New(sched.ProtocolError)
		}
		hline, err := s.ReadLine('\n')
		if err != nil {
			return nil, err
		}
		hline = strings.TrimSuffix(hline, "\r")
		if hline == "" {
			break
		}
		k, v, found := strings.Cut(hline, ":")
		if !found {
			return nil, sched.New(sched.ProtocolError)
		}
		req.Headers.Add(strings.TrimSpace(k), strings.TrimSpace(v))
	}

	body, err := readBody(s, req.Headers)
	if err != nil {
		return nil, err
	}
	req.Body = body
	return req, nil
}

// readBody frames the request body by Content-Length or chunked
// transfer-encoding; a request carrying neither has no body.
func readBody(s *stream.Stream, h *Header) ([]byte, error) {
	if strings.EqualFold(h.Get("Transfer-Encoding"), "chunked") {
		return readChunkedBody(s)
	}
	cl := h.Get("Content-Length")
	if cl == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(cl)
	if err != nil || n < 0 {
		return nil, sched.New(sched.ProtocolError)
	}
	if n == 0 {
		return nil, nil
	}
	return s.ReadSpan(n)
}

func readChunkedBody(s *stream.Stream) ([]byte, error) {
	var out []byte
	for {
		sizeLine, err := s.ReadLine('\n')
		if err != nil {
			return nil, err
		}
		sizeLine = strings.TrimSuffix(sizeLine, "\r")
		if idx := strings.IndexByte(sizeLine, ';'); idx >= 0 {
			sizeLine = sizeLine[:idx] // chunk extensions are ignored.
		}
		size, err := strconv.ParseInt(strings.TrimSpace(sizeLine), 16, 64)
		if err != nil || size < 0 {
			return nil, sched.New(sched.ProtocolError)
		}
		if size == 0 {
			// trailer section terminated by a blank line.
			for {
				trailer, err := s.ReadLine('\n')
				if err != nil {
					return nil, err
				}
				if strings.TrimSuffix(trailer, "\r") == "" {
					return out, nil
				}
			}
		}
		chunk, err := s.ReadSpan(int(size))
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		if _, err := s.ReadLine('\n'); err != nil {
			return nil, err
		}
	}
}

// KeepAlive reports whether the connection should remain open after
// responding to req: keep-alive by default on HTTP/1.1, closed on an
// explicit Connection: close, closed on HTTP/1.0 absent an explicit
// keep-alive.
func KeepAlive(req *Request) bool {
	conn := strings.ToLower(req.Headers.Get("Connection"))
	if conn == "close" {
		return false
	}
	if req.Version == "HTTP/1.1" {
		return true
	}
	return conn == "keep-alive"
}
