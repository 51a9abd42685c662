package httpserver

import (
	"context"
	"errors"

	"github.com/co-async-go/co-async/lib/clog"
	"github.com/co-async-go/co-async/sched"
	"github.com/co-async-go/co-async/stream"
)

// HandleConn wraps an accepted socket's stream in a request loop: read one
// request, dispatch it to router, write the response, and continue while
// both sides permit keep-alive.
func HandleConn(ctx context.Context, s *stream.Stream, router *Router) {
	defer s.Close()
	for {
		if ctx.Err() != nil {
			return
		}
		req, err := ParseRequest(s)
		if err != nil {
			if errors.Is(err, sched.New(sched.BrokenPipe)) {
				return // peer closed the connection between requests.
			}
			clog.Debugf("httpserver: request parse failed: %v", err)
			resp := NewResponder(s, nil)
			_ = MakeErrorResponse(resp, 400)
			return
		}

		resp := NewResponder(s, req)
		if err := dispatch(router, resp, req); err != nil {
			// The response framing is indeterminate once a handler fails
			// mid-write; the connection cannot be reused.
			clog.Errorf("httpserver: handler error for %s %s: %v", req.Method, req.URI.Path, err)
			return
		}

		if !KeepAlive(req) {
			return
		}
	}
}

// dispatch looks up req's handler and converts any error escaping a
// handler before it has written its header into a 500 response.
func dispatch(router *Router, resp *Responder, req *Request) error {
	h := router.Match(req.Method, req.URI.Path)
	if h == nil {
		return MakeErrorResponse(resp, 404)
	}
	if err := h(resp, req); err != nil {
		if resp.headerWritten {
			return err
		}
		return MakeErrorResponse(resp, 500)
	}
	return nil
}
