package httpserver

import "fmt"

// MakeErrorResponse writes a minimal HTML error body:
// `<h1>{status} {reason}</h1>` with Content-Type text/html;charset=utf-8.
func MakeErrorResponse(r *Responder, status int) error {
	body := []byte(fmt.Sprintf("<h1>%d %s</h1>", status, reasonPhrase(status)))
	resp := NewResponse(status)
	resp.Headers.Set("Content-Type", "text/html;charset=utf-8")
	resp.Headers.Set("Content-Length", fmt.Sprintf("%d", len(body)))
	if err := r.WriteHeader(resp); err != nil {
		return err
	}
	if err := r.WriteBody(body); err != nil {
		return err
	}
	return r.FinishBody()
}
