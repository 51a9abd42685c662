package httpserver

import "strings"

// Handler handles one dispatched request through resp, returning an error
// that the connection loop converts to a 500 if it escapes before the
// header is written; after that, the connection is closed instead.
type Handler func(resp *Responder, req *Request) error

type route struct {
	method  string
	pattern string
	handler Handler
}

// Router is an ordered {method, pattern, handler} table: lookup tries an
// exact (method, path) match first, then the longest pattern ending in '*'
// whose prefix matches path, else no handler (callers respond 404).
type Router struct {
	routes []route
}

func NewRouter() *Router {
	return &Router{}
}

// Handle registers pattern for method. A pattern ending in '*' matches any
// path sharing its prefix (the '*' stripped); any other pattern must match
// exactly.
func (r *Router) Handle(method, pattern string, h Handler) {
	r.routes = append(r.routes, route{method: method, pattern: pattern, handler: h})
}

// Match returns the handler for (method, path), or nil if none applies
// (callers respond 404).
func (r *Router) Match(method, path string) Handler {
	for _, rt := range r.routes {
		if rt.method == method && rt.pattern == path {
			return rt.handler
		}
	}
	var best Handler
	bestLen := -1
	for _, rt := range r.routes {
		if rt.method != method || !strings.HasSuffix(rt.pattern, "*") {
			continue
		}
		prefix := strings.TrimSuffix(rt.pattern, "*")
		if strings.HasPrefix(path, prefix) && len(prefix) > bestLen {
			best = rt.handler
			bestLen = len(prefix)
		}
	}
	return best
}
