// Package httpserver implements the HTTP/1.1 request/response types and
// codec, the route dispatcher, the accept loop, and the static-file and
// directory handlers.
package httpserver

import (
	"strings"

	"github.com/co-async-go/co-async/lib/urlenc"
)

// URI is a raw path plus ordered query parameters: parsing splits on the
// first '?', then each '&'-separated k=v pair; values are percent-decoded,
// keys are not.
type URI struct {
	Path   string
	Params []KV
}

type KV struct {
	Key   string
	Value string
}

func ParseURI(raw string) URI {
	path := raw
	query := ""
	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		path = raw[:idx]
		query = raw[idx+1:]
	}
	u := URI{Path: path}
	if query == "" {
		return u
	}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		k, v, found := strings.Cut(pair, "=")
		if !found {
			u.Params = append(u.Params, KV{Key: k})
			continue
		}
		u.Params = append(u.Params, KV{Key: k, Value: urlenc.Decode(v)})
	}
	return u
}

// Get returns the first value for key, and whether it was present.
func (u URI) Get(key string) (string, bool) {
	for _, kv := range u.Params {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Dump reconstructs the wire form of u. Parsing the dump yields an
// equivalent URI; values round-trip through a decode/encode cycle.
func (u URI) Dump() string {
	var b strings.Builder
	b.WriteString(u.Path)
	for i, kv := range u.Params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(kv.Key)
		b.WriteByte('=')
		b.WriteString(urlenc.Encode(kv.Value))
	}
	return b.String()
}

// Header is a case-insensitive multimap: keys are canonicalized lower-case
// internally, insertion order preserved for Keys.
type Header struct {
	order []string
	vals  map[string][]string
}

func NewHeader() *Header {
	return &Header{vals: make(map[string][]string)}
}

func canon(key string) string {
	return strings.ToLower(key)
}

func (h *Header) Add(key, value string) {
	k := canon(key)
	if _, ok := h.vals[k]; !ok {
		h.order = append(h.order, k)
	}
	h.vals[k] = append(h.vals[k], value)
}

func (h *Header) Set(key, value string) {
	k := canon(key)
	if _, ok := h.vals[k]; !ok {
		h.order = append(h.order, k)
	}
	h.vals[k] = []string{value}
}

// Get returns the first value for key ("" if absent).
func (h *Header) Get(key string) string {
	vs := h.vals[canon(key)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func (h *Header) Values(key string) []string {
	return h.vals[canon(key)]
}

func (h *Header) Has(key string) bool {
	_, ok := h.vals[canon(key)]
	return ok
}

// Keys returns the canonical (lower-case) keys in insertion order.
func (h *Header) Keys() []string {
	return h.order
}

// Request is one parsed HTTP/1.1 request: uppercase verb, URI, protocol
// version, case-insensitive headers, and the fully read body.
type Request struct {
	Method  string
	URI     URI
	Version string
	Headers *Header
	Body    []byte
}

// Response is a status plus headers; the body itself is written through a
// Responder rather than stored here, since it may be streamed.
type Response struct {
	Status  int
	Headers *Header
}

func NewResponse(status int) *Response {
	return &Response{Status: status, Headers: NewHeader()}
}
