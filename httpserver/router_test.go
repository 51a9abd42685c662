package httpserver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// tagged returns a Handler whose error identifies which registration matched,
// letting tests assert on Router.Match's selection without exposing internals.
func tagged(name string) Handler {
	return func(resp *Responder, req *Request) error {
		return errors.New(name)
	}
}

func matchName(r *Router, method, path string) string {
	h := r.Match(method, path)
	if h == nil {
		return ""
	}
	err := h(nil, nil)
	return err.Error()
}

func TestRouterExactMatchWinsOverPrefix(t *testing.T) {
	r := NewRouter()
	r.Handle("GET", "/files/*", tagged("wildcard"))
	r.Handle("GET", "/files/exact", tagged("exact"))

	assert.Equal(t, "exact", matchName(r, "GET", "/files/exact"))
}

func TestRouterLongestPrefixWins(t *testing.T) {
	r := NewRouter()
	r.Handle("GET", "/a/*", tagged("short"))
	r.Handle("GET", "/a/b/*", tagged("long"))

	assert.Equal(t, "long", matchName(r, "GET", "/a/b/c"))
}

func TestRouterNoMatchReturnsNil(t *testing.T) {
	r := NewRouter()
	r.Handle("GET", "/only", tagged("only"))

	assert.Nil(t, r.Match("GET", "/nope"))
	assert.Nil(t, r.Match("POST", "/only"))
}

func TestRouterMethodIsPartOfTheKey(t *testing.T) {
	r := NewRouter()
	r.Handle("GET", "/x", tagged("get"))
	r.Handle("POST", "/x", tagged("post"))

	assert.Equal(t, "get", matchName(r, "GET", "/x"))
	assert.Equal(t, "post", matchName(r, "POST", "/x"))
}
