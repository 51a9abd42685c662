package fsys

import "github.com/co-async-go/co-async/ring"

// Root is the entry point for filesystem operations relative to the
// process's current directory. Every fsys operation hangs off a Root so
// callers thread one ring explicitly rather than relying on a hidden
// global.
type Root struct {
	ring *ring.Ring
}

func NewRoot(r *ring.Ring) *Root {
	return &Root{ring: r}
}
