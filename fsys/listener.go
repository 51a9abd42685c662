package fsys

import (
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/co-async-go/co-async/ring"
	"github.com/co-async-go/co-async/sched"
)

// Listener is a bound, listening TCP socket.
type Listener struct {
	r  *ring.Ring
	fd int
}

// ListenerBind creates a socket, sets SO_REUSEADDR, binds to addr:port, and
// listens with the given backlog.
func (root *Root) ListenerBind(addr [4]byte, port int, backlog int) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, err
	}
	sa := &unix.SockaddrInet4{Port: port, Addr: addr}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Listener{r: root.ring, fd: fd}, nil
}

func (l *Listener) Fd() int {
	return l.fd
}

func (l *Listener) Close() error {
	return unix.Close(l.fd)
}

// Accept awaits an incoming connection, filling peerAddr if non-nil. If tok
// is non-nil and canceled while the accept is in flight, it is aborted and
// Accept returns a Canceled error promptly.
func (l *Listener) Accept(tok *sched.CancelToken, peerAddr *syscall.RawSockaddrAny) (*Socket, error) {
	var addrLen uint32 = uint32(unsafe.Sizeof(syscall.RawSockaddrAny{}))
	build := ring.AcceptOp(l.fd, peerAddr, &addrLen)

	res, _, err := submitCancelable(l.r, tok, build)
	if err != nil {
		return nil, err
	}
	if e := errFromRes(res); e != nil {
		return nil, e
	}
	return newSocket(l.r, int(res)), nil
}

// ringCanceller adapts ring.Ring.Cancel to sched.Canceller. Its target
// user-data is published by the in-flight notification from SubmitNotify;
// a cancel request arriving before the submission is in flight records
// nothing here, and submitCancelable re-checks the token at that point.
type ringCanceller struct {
	r  *ring.Ring
	ud atomic.Uint64
}

func (c *ringCanceller) RequestCancel() {
	if ud := c.ud.Load(); ud != 0 {
		c.r.Cancel(ud)
	}
}

// submitCancelable runs build through r.SubmitNotify under tok, so
// tok.Cancel() can abort the submission while it is in flight. A cancel
// that lands between canceller registration and the in-flight notification
// is caught by re-checking the token once the user-data is known.
func submitCancelable(r *ring.Ring, tok *sched.CancelToken, build ring.SQEBuilder) (int32, uint64, error) {
	type submitResult struct {
		res int32
		ud  uint64
	}
	c := &ringCanceller{r: r}
	op := func() (submitResult, error) {
		res, ud, err := r.SubmitNotify(build, func(ud uint64) {
			c.ud.Store(ud)
			if tok != nil && tok.Canceled() {
				c.RequestCancel()
			}
		})
		if err != nil {
			return submitResult{}, err
		}
		return submitResult{res: res, ud: ud}, nil
	}
	out, err := sched.Invoke(tok, c, op)
	return out.res, out.ud, err
}
