package fsys

import (
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/co-async-go/co-async/ring"
	"github.com/co-async-go/co-async/sched"
)

// SocketConnect creates a socket and connects to addr:port, optionally
// abortable via tok. The timeout-bounded variant is SocketConnectTimeout;
// the two are kept as separate entry points rather than one variadic call.
func (root *Root) SocketConnect(addr [4]byte, port int, tok *sched.CancelToken) (*Socket, error) {
	res, _, err := root.ring.Submit(ring.SocketOp(unix.AF_INET, unix.SOCK_STREAM, 0))
	if err != nil {
		return nil, err
	}
	if e := errFromRes(res); e != nil {
		return nil, e
	}
	fd := int(res)

	raw, _ := rawSockaddrIn4(addr, port)
	rawPtr := uintptr(unsafe.Pointer(&raw))
	build := ring.ConnectOp(fd, rawPtr, uint64(syscall.SizeofSockaddrInet4))
	cres, _, err := submitCancelable(root.ring, tok, build)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if e := errFromRes(cres); e != nil {
		unix.Close(fd)
		return nil, e
	}
	return newSocket(root.ring, fd), nil
}

// ReadTimeout reads with a link-timeout chain: if the timeout fires first,
// the read completes Canceled, which is surfaced here as TimedOut.
func (s *Socket) ReadTimeout(buf []byte, d time.Duration) (int, error) {
	ts := syscall.NsecToTimespec(d.Nanoseconds())
	res, _, err := s.r.SubmitLinked(ring.ReadOp(s.Fd(), buf, ^uint64(0)), ring.LinkTimeoutOp(&ts))
	if err != nil {
		return 0, err
	}
	if e := errFromRes(res); e != nil {
		if sched.KindOf(e) == sched.Canceled {
			return 0, sched.Wrap(sched.TimedOut, e)
		}
		return 0, e
	}
	return int(res), nil
}

// WriteTimeout is ReadTimeout's write-side counterpart.
func (s *Socket) WriteTimeout(buf []byte, d time.Duration) (int, error) {
	ts := syscall.NsecToTimespec(d.Nanoseconds())
	res, _, err := s.r.SubmitLinked(ring.WriteOp(s.Fd(), buf, ^uint64(0)), ring.LinkTimeoutOp(&ts))
	if err != nil {
		return 0, err
	}
	if e := errFromRes(res); e != nil {
		if sched.KindOf(e) == sched.Canceled {
			return 0, sched.Wrap(sched.TimedOut, e)
		}
		return 0, e
	}
	return int(res), nil
}

// SocketConnectTimeout connects with a link-timeout chain instead of a
// cancel token.
func (root *Root) SocketConnectTimeout(addr [4]byte, port int, timeout time.Duration) (*Socket, error) {
	res, _, err := root.ring.Submit(ring.SocketOp(unix.AF_INET, unix.SOCK_STREAM, 0))
	if err != nil {
		return nil, err
	}
	if e := errFromRes(res); e != nil {
		return nil, e
	}
	fd := int(res)

	raw, _ := rawSockaddrIn4(addr, port)
	rawPtr := uintptr(unsafe.Pointer(&raw))
	ts := syscall.NsecToTimespec(timeout.Nanoseconds())
	cres, _, err := root.ring.SubmitLinked(
		ring.ConnectOp(fd, rawPtr, uint64(syscall.SizeofSockaddrInet4)),
		ring.LinkTimeoutOp(&ts),
	)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if e := errFromRes(cres); e != nil {
		unix.Close(fd)
		if sched.KindOf(e) == sched.Canceled {
			return nil, sched.Wrap(sched.TimedOut, e)
		}
		return nil, e
	}
	return newSocket(root.ring, fd), nil
}
