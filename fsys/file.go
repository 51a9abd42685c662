// Package fsys translates filesystem, pipe, and socket operations into
// ring submissions. File and Socket handles own a file descriptor
// exclusively; Close is idempotent rather than move-only, since Go cannot
// enforce move-only ownership at compile time.
package fsys

import (
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/co-async-go/co-async/ring"
	"github.com/co-async-go/co-async/sched"
)

// ErrClosed is returned by Read, Write and Seek on a handle that has
// already been closed (or released). A repeated Close returns nil.
var ErrClosed = sched.New(sched.InvalidArgument)

// File owns a file descriptor obtained through the ring. Handles opened on
// regular files carry their own read/write cursor (the ring's pread-style
// ops take an explicit offset, so the kernel fd offset is never used);
// pipe and socket descriptors submit with offset -1 instead.
type File struct {
	r        *ring.Ring
	fd       int32
	seekable bool
	off      int64
	closed   atomic.Bool
}

func newFile(r *ring.Ring, fd int) *File {
	f := &File{r: r, fd: int32(fd)}
	return f
}

func newSeekableFile(r *ring.Ring, fd int) *File {
	return &File{r: r, fd: int32(fd), seekable: true}
}

func (f *File) Fd() int {
	return int(f.fd)
}

func (f *File) offset() uint64 {
	if f.seekable {
		return uint64(f.off)
	}
	return ^uint64(0)
}

func (f *File) Read(buf []byte) (int, error) {
	if f.closed.Load() {
		return 0, ErrClosed
	}
	res, _, err := f.r.Submit(ring.ReadOp(int(f.fd), buf, f.offset()))
	if err != nil {
		return 0, err
	}
	if e := errFromRes(res); e != nil {
		return 0, e
	}
	if f.seekable {
		f.off += int64(res)
	}
	return int(res), nil
}

func (f *File) Write(buf []byte) (int, error) {
	if f.closed.Load() {
		return 0, ErrClosed
	}
	res, _, err := f.r.Submit(ring.WriteOp(int(f.fd), buf, f.offset()))
	if err != nil {
		return 0, err
	}
	if e := errFromRes(res); e != nil {
		return 0, e
	}
	if f.seekable {
		f.off += int64(res)
	}
	return int(res), nil
}

// Seek repositions the handle's cursor. Pipes and sockets have no cursor
// and fail with InvalidSeek.
func (f *File) Seek(pos int64) error {
	if f.closed.Load() {
		return ErrClosed
	}
	if !f.seekable {
		return sched.New(sched.InvalidSeek)
	}
	f.off = pos
	return nil
}

// Release marks f closed without issuing a close op and returns the raw
// descriptor, transferring ownership to a caller that will manage its
// lifetime directly (the cgi package does this to hand a pipe end to
// os/exec).
func (f *File) Release() int {
	f.closed.Store(true)
	return int(f.fd)
}

// Close closes the descriptor through the ring. Safe to call more than
// once; the second call is a no-op.
func (f *File) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	res, _, err := f.r.Submit(ring.CloseOp(int(f.fd)))
	if err != nil {
		return err
	}
	return errFromRes(res)
}

// Socket owns a socket file descriptor; it shares File's ring-backed
// Read/Write/Close behavior but is kept as a distinct type to carry
// socket-only operations (timeout reads and connect helpers, socket.go).
type Socket struct {
	File
}

func newSocket(r *ring.Ring, fd int) *Socket {
	return &Socket{File: File{r: r, fd: int32(fd)}}
}

// rawSockaddrIn4 builds a syscall.RawSockaddrAny/length pair for addr.
func rawSockaddrIn4(ip [4]byte, port int) (syscall.RawSockaddrAny, uint32) {
	var raw syscall.RawSockaddrAny
	sa := (*syscall.RawSockaddrInet4)(unsafe.Pointer(&raw))
	sa.Family = unix.AF_INET
	sa.Port = htons(uint16(port))
	sa.Addr = ip
	return raw, uint32(syscall.SizeofSockaddrInet4)
}

func htons(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}
