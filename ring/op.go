package ring

import (
	"syscall"
	"unsafe"

	"github.com/pawelgaczynski/giouring"
)

// SQEBuilder prepares one submission queue entry for an operation; it is
// the value the Op builders below return and Submit/SubmitLinked consume.
type SQEBuilder func(sqe *giouring.SubmissionQueueEntry)

func ReadOp(fd int, buf []byte, offset uint64) SQEBuilder {
	return func(sqe *giouring.SubmissionQueueEntry) {
		var ptr uintptr
		if len(buf) > 0 {
			ptr = uintptr(unsafe.Pointer(&buf[0]))
		}
		sqe.PrepareRead(fd, ptr, uint32(len(buf)), offset)
	}
}

func WriteOp(fd int, buf []byte, offset uint64) SQEBuilder {
	return func(sqe *giouring.SubmissionQueueEntry) {
		var ptr uintptr
		if len(buf) > 0 {
			ptr = uintptr(unsafe.Pointer(&buf[0]))
		}
		sqe.PrepareWrite(fd, ptr, uint32(len(buf)), offset)
	}
}

// AcceptOp accepts one connection on listener fd, writing the peer address
// into addr/addrLen when non-nil (optional peer parameter).
func AcceptOp(fd int, addr *syscall.RawSockaddrAny, addrLen *uint32) SQEBuilder {
	return func(sqe *giouring.SubmissionQueueEntry) {
		var addrPtr, lenPtr uintptr
		if addr != nil {
			addrPtr = uintptr(unsafe.Pointer(addr))
		}
		if addrLen != nil {
			lenPtr = uintptr(unsafe.Pointer(addrLen))
		}
		sqe.PrepareAccept(fd, addrPtr, lenPtr, 0)
	}
}

func ConnectOp(fd int, addr uintptr, addrLen uint64) SQEBuilder {
	return func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareConnect(fd, addr, addrLen)
	}
}

func SocketOp(domain, typ, protocol int) SQEBuilder {
	return func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareSocket(domain, typ, protocol, 0)
	}
}

// OpenAtOp opens path relative to dirfd (process cwd when dirfd is
// AT_FDCWD).
func OpenAtOp(dirfd int, path string, flags int, mode uint32) SQEBuilder {
	return func(sqe *giouring.SubmissionQueueEntry) {
		cpath, err := syscall.BytePtrFromString(path)
		if err != nil {
			return
		}
		sqe.PrepareOpenat(dirfd, uintptr(unsafe.Pointer(cpath)), uint32(flags), mode)
	}
}

// StatxOp fills stat with the metadata fields selected by mask.
func StatxOp(dirfd int, path string, flags int, mask uint32, stat *Statx) SQEBuilder {
	return func(sqe *giouring.SubmissionQueueEntry) {
		cpath, err := syscall.BytePtrFromString(path)
		if err != nil {
			return
		}
		sqe.PrepareStatx(dirfd, uintptr(unsafe.Pointer(cpath)), uint32(flags), mask, uintptr(unsafe.Pointer(stat)))
	}
}

func SpliceOp(fdIn int, offIn int64, fdOut int, offOut int64, n uint32) SQEBuilder {
	return func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareSplice(fdIn, offIn, fdOut, offOut, n, 0)
	}
}

func TimeoutOp(ts *syscall.Timespec) SQEBuilder {
	return func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareTimeout(uintptr(unsafe.Pointer(ts)), 0, 0)
	}
}

// LinkTimeoutOp arms a timeout against the submission it is linked after:
// if ts elapses first, the linked operation completes with ECANCELED. Must
// follow an entry carrying IOSQE_IO_LINK (SubmitLinked arranges this); a
// standalone sleep wants TimeoutOp instead.
func LinkTimeoutOp(ts *syscall.Timespec) SQEBuilder {
	return func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareLinkTimeout(uintptr(unsafe.Pointer(ts)), 0)
	}
}

func CloseOp(fd int) SQEBuilder {
	return func(sqe *giouring.SubmissionQueueEntry) {
		sqe.PrepareClose(fd)
	}
}

// Statx mirrors struct statx's layout closely enough for the fields fsys.Stat
// reads; golang.org/x/sys/unix does not currently export a ring-friendly
// statx type, so this is the field subset the ring/fsys boundary needs.
type Statx struct {
	Mask           uint32
	Blksize        uint32
	Attributes     uint64
	Nlink          uint32
	Uid            uint32
	Gid            uint32
	Mode           uint16
	_              uint16
	Ino            uint64
	Size           uint64
	Blocks         uint64
	AttributesMask uint64
	Atime          StatxTimestamp
	Btime          StatxTimestamp
	Ctime          StatxTimestamp
	Mtime          StatxTimestamp
	RdevMajor      uint32
	RdevMinor      uint32
	DevMajor       uint32
	DevMinor       uint32
	_              [14]uint64
}

type StatxTimestamp struct {
	Sec  int64
	Nsec uint32
	_    int32
}
