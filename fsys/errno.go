package fsys

import (
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/co-async-go/co-async/sched"
)

// errnoToKind classifies a raw kernel errno (as carried by a negative ring
// completion result) into a sched.ErrorKind.
func errnoToKind(errno syscall.Errno) sched.ErrorKind {
	switch errno {
	case unix.ECANCELED:
		return sched.Canceled
	case unix.ETIMEDOUT, unix.ETIME:
		return sched.TimedOut
	case unix.EPIPE, unix.ECONNRESET:
		return sched.BrokenPipe
	case unix.ESPIPE:
		return sched.InvalidSeek
	case unix.ENOSYS, unix.EOPNOTSUPP:
		return sched.NotSupported
	case unix.EINVAL:
		return sched.InvalidArgument
	case unix.EACCES, unix.EPERM:
		return sched.PermissionDenied
	case unix.ENOENT, unix.ENOTDIR:
		return sched.NotFound
	case unix.EEXIST:
		return sched.AlreadyExists
	default:
		return sched.IoError
	}
}

// errFromRes converts a ring completion's result code into an error: nil
// for res >= 0, otherwise a *sched.Error wrapping the raw errno.
func errFromRes(res int32) error {
	if res >= 0 {
		return nil
	}
	errno := syscall.Errno(-res)
	return sched.Wrap(errnoToKind(errno), errno)
}
