package fsys

import (
	"golang.org/x/sys/unix"

	"github.com/co-async-go/co-async/ring"
)

// OpenMode selects the access mode an open combines with any extra
// create/truncate/append flags.
type OpenMode int

const (
	ReadOnly OpenMode = iota
	WriteOnly
	ReadWrite
)

// OpenAt opens path relative to dir (nil meaning the process's current
// directory), combining mode with the create/truncate/append bits in
// extraFlags (unix.O_CREAT, unix.O_TRUNC, unix.O_APPEND, ...).
func (r *Root) OpenAt(dir *File, path string, mode OpenMode, extraFlags int, perm uint32) (*File, error) {
	flags := extraFlags
	switch mode {
	case ReadOnly:
		flags |= unix.O_RDONLY
	case WriteOnly:
		flags |= unix.O_WRONLY
	case ReadWrite:
		flags |= unix.O_RDWR
	}
	dirfd := unix.AT_FDCWD
	if dir != nil {
		dirfd = dir.Fd()
	}
	res, _, err := r.ring.Submit(ring.OpenAtOp(dirfd, path, flags, perm))
	if err != nil {
		return nil, err
	}
	if e := errFromRes(res); e != nil {
		return nil, e
	}
	return newSeekableFile(r.ring, int(res)), nil
}

// Open is OpenAt relative to the process's current directory.
func (r *Root) Open(path string, mode OpenMode, extraFlags int, perm uint32) (*File, error) {
	return r.OpenAt(nil, path, mode, extraFlags, perm)
}
