package fsys

import (
	"context"
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// DirWalker is a cursor over a directory's entries, producing names one at
// a time until the directory is exhausted. It does not filter "." or "..";
// that is the consumer's job.
type DirWalker struct {
	dir *File
	buf []byte
	pos int
	end int
}

const dirWalkerBufSize = 32 * 1024

// OpenDir opens path as a directory for walking.
func (r *Root) OpenDir(path string) (*DirWalker, error) {
	f, err := r.Open(path, ReadOnly, unix.O_DIRECTORY, 0)
	if err != nil {
		return nil, err
	}
	return &DirWalker{dir: f, buf: make([]byte, dirWalkerBufSize)}, nil
}

// Next returns the next entry name, or ok=false once the directory is
// exhausted. It treats the kernel buffer as an opaque packed
// linux_dirent64 layout and advances strictly by each record's reclen
// field. Directory batches are fetched with getdents64(2) directly, since
// directory reads, like pipe creation, have no io_uring opcode; everything
// the walker's consumers do with the names goes back through the ring.
func (w *DirWalker) Next(ctx context.Context) (string, bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		if w.pos < w.end {
			name, reclen := decodeDirent64(w.buf[w.pos:w.end])
			w.pos += reclen
			return name, true, nil
		}
		n, err := unix.Getdents(w.dir.Fd(), w.buf)
		if err != nil {
			return "", false, err
		}
		if n == 0 {
			return "", false, nil
		}
		w.pos = 0
		w.end = n
	}
}

func (w *DirWalker) Close() error {
	return w.dir.Close()
}

// linux_dirent64 layout: d_ino(8) d_off(8) d_reclen(2) d_type(1) d_name(NUL-terminated, padded to reclen)
func decodeDirent64(buf []byte) (name string, reclen int) {
	reclen = int(binary.LittleEndian.Uint16(buf[16:18]))
	nameBytes := buf[19:reclen]
	end := 0
	for end < len(nameBytes) && nameBytes[end] != 0 {
		end++
	}
	return string(nameBytes[:end]), reclen
}
