package stream

import (
	"time"

	"github.com/co-async-go/co-async/fsys"
	"github.com/co-async-go/co-async/sched"
)

// FileChannel adapts *fsys.File to RawChannel. Seek delegates to the
// handle's cursor (pipes refuse with InvalidSeek); a timeout hint is
// accepted but has no effect, since plain files never block the way a
// socket read can.
type FileChannel struct {
	f *fsys.File
}

func NewFileChannel(f *fsys.File) *FileChannel {
	return &FileChannel{f: f}
}

func (c *FileChannel) Read(buf []byte) (int, error)  { return c.f.Read(buf) }
func (c *FileChannel) Write(buf []byte) (int, error) { return c.f.Write(buf) }
func (c *FileChannel) Seek(offset int64) error       { return c.f.Seek(offset) }
func (c *FileChannel) Flush() error                  { return nil }
func (c *FileChannel) Close() error                  { return c.f.Close() }
func (c *FileChannel) SetTimeout(time.Duration)      {}

// SocketChannel adapts *fsys.Socket to RawChannel. Sockets are not
// seekable; SetTimeout governs subsequent Read/Write calls via the ring's
// link-timeout chain.
type SocketChannel struct {
	s       *fsys.Socket
	timeout time.Duration
}

func NewSocketChannel(s *fsys.Socket) *SocketChannel {
	return &SocketChannel{s: s}
}

func (c *SocketChannel) Read(buf []byte) (int, error) {
	if c.timeout > 0 {
		return c.s.ReadTimeout(buf, c.timeout)
	}
	return c.s.Read(buf)
}

func (c *SocketChannel) Write(buf []byte) (int, error) {
	if c.timeout > 0 {
		return c.s.WriteTimeout(buf, c.timeout)
	}
	return c.s.Write(buf)
}

func (c *SocketChannel) Seek(offset int64) error {
	return sched.New(sched.InvalidSeek)
}

func (c *SocketChannel) Flush() error { return nil }
func (c *SocketChannel) Close() error { return c.s.Close() }
func (c *SocketChannel) SetTimeout(d time.Duration) { c.timeout = d }
