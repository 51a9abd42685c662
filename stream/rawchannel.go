// Package stream implements the buffered stream layer: an owning buffer
// pair layered over a RawChannel, giving line/span/peek/struct I/O with
// well-defined EOF and flush semantics.
package stream

import "time"

// RawChannel is the virtual byte-channel contract Stream is built over:
// read/write/seek/flush/close/timeout. fsys.File and fsys.Socket are
// adapted to this interface in channel_adapters.go. Read reports EOF as
// (0, nil); a non-nil error always means a real failure.
type RawChannel interface {
	Read(buf []byte) (int, error)
	Write(buf []byte) (int, error)
	Seek(offset int64) error
	Flush() error
	Close() error
	SetTimeout(d time.Duration)
}
