package stream

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/co-async-go/co-async/sched"
)

const defaultBufCapacity = 8 * 1024

// Stream is a buffered reader/writer over a RawChannel, collapsing the
// borrowed/owning distinction into one type: Go has no borrow checker, so
// ownership is just whether Close closes the underlying channel.
type Stream struct {
	raw   RawChannel
	owned bool

	in    []byte
	inIdx int
	inEnd int

	out    []byte
	outIdx int
}

// New wraps raw in a Stream. If owned, Close also closes raw.
func New(raw RawChannel, owned bool) *Stream {
	return &Stream{raw: raw, owned: owned}
}

func (s *Stream) ensureIn() {
	if s.in == nil {
		s.in = make([]byte, defaultBufCapacity)
	}
}

func (s *Stream) ensureOut() {
	if s.out == nil {
		s.out = make([]byte, defaultBufCapacity)
	}
}

// fill reads more input once the buffer is exhausted; returns false at EOF.
func (s *Stream) fill() (bool, error) {
	s.ensureIn()
	n, err := s.raw.Read(s.in)
	if n > 0 {
		s.inIdx, s.inEnd = 0, n
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// ReadByte returns the next input byte, filling the buffer if empty.
func (s *Stream) ReadByte() (byte, error) {
	if s.inIdx >= s.inEnd {
		ok, err := s.fill()
		if err != nil {
			return 0, sched.Wrap(sched.IoError, err)
		}
		if !ok {
			return 0, sched.New(sched.BrokenPipe)
		}
	}
	b := s.in[s.inIdx]
	s.inIdx++
	return b, nil
}

// ReadLine appends bytes up to (not including) the next eol, consuming eol.
func (s *Stream) ReadLine(eol byte) (string, error) {
	var buf bytes.Buffer
	for {
		b, err := s.ReadByte()
		if err != nil {
			return buf.String(), err
		}
		if b == eol {
			return buf.String(), nil
		}
		buf.WriteByte(b)
	}
}

// ReadLineString scans for a (possibly multi-byte) delimiter; partial
// matches of the delimiter are re-appended to the accumulated line and
// scanning resumes.
func (s *Stream) ReadLineString(eol string) (string, error) {
	if len(eol) == 0 {
		return "", sched.New(sched.InvalidArgument)
	}
	var buf bytes.Buffer
	matched := 0
	for {
		b, err := s.ReadByte()
		if err != nil {
			buf.WriteString(eol[:matched])
			return buf.String(), err
		}
		if b == eol[matched] {
			matched++
			if matched == len(eol) {
				return buf.String(), nil
			}
			continue
		}
		if matched > 0 {
			buf.WriteString(eol[:matched])
			matched = 0
		}
		if b == eol[0] {
			matched = 1
			continue
		}
		buf.WriteByte(b)
	}
}

// DropLine discards bytes up to and including the next eol.
func (s *Stream) DropLine(eol byte) error {
	_, err := s.ReadLine(eol)
	return err
}

// ReadSpan fills exactly n bytes or fails with BrokenPipe on a short read.
func (s *Stream) ReadSpan(n int) ([]byte, error) {
	out := make([]byte, n)
	got := 0
	for got < n {
		if s.inIdx < s.inEnd {
			c := copy(out[got:], s.in[s.inIdx:s.inEnd])
			s.inIdx += c
			got += c
			continue
		}
		ok, err := s.fill()
		if err != nil {
			return out[:got], sched.Wrap(sched.IoError, err)
		}
		if !ok {
			return out[:got], sched.New(sched.BrokenPipe)
		}
	}
	return out, nil
}

// ReadAll drains to EOF. EOF itself is not an error; only failures other
// than end-of-input are reported.
func (s *Stream) ReadAll() ([]byte, error) {
	var buf bytes.Buffer
	if s.inIdx < s.inEnd {
		buf.Write(s.in[s.inIdx:s.inEnd])
		s.inIdx = s.inEnd
	}
	tmp := make([]byte, defaultBufCapacity)
	for {
		n, err := s.raw.Read(tmp)
		if n > 0 {
			buf.Write(tmp[:n])
		}
		if err != nil {
			return buf.Bytes(), sched.Wrap(sched.IoError, err)
		}
		if n == 0 {
			return buf.Bytes(), nil
		}
	}
}

// PeekBuf returns a synchronous view of currently buffered bytes; it never
// blocks and may return an empty slice.
func (s *Stream) PeekBuf() []byte {
	return s.in[s.inIdx:s.inEnd]
}

// PeekByte ensures at least one buffered byte and returns it without
// consuming it.
func (s *Stream) PeekByte() (byte, error) {
	if s.inIdx >= s.inEnd {
		ok, err := s.fill()
		if err != nil {
			return 0, sched.Wrap(sched.IoError, err)
		}
		if !ok {
			return 0, sched.New(sched.BrokenPipe)
		}
	}
	return s.in[s.inIdx], nil
}

// PeekN ensures at least n buffered bytes and returns a view without
// consuming them. n must not exceed the buffer capacity.
func (s *Stream) PeekN(n int) ([]byte, error) {
	s.ensureIn()
	for s.inEnd-s.inIdx < n {
		if s.inIdx > 0 {
			copy(s.in, s.in[s.inIdx:s.inEnd])
			s.inEnd -= s.inIdx
			s.inIdx = 0
		}
		if s.inEnd >= len(s.in) {
			return nil, sched.New(sched.InvalidArgument)
		}
		count, err := s.raw.Read(s.in[s.inEnd:])
		if count == 0 {
			if err != nil {
				return nil, sched.Wrap(sched.IoError, err)
			}
			return nil, sched.New(sched.BrokenPipe)
		}
		s.inEnd += count
	}
	return s.in[s.inIdx : s.inIdx+n], nil
}

// ReadStruct reads binary.Size(ptr) bytes into ptr via encoding/binary.
func (s *Stream) ReadStruct(ptr any, order binary.ByteOrder) error {
	sz := binary.Size(ptr)
	if sz < 0 {
		return sched.New(sched.InvalidArgument)
	}
	span, err := s.ReadSpan(sz)
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(span), order, ptr)
}

// WriteByte appends c to the output buffer, flushing on overflow.
func (s *Stream) WriteByte(c byte) error {
	s.ensureOut()
	if s.outIdx >= len(s.out) {
		if err := s.Flush(); err != nil {
			return err
		}
	}
	s.out[s.outIdx] = c
	s.outIdx++
	return nil
}

// WriteSpan appends p to the output buffer, flushing as needed for spans
// larger than the remaining buffer space.
func (s *Stream) WriteSpan(p []byte) error {
	s.ensureOut()
	for len(p) > 0 {
		if s.outIdx >= len(s.out) {
			if err := s.Flush(); err != nil {
				return err
			}
		}
		n := copy(s.out[s.outIdx:], p)
		s.outIdx += n
		p = p[n:]
	}
	return nil
}

func (s *Stream) WriteString(str string) error {
	return s.WriteSpan([]byte(str))
}

func (s *Stream) WriteStruct(v any, order binary.ByteOrder) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, order, v); err != nil {
		return sched.Wrap(sched.InvalidArgument, err)
	}
	return s.WriteSpan(buf.Bytes())
}

// WriteLine is puts(s) + putchar('\n') + flush().
func (s *Stream) WriteLine(str string) error {
	if err := s.WriteString(str); err != nil {
		return err
	}
	if err := s.WriteByte('\n'); err != nil {
		return err
	}
	return s.Flush()
}

// Flush writes the entire pending output buffer, looping on short writes
// until drained, then invokes the raw flush. A zero-byte write is treated
// as a broken pipe.
func (s *Stream) Flush() error {
	s.ensureOut()
	pending := s.out[:s.outIdx]
	for len(pending) > 0 {
		n, err := s.raw.Write(pending)
		if n == 0 {
			if err != nil {
				return sched.Wrap(sched.IoError, err)
			}
			return sched.New(sched.BrokenPipe)
		}
		pending = pending[n:]
		if err != nil {
			return sched.Wrap(sched.IoError, err)
		}
	}
	s.outIdx = 0
	if err := s.raw.Flush(); err != nil {
		return sched.Wrap(sched.IoError, err)
	}
	return nil
}

// Seek delegates to the raw channel and evicts both buffers: stale data
// must never be returned after a position change.
func (s *Stream) Seek(pos int64) error {
	if err := s.raw.Seek(pos); err != nil {
		return err
	}
	s.inIdx, s.inEnd = 0, 0
	s.outIdx = 0
	return nil
}

// Close flushes pending output, then delegates to the raw channel's close
// if this Stream owns it.
func (s *Stream) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if !s.owned {
		return nil
	}
	return s.raw.Close()
}

// SetTimeout sets a per-operation timeout hint on the raw channel.
func (s *Stream) SetTimeout(d time.Duration) {
	s.raw.SetTimeout(d)
}
