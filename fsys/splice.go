package fsys

import "github.com/co-async-go/co-async/ring"

// Splice moves up to n bytes kernel-to-kernel from in to out.
func (r *Root) Splice(in *File, out *File, n uint32) (int, error) {
	res, _, err := r.ring.Submit(ring.SpliceOp(in.Fd(), -1, out.Fd(), -1, n))
	if err != nil {
		return 0, err
	}
	if e := errFromRes(res); e != nil {
		return 0, e
	}
	return int(res), nil
}

// SendFile moves the whole contents of src to dst through an intermediate
// pipe, splicing until src is exhausted. Memory use stays bounded by the
// pipe's kernel buffer regardless of src's size.
func (r *Root) SendFile(dst *File, src *File, chunk uint32) error {
	pr, pw, err := r.Pipe()
	if err != nil {
		return err
	}
	defer pr.Close()
	defer pw.Close()
	for {
		n, err := r.Splice(src, pw, chunk)
		if n == 0 {
			return err
		}
		remaining := n
		for remaining > 0 {
			m, err := r.Splice(pr, dst, uint32(remaining))
			if err != nil {
				return err
			}
			if m == 0 {
				return nil
			}
			remaining -= m
		}
		if err != nil {
			return err
		}
	}
}
