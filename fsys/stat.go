package fsys

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/co-async-go/co-async/ring"
)

// Stat is a filesystem status snapshot, plus derived IsDirectory /
// IsReadable / IsExecutable helpers.
type Stat struct {
	Size       int64
	Mode       uint16
	Uid        uint32
	Gid        uint32
	AccessTime time.Time
	ModTime    time.Time
	ChangeTime time.Time
	BirthTime  time.Time
	Blocks     uint64
}

const (
	statxAllMask = 0x00000fff // STATX_BASIC_STATS | STATX_BTIME, per linux/stat.h
	sIFMT        = 0170000
	sIFDIR       = 0040000
	sIFREG       = 0100000
	sIFLNK       = 0120000
)

func (s Stat) IsDirectory() bool { return s.Mode&sIFMT == sIFDIR }
func (s Stat) IsRegularFile() bool { return s.Mode&sIFMT == sIFREG }
func (s Stat) IsSymlink() bool { return s.Mode&sIFMT == sIFLNK }
func (s Stat) IsReadable() bool { return s.Mode&0400 != 0 }
func (s Stat) IsWritable() bool { return s.Mode&0200 != 0 }
func (s Stat) IsExecutable() bool { return s.Mode&0100 != 0 }

func statFromStatx(x *ring.Statx) Stat {
	return Stat{
		Size:       int64(x.Size),
		Mode:       x.Mode,
		Uid:        x.Uid,
		Gid:        x.Gid,
		AccessTime: time.Unix(x.Atime.Sec, int64(x.Atime.Nsec)),
		ModTime:    time.Unix(x.Mtime.Sec, int64(x.Mtime.Nsec)),
		ChangeTime: time.Unix(x.Ctime.Sec, int64(x.Ctime.Nsec)),
		BirthTime:  time.Unix(x.Btime.Sec, int64(x.Btime.Nsec)),
		Blocks:     x.Blocks,
	}
}

// Stat takes a metadata snapshot of path without opening it.
func (r *Root) Stat(path string) (Stat, error) {
	var x ring.Statx
	res, _, err := r.ring.Submit(ring.StatxOp(unix.AT_FDCWD, path, 0, statxAllMask, &x))
	if err != nil {
		return Stat{}, err
	}
	if e := errFromRes(res); e != nil {
		return Stat{}, e
	}
	return statFromStatx(&x), nil
}
