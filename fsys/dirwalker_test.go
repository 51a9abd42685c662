package fsys

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildDirent64(name string, reclen int) []byte {
	buf := make([]byte, reclen)
	binary.LittleEndian.PutUint16(buf[16:18], uint16(reclen))
	copy(buf[19:], name)
	return buf
}

func TestDecodeDirent64(t *testing.T) {
	rec := buildDirent64("hello.txt", 32)
	name, reclen := decodeDirent64(rec)
	assert.Equal(t, "hello.txt", name)
	assert.Equal(t, 32, reclen)
}

func TestDecodeDirent64DoesNotFilterDotEntries(t *testing.T) {
	rec := buildDirent64(".", 24)
	name, _ := decodeDirent64(rec)
	assert.Equal(t, ".", name)
}

func TestDecodeDirent64Sequence(t *testing.T) {
	buf := append(buildDirent64("a", 24), buildDirent64("bb", 24)...)
	name1, reclen1 := decodeDirent64(buf)
	assert.Equal(t, "a", name1)
	name2, _ := decodeDirent64(buf[reclen1:])
	assert.Equal(t, "bb", name2)
}
