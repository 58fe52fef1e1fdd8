package xfs

import (
	"encoding/binary"
	"io"
)

func beUint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func beUint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

// readFull reads exactly len(buf) bytes from r, following the teacher's
// ext4 file-reading idiom of a single bounds-checked bulk read rather than
// repeated small Read calls.
func readFull(r io.Reader, buf []byte) (int, error) {
	return io.ReadFull(r, buf)
}
