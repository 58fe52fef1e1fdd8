package testhelper

import (
	"io"
	"io/fs"

	"github.com/go-xfs/xfs/backend"
	backendfile "github.com/go-xfs/xfs/backend/file"
)

// memFile is an in-memory fs.File/io.ReaderAt/io.Seeker over a fixed byte
// slice, used to hand backend/file.New a fixture image without touching
// the filesystem.
type memFile struct {
	data []byte
	pos  int64
}

func (m *memFile) Stat() (fs.FileInfo, error) { return nil, nil }

func (m *memFile) Read(b []byte) (int, error) {
	n, err := m.ReadAt(b, m.pos)
	m.pos += int64(n)
	return n, err
}

func (m *memFile) Close() error { return nil }

func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.data)) + offset
	}
	m.pos = abs
	return abs, nil
}

// NewMemStorage wraps a byte slice as a read-only backend.Storage, for
// building small in-memory XFS image fixtures in tests.
func NewMemStorage(data []byte) backend.Storage {
	return backendfile.New(&memFile{data: data}, true)
}
