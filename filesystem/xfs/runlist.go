package xfs

import (
	"fmt"
	"io"
)

// Run is one contiguous span of a file's data fork: either a mapped range
// of absolute filesystem blocks, or an explicit sparse hole of Length
// blocks with no backing storage.
type Run struct {
	Block  uint64
	Length uint64
	Sparse bool
}

// runlistReader is an io.ReadSeeker over a file's data fork, translating
// logical byte offsets into (block, offset-within-block) reads against the
// filesystem's shared byte source, the same way the teacher's extent-backed
// file reader turns a block run list into a byte stream: sparse runs read
// as zeroes instead of touching the backend.
type runlistReader struct {
	fs        *Filesystem
	runs      []Run
	blockSize int64
	size      int64
	pos       int64
}

func newRunlistReader(fs *Filesystem, runs []Run, size int64) *runlistReader {
	return &runlistReader{
		fs:        fs,
		runs:      runs,
		blockSize: int64(fs.sb.Blocksize),
		size:      size,
	}
}

func (r *runlistReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.pos + offset
	case io.SeekEnd:
		abs = r.size + offset
	default:
		return 0, fmt.Errorf("xfs: invalid seek whence %d: %w", whence, ErrInvalidArgument)
	}
	if abs < 0 {
		return 0, fmt.Errorf("xfs: negative seek position: %w", ErrInvalidArgument)
	}
	r.pos = abs
	return r.pos, nil
}

func (r *runlistReader) Read(p []byte) (int, error) {
	if r.pos >= r.size {
		return 0, io.EOF
	}
	if want := r.size - r.pos; int64(len(p)) > want {
		p = p[:want]
	}

	run, runStartByte, err := r.locate(r.pos)
	if err != nil {
		return 0, err
	}

	runEndByte := runStartByte + int64(run.Length)*r.blockSize
	avail := runEndByte - r.pos
	n := int64(len(p))
	if n > avail {
		n = avail
	}

	if run.Sparse {
		for i := int64(0); i < n; i++ {
			p[i] = 0
		}
	} else {
		off := int64(run.Block)*r.blockSize + (r.pos - runStartByte)
		if _, err := r.fs.src.ReadAt(p[:n], off); err != nil {
			return 0, fmt.Errorf("xfs: reading data run: %w", err)
		}
	}

	r.pos += n
	return int(n), nil
}

// locate finds the run containing byte offset pos, along with that run's
// starting byte offset within the file.
func (r *runlistReader) locate(pos int64) (Run, int64, error) {
	var cursor int64
	for _, run := range r.runs {
		length := int64(run.Length) * r.blockSize
		if pos < cursor+length {
			return run, cursor, nil
		}
		cursor += length
	}
	return Run{}, 0, fmt.Errorf("xfs: seek position %d beyond run list: %w", pos, ErrInvalidArgument)
}
