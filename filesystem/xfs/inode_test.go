package xfs

import (
	"errors"
	"io"
	"testing"
	"time"
)

func TestFileTypeAccessors(t *testing.T) {
	cases := []struct {
		mode                          uint16
		isDir, isSymlink, isRegular bool
	}{
		{modeDir, true, false, false},
		{modeLnk, false, true, false},
		{modeReg, false, false, true},
		{modeFifo, false, false, false},
	}
	for _, c := range cases {
		ino := newTestInode(&Filesystem{}, &dinode{Mode: c.mode}, nil)
		if got := ino.IsDir(); got != c.isDir {
			t.Errorf("mode %#x: IsDir() = %v, want %v", c.mode, got, c.isDir)
		}
		if got := ino.IsSymlink(); got != c.isSymlink {
			t.Errorf("mode %#x: IsSymlink() = %v, want %v", c.mode, got, c.isSymlink)
		}
		if got := ino.IsRegular(); got != c.isRegular {
			t.Errorf("mode %#x: IsRegular() = %v, want %v", c.mode, got, c.isRegular)
		}
	}
}

func TestTimestampLegacyDispatch(t *testing.T) {
	// sec=1000, nsec=0, packed as one big-endian uint64 with sec in the
	// high 32 bits.
	raw := uint64(1000) << 32
	d := &dinode{Version: 2, rawMtime: raw}
	ino := newTestInode(&Filesystem{}, d, nil)

	got := ino.MTime()
	want := time.Unix(1000, 0).UTC()
	if !got.Equal(want) {
		t.Errorf("MTime() = %v, want %v", got, want)
	}
}

func TestTimestampBigtimeDispatch(t *testing.T) {
	d := &dinode{Version: 3, Flags2: diFlag2Bigtime}
	// raw = epoch_ns - bigtimeEpochOffset*1e9, the decode formula run in
	// reverse (mirrors timestamp_test.go's round-trip construction).
	nsWant := int64(1680858909223364005)
	d.rawCrtime = uint64(nsWant - bigtimeEpochOffset*1_000_000_000)
	ino := newTestInode(&Filesystem{}, d, nil)

	if got := ino.CrTimeNs(); got != nsWant {
		t.Errorf("CrTimeNs() = %d, want %d", got, nsWant)
	}
}

func TestCrTimeZeroOnV2(t *testing.T) {
	d := &dinode{Version: 2, rawCrtime: 0xdeadbeef}
	ino := newTestInode(&Filesystem{}, d, nil)

	if got := ino.CrTime(); !got.IsZero() {
		t.Errorf("CrTime() on v2 = %v, want zero time", got)
	}
	if got := ino.CrTimeNs(); got != 0 {
		t.Errorf("CrTimeNs() on v2 = %d, want 0", got)
	}
}

func TestDataruns_Memoized(t *testing.T) {
	const blockSize = 4096
	fs := &Filesystem{sb: &superblock{Blocksize: blockSize}}

	fork := make([]byte, 16)
	l0, l1 := encodeExtent(extentRecord{Offset: 0, Block: 5, Count: 1})
	b := newByteBuilder(16)
	b.put64(0, l0)
	b.put64(8, l1)
	copy(fork, b.bytes())

	raw := make([]byte, dinodeCoreLenV2+len(fork))
	copy(raw[dinodeCoreLenV2:], fork)

	d := &dinode{Format: diFormatExtents, Size: blockSize, bigAnextents: 1}
	ino := newTestInode(fs, d, raw)

	runs1, err := ino.Dataruns()
	if err != nil {
		t.Fatalf("Dataruns: %v", err)
	}
	// Corrupt the backing fork bytes; a memoized second call must not
	// re-decode and must return the identical slice.
	for i := range raw {
		raw[i] = 0xFF
	}
	runs2, err := ino.Dataruns()
	if err != nil {
		t.Fatalf("Dataruns (second call): %v", err)
	}
	if len(runs1) != 1 || len(runs2) != 1 || runs1[0] != runs2[0] {
		t.Fatalf("Dataruns not memoized: first=%v second=%v", runs1, runs2)
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	d := &dinode{Format: diFormatDev}
	ino := newTestInode(&Filesystem{}, d, nil)

	if _, err := ino.Open(); !errors.Is(err, ErrUnsupportedDatafork) {
		t.Fatalf("error = %v, want ErrUnsupportedDatafork", err)
	}
}

func TestOpenLocalReadsInlineData(t *testing.T) {
	content := "hello xfs"
	raw := make([]byte, dinodeCoreLenV2+len(content))
	copy(raw[dinodeCoreLenV2:], content)

	d := &dinode{Format: diFormatLocal, Size: uint64(len(content))}
	ino := newTestInode(&Filesystem{}, d, raw)

	r, err := ino.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != content {
		t.Fatalf("Open content = %q, want %q", got, content)
	}
}
