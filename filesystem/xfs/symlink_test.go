package xfs

import (
	"errors"
	"testing"

	"github.com/go-xfs/xfs/testhelper"
)

func TestLinkLocal(t *testing.T) {
	target := "test_dir/test_file"
	raw := make([]byte, dinodeCoreLenV2+len(target))
	copy(raw[dinodeCoreLenV2:], target)

	d := &dinode{Version: 0, Format: diFormatLocal, Mode: modeLnk, Size: uint64(len(target))}
	ino := newTestInode(&Filesystem{}, d, raw)

	got, err := ino.Link()
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if got != target {
		t.Fatalf("Link() = %q, want %q", got, target)
	}
}

func TestLinkNotASymlink(t *testing.T) {
	d := &dinode{Version: 0, Format: diFormatLocal, Mode: modeReg}
	ino := newTestInode(&Filesystem{}, d, make([]byte, dinodeCoreLenV2))

	if _, err := ino.Link(); !errors.Is(err, ErrNotASymlink) {
		t.Fatalf("error = %v, want ErrNotASymlink", err)
	}
}

func TestLinkV4NonLocal(t *testing.T) {
	const blockSize = 512
	target := "some/target/path"

	image := make([]byte, blockSize)
	copy(image, target)

	fs := &Filesystem{
		sb:  &superblock{Blocksize: blockSize},
		src: testhelper.NewMemStorage(image),
	}

	fork := make([]byte, 16)
	l0, l1 := encodeExtent(extentRecord{Offset: 0, Block: 0, Count: 1})
	b := newByteBuilder(16)
	b.put64(0, l0)
	b.put64(8, l1)
	copy(fork, b.bytes())

	raw := make([]byte, dinodeCoreLenV2+len(fork))
	copy(raw[dinodeCoreLenV2:], fork)

	d := &dinode{
		Version:      0,
		Format:       diFormatExtents,
		Mode:         modeLnk,
		Size:         uint64(len(target)),
		bigAnextents: 1,
	}
	ino := newTestInode(fs, d, raw)

	got, err := ino.Link()
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if got != target {
		t.Fatalf("Link() = %q, want %q", got, target)
	}
}

func TestResolveDotAndDotDot(t *testing.T) {
	root := &Inode{inum: 8}
	fs := &Filesystem{root: root}
	root.fs = fs

	child := &Inode{inum: 9, fs: fs, parent: root}

	got, err := fs.resolve(".", child)
	if err != nil {
		t.Fatalf("resolve(.): %v", err)
	}
	if got != child {
		t.Fatalf("resolve(.) = %v, want unchanged node", got)
	}

	got, err = fs.resolve("..", child)
	if err != nil {
		t.Fatalf("resolve(..): %v", err)
	}
	if got != root {
		t.Fatalf("resolve(..) = %v, want root", got)
	}

	// ".." at the root is a no-op.
	got, err = fs.resolve("..", root)
	if err != nil {
		t.Fatalf("resolve(..) at root: %v", err)
	}
	if got != root {
		t.Fatalf("resolve(..) at root = %v, want root", got)
	}
}

func TestResolveDotDotUnavailable(t *testing.T) {
	root := &Inode{inum: 8}
	fs := &Filesystem{root: root}
	root.fs = fs

	orphan := &Inode{inum: 20, fs: fs} // no parent pointer recorded

	if _, err := fs.resolve("..", orphan); !errors.Is(err, ErrSymlinkUnavailable) {
		t.Fatalf("error = %v, want ErrSymlinkUnavailable", err)
	}
}

func TestLinkInodeNotASymlink(t *testing.T) {
	root := &Inode{inum: 8}
	fs := &Filesystem{root: root}
	root.fs = fs

	d := &dinode{Version: 0, Format: diFormatLocal, Mode: modeReg}
	ino := newTestInode(fs, d, make([]byte, dinodeCoreLenV2))

	if _, err := ino.LinkInode(); !errors.Is(err, ErrNotASymlink) {
		t.Fatalf("error = %v, want ErrNotASymlink", err)
	}
}

func TestLinkInodeRelativeNoParent(t *testing.T) {
	root := &Inode{inum: 8}
	fs := &Filesystem{root: root}
	root.fs = fs

	target := "test_file"
	raw := make([]byte, dinodeCoreLenV2+len(target))
	copy(raw[dinodeCoreLenV2:], target)

	d := &dinode{Version: 0, Format: diFormatLocal, Mode: modeLnk, Size: uint64(len(target))}
	ino := newTestInode(fs, d, raw) // parent left nil, and ino != fs.root

	if _, err := ino.LinkInode(); !errors.Is(err, ErrSymlinkUnavailable) {
		t.Fatalf("error = %v, want ErrSymlinkUnavailable", err)
	}
}
