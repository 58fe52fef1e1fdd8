package xfs

import (
	"fmt"
	"io"
	"strings"
)

// dsymlinkHdrLen is sizeof(xfs_dsymlink_hdr): the header v5 filesystems
// prefix to a non-inline symlink target.
const dsymlinkHdrLen = 56

const maxSymlinkLen = 1024

// Link returns the raw symlink target text. Fails with ErrNotASymlink if
// ino is not a symlink.
func (ino *Inode) Link() (string, error) {
	if !ino.IsSymlink() {
		return "", fmt.Errorf("xfs: inode %d: %w", ino.inum, ErrNotASymlink)
	}

	if ino.dinode.Format == diFormatLocal {
		return string(ino.datafork()), nil
	}

	runs, err := ino.dataruns()
	if err != nil {
		return "", fmt.Errorf("xfs: inode %d: symlink runlist: %w", ino.inum, err)
	}
	if len(runs) > 1 {
		return "", fmt.Errorf("xfs: inode %d: symlink target spans multiple runs: %w", ino.inum, ErrNotImplemented)
	}

	if ino.fs.hasCRC {
		return ino.readV5SymlinkTarget(runs)
	}
	return ino.readV4SymlinkTarget(runs)
}

func (ino *Inode) readV5SymlinkTarget(runs []Run) (string, error) {
	r := newRunlistReader(ino.fs, runs, int64(dsymlinkHdrLen+ino.dinode.Size))
	hdr := make([]byte, dsymlinkHdrLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return "", fmt.Errorf("xfs: inode %d: reading symlink header: %w", ino.inum, err)
	}
	if beUint32(hdr[0:4]) != symlinkMagic {
		return "", fmt.Errorf("xfs: inode %d: symlink header magic mismatch: %w", ino.inum, ErrInvalidImage)
	}
	slBytes := beUint32(hdr[8:12])
	if slBytes > maxSymlinkLen {
		return "", fmt.Errorf("xfs: inode %d: symlink target too long (%d): %w", ino.inum, slBytes, ErrInvalidImage)
	}

	target := make([]byte, slBytes)
	if _, err := io.ReadFull(r, target); err != nil {
		return "", fmt.Errorf("xfs: inode %d: reading symlink target: %w", ino.inum, err)
	}
	return string(target), nil
}

func (ino *Inode) readV4SymlinkTarget(runs []Run) (string, error) {
	r := newRunlistReader(ino.fs, runs, int64(ino.dinode.Size))
	target := make([]byte, ino.dinode.Size)
	if _, err := io.ReadFull(r, target); err != nil {
		return "", fmt.Errorf("xfs: inode %d: reading symlink target: %w", ino.inum, err)
	}
	return string(target), nil
}

// LinkInode resolves a symlink's target to the Inode it points at: absolute
// targets resolve from the filesystem root, relative targets resolve from
// the symlink's containing directory. Fails with ErrSymlinkUnavailable if
// the target is relative (with or without a "../" prefix) and this Inode
// has no parent recorded.
func (ino *Inode) LinkInode() (*Inode, error) {
	target, err := ino.Link()
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(target, "/") {
		return ino.fs.resolve(target, ino.fs.root)
	}

	if ino.parent == nil {
		return nil, fmt.Errorf("xfs: inode %d: %w", ino.inum, ErrSymlinkUnavailable)
	}
	return ino.fs.resolve(target, ino.parent)
}
