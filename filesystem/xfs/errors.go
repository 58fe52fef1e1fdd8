package xfs

import "errors"

// Error taxonomy. Each exported error is a sentinel; call sites wrap it with
// fmt.Errorf("...: %w", ErrFoo) to attach positional context, so callers can
// still match with errors.Is.
var (
	// ErrInvalidImage covers SB/AGI magic mismatches, invalid block size,
	// the inprogress flag being set, btree nodes with unexpected magic,
	// dinodes with the wrong magic, and symlink header magic mismatches.
	ErrInvalidImage = errors.New("xfs: invalid image")

	// ErrInvalidArgument covers an AG or inode index out of range.
	ErrInvalidArgument = errors.New("xfs: invalid argument")

	// ErrFileNotFound covers a path segment missing from its parent directory.
	ErrFileNotFound = errors.New("xfs: file not found")

	// ErrNotADirectory covers Listdir/Iterdir on a non-directory inode.
	ErrNotADirectory = errors.New("xfs: not a directory")

	// ErrNotASymlink covers Link/LinkInode on a non-symlink inode.
	ErrNotASymlink = errors.New("xfs: not a symlink")

	// ErrSymlinkUnavailable covers a "../"-relative link on an inode with
	// no recorded parent, e.g. a symlink target outside this filesystem.
	ErrSymlinkUnavailable = errors.New("xfs: symlink target unavailable")

	// ErrUnsupportedDatafork covers Open() on a DEV inode, or any
	// unrecognized di_format.
	ErrUnsupportedDatafork = errors.New("xfs: unsupported datafork")

	// ErrNotImplemented covers a symlink target spanning multiple runs,
	// which only large symlinks on small block sizes can trigger.
	ErrNotImplemented = errors.New("xfs: not implemented")
)
