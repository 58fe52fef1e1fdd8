// Package xfs implements a read-only parser for the on-disk XFS filesystem
// format: superblock, allocation groups, the inode and block B+trees, and
// directory/symlink resolution, layered over a backend.Storage byte source.
package xfs

import (
	"fmt"
	"strings"

	"github.com/go-xfs/xfs/backend"
	"github.com/google/uuid"
)

// Filesystem is an opened, read-only view of an XFS image.
type Filesystem struct {
	src backend.Storage

	sb *superblock
	ag map[uint32]*AllocationGroup

	inumBits uint
	agSize   int64

	hasCRC     bool
	hasFType   bool
	hasBigtime bool
	hasNrext64 bool

	opts options

	root *Inode
}

// Open validates the superblock at the start of src and constructs a
// Filesystem ready to resolve inodes and paths. Allocation groups beyond
// the first are opened lazily by GetAllocationGroup.
func Open(src backend.Storage, opts ...Option) (*Filesystem, error) {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}

	sbBuf := make([]byte, superblockSize)
	if _, err := src.ReadAt(sbBuf, 0); err != nil {
		return nil, fmt.Errorf("xfs: reading superblock: %w", err)
	}
	sb, err := superblockFromBytes(sbBuf)
	if err != nil {
		return nil, fmt.Errorf("xfs: %w", err)
	}

	fs := &Filesystem{
		src:        src,
		sb:         sb,
		ag:         make(map[uint32]*AllocationGroup),
		inumBits:   uint(sb.Agblklog) + uint(sb.Inopblog),
		agSize:     int64(sb.Agblocks) * int64(sb.Blocksize),
		hasCRC:     sb.hasCRC(),
		hasFType:   sb.hasFType(),
		hasBigtime: sb.hasBigtime(),
		hasNrext64: sb.hasNrext64(),
		opts:       o,
	}

	root, err := fs.GetInode(sb.Rootino)
	if err != nil {
		return nil, fmt.Errorf("xfs: reading root inode: %w", err)
	}
	root.name = "/"
	fs.root = root

	return fs, nil
}

// GetAllocationGroup returns the agNum'th allocation group, opening and
// validating it on first access.
func (fs *Filesystem) GetAllocationGroup(agNum uint32) (*AllocationGroup, error) {
	if ag, ok := fs.ag[agNum]; ok {
		return ag, nil
	}
	if agNum >= fs.sb.Agcount {
		return nil, fmt.Errorf("xfs: allocation group %d out of range (%d total): %w", agNum, fs.sb.Agcount, ErrInvalidArgument)
	}

	sub := backend.Sub(fs.src, int64(agNum)*fs.agSize, fs.agSize)
	ag, err := openAllocationGroup(fs, agNum, sub, fs.opts.inodeCacheSize)
	if err != nil {
		return nil, err
	}
	fs.ag[agNum] = ag
	return ag, nil
}

// GetInode resolves an absolute inode number to its decoded Inode, without
// a known name or parent. Use a directory's Listdir/Iterdir entries when a
// name and parent are available, so symlink "../" resolution works.
func (fs *Filesystem) GetInode(absolute uint64) (*Inode, error) {
	return fs.getInode(absolute, "", nil, nil)
}

func (fs *Filesystem) getInode(absolute uint64, name string, filetype *uint8, parent *Inode) (*Inode, error) {
	agNum, rel := splitInum(absolute, fs.inumBits)
	ag, err := fs.GetAllocationGroup(uint32(agNum))
	if err != nil {
		return nil, fmt.Errorf("xfs: resolving inode %d: %w", absolute, err)
	}
	return ag.getInode(rel, name, filetype, parent)
}

// Root is the filesystem's root directory inode.
func (fs *Filesystem) Root() *Inode { return fs.root }

// UUID is the filesystem's volume identifier.
func (fs *Filesystem) UUID() uuid.UUID { return fs.sb.uuid() }

// MetaUUID is the metadata UUID recorded for CRC-enabled (v5) filesystems;
// the zero UUID on older filesystems.
func (fs *Filesystem) MetaUUID() uuid.UUID { return fs.sb.metaUUID() }

// Name is the filesystem label, or "" if unset.
func (fs *Filesystem) Name() string { return fs.sb.label() }

// BlockSize is the filesystem block size in bytes.
func (fs *Filesystem) BlockSize() uint32 { return fs.sb.Blocksize }

// Version is the structural superblock version (1..5).
func (fs *Filesystem) Version() uint16 { return fs.sb.version() }

// Get resolves a slash-separated path from the root, dereferencing any
// symlink encountered for an intermediate path segment but never the final
// segment itself.
func (fs *Filesystem) Get(p string) (*Inode, error) {
	return fs.resolve(p, fs.root)
}

// resolve resolves a slash-separated path starting at node, walking "."
// and ".." against the real parent chain rather than collapsing them
// lexically, since a relative symlink's target is only meaningful against
// the actual directory tree. Used for both Filesystem.Get (rooted at the
// filesystem root) and relative symlink resolution (rooted at the
// symlink's containing directory).
func (fs *Filesystem) resolve(p string, node *Inode) (*Inode, error) {
	p = strings.Trim(p, "/")
	if p == "" {
		return node, nil
	}

	segments := strings.Split(p, "/")
	cur := node
	for i, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if cur != fs.root {
				if cur.parent == nil {
					return nil, fmt.Errorf("xfs: resolving %q: %w", p, ErrSymlinkUnavailable)
				}
				cur = cur.parent
			}
			continue
		}

		entries, err := cur.Listdir()
		if err != nil {
			return nil, fmt.Errorf("xfs: resolving %q: %w", p, err)
		}
		next, ok := entries[seg]
		if !ok {
			return nil, fmt.Errorf("xfs: %q: %w", seg, ErrFileNotFound)
		}

		last := i == len(segments)-1
		for !last && next.IsSymlink() {
			next, err = next.LinkInode()
			if err != nil {
				return nil, fmt.Errorf("xfs: resolving symlink %q: %w", seg, err)
			}
		}
		cur = next
	}
	return cur, nil
}
