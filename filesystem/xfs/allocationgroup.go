package xfs

import (
	"fmt"

	"github.com/go-xfs/xfs/backend"
)

// allocation-group sector layout: SB at sector 0, AGF at sector 1 (unused by
// this core), AGI at sector 2.
const (
	agSBSector  = 0
	agAGISector = 2
)

// AllocationGroup is one parsed allocation group: its own superblock and AGI
// copies, decoded from a range-restricted view of the filesystem image, plus
// a bounded cache of inodes read from it.
type AllocationGroup struct {
	xfs *Filesystem
	src backend.Storage
	num uint32

	sb  *superblock
	agi *agi

	cache *inodeLRU
}

// openAllocationGroup validates and decodes allocation group agNum's own
// superblock and AGI copies from a substream covering exactly that AG's
// byte range, mirroring the per-AG re-validation the original AG reader
// performs (each AG, including AG 0, owns an independent SB+AGI copy).
func openAllocationGroup(fs *Filesystem, agNum uint32, src backend.Storage, cacheSize int) (*AllocationGroup, error) {
	sectSize := int64(fs.sb.Sectsize)

	sbBuf := make([]byte, superblockSize)
	if _, err := src.ReadAt(sbBuf, agSBSector*sectSize); err != nil {
		return nil, fmt.Errorf("allocation group %d: reading superblock: %w", agNum, err)
	}
	sb, err := superblockFromBytes(sbBuf)
	if err != nil {
		return nil, fmt.Errorf("allocation group %d: %w", agNum, err)
	}

	agiBuf := make([]byte, int(sb.Sectsize))
	if _, err := src.ReadAt(agiBuf, agAGISector*sectSize); err != nil {
		return nil, fmt.Errorf("allocation group %d: reading agi: %w", agNum, err)
	}
	agiHdr, err := agiFromBytes(agiBuf)
	if err != nil {
		return nil, fmt.Errorf("allocation group %d: %w", agNum, err)
	}
	if agiHdr.Seqno != agNum {
		return nil, fmt.Errorf("allocation group %d: agi seqno mismatch (got %d): %w", agNum, agiHdr.Seqno, ErrInvalidImage)
	}

	return &AllocationGroup{
		xfs:   fs,
		src:   src,
		num:   agNum,
		sb:    sb,
		agi:   agiHdr,
		cache: newInodeLRU(cacheSize),
	}, nil
}

// Number is this allocation group's zero-based sequence number.
func (ag *AllocationGroup) Number() uint32 { return ag.num }

// getInode reads and decodes the inode at relative offset rel within this
// allocation group, consulting and populating the group's LRU cache.
// filename and parent are attached to the returned Inode for directory
// listings and "../"-relative symlink resolution; filetype, when non-nil,
// seeds the Inode's cached directory-entry file type before the dinode is
// known to need it.
func (ag *AllocationGroup) getInode(rel uint64, filename string, filetype *uint8, parent *Inode) (*Inode, error) {
	if cached, ok := ag.cache.get(rel); ok {
		return cached, nil
	}

	off := int64(rel) * int64(ag.sb.Inodesize)
	buf := make([]byte, ag.sb.Inodesize)
	if _, err := ag.src.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("allocation group %d: reading inode %d: %w", ag.num, rel, err)
	}
	d, err := dinodeFromBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("allocation group %d: inode %d: %w", ag.num, rel, err)
	}

	inum := composeInum(uint64(ag.num), rel, ag.xfs.inumBits)
	inode := &Inode{
		fs:       ag.xfs,
		ag:       ag,
		inum:     inum,
		raw:      buf,
		dinode:   d,
		name:     filename,
		parent:   parent,
		filetype: filetype,
	}
	ag.cache.put(rel, inode)
	return inode, nil
}

// WalkInodeRecords returns every inobt record for this allocation group's
// inode B+tree, walking it the same way the per-AG extent and directory
// B+trees are walked.
func (ag *AllocationGroup) WalkInodeRecords() ([]inobtRecord, error) {
	if ag.agi.Level == 0 && ag.agi.Count == 0 {
		return nil, nil
	}
	leaves, err := ag.xfs.walkSmallTree(ag.agi.Root, ag.num, 16, inobtMagics)
	if err != nil {
		return nil, fmt.Errorf("allocation group %d: walking inobt: %w", ag.num, err)
	}
	out := make([]inobtRecord, len(leaves))
	for i, b := range leaves {
		out[i] = inobtRecordFromBytes(b)
	}
	return out, nil
}
