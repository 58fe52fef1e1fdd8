package xfs

import "fmt"

const agiUnlinkedBuckets = 64

// agi is the decoded xfs_agi_t header: per-AG inode allocation metadata.
// The unlinked-inode hash is parsed but never traversed by this core.
type agi struct {
	Magicnum  uint32
	Versionnum uint32
	Seqno      uint32
	Length     uint32
	Count      uint32
	Root       uint32
	Level      uint32
	Freecount  uint32
	Newino     uint32
	Dirino     uint32
	Unlinked   [agiUnlinkedBuckets]uint32
	UUID       [16]byte
	CRC        uint32
	Pad32      uint32
	LSN        uint64
	FreeRoot   uint32
	FreeLevel  uint32
	Iblocks    uint32
	Fblocks    uint32
}

// agiFromBytes decodes a fixed xfs_agi_t from its on-disk big-endian byte
// layout and validates its magic.
func agiFromBytes(b []byte) (*agi, error) {
	r := newFieldReader(b)
	a := &agi{}

	a.Magicnum = r.u32()
	a.Versionnum = r.u32()
	a.Seqno = r.u32()
	a.Length = r.u32()
	a.Count = r.u32()
	a.Root = r.u32()
	a.Level = r.u32()
	a.Freecount = r.u32()
	a.Newino = r.u32()
	a.Dirino = r.u32()
	for i := range a.Unlinked {
		a.Unlinked[i] = r.u32()
	}
	copy(a.UUID[:], r.bytes(16))
	a.CRC = r.u32()
	a.Pad32 = r.u32()
	a.LSN = r.u64()
	a.FreeRoot = r.u32()
	a.FreeLevel = r.u32()
	a.Iblocks = r.u32()
	a.Fblocks = r.u32()

	if err := r.err(); err != nil {
		return nil, fmt.Errorf("agi: %w: %w", err, ErrInvalidImage)
	}
	if a.Magicnum != xfsAGIMagic {
		return nil, fmt.Errorf("agi: magic mismatch (got 0x%x): %w", a.Magicnum, ErrInvalidImage)
	}
	return a, nil
}

// inobtRecord is a decoded xfs_inobt_rec: one chunk of the per-AG inode
// B+tree. Kept per SPEC_FULL §3's supplemented-features note even though
// the directory/extent paths never need it directly.
type inobtRecord struct {
	StartIno  uint32
	Freecount uint32
	Free      uint64
}

func inobtRecordFromBytes(b []byte) inobtRecord {
	r := newFieldReader(b)
	return inobtRecord{
		StartIno:  r.u32(),
		Freecount: r.u32(),
		Free:      r.u64(),
	}
}
