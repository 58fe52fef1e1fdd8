package xfs

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

const (
	xfsSBMagic  uint32 = 0x58465342 // "XFSB"
	xfsAGIMagic uint32 = 0x58414749 // "XAGI"

	sbVersionNumBits uint16 = 0x000f

	sbFeatIncompatFType    uint32 = 1 << 0
	sbFeatIncompatBigtime  uint32 = 1 << 3
	sbFeatIncompatNrext64  uint32 = 1 << 5
	sbVersion2FType        uint32 = 0x00000200
	sbLabelMax                    = 12
	superblockSize                = 264
)

// superblock is the decoded xfs_sb_t. Field names follow the on-disk
// structure names closely (the sb_ prefix dropped, first letter
// capitalized) rather than Go conventions for acronyms, so the mapping to
// the format documentation stays obvious.
type superblock struct {
	Magicnum  uint32
	Blocksize uint32
	Dblocks   uint64
	Rblocks   uint64
	Rextents  uint64
	UUID      [16]byte
	Logstart  uint64
	Rootino   uint64
	Rbmino    uint64
	Rsumino   uint64
	Rextsize  uint32
	Agblocks  uint32
	Agcount   uint32
	Rbmblocks uint32
	Logblocks uint32
	Versionnum uint16
	Sectsize   uint16
	Inodesize  uint16
	Inopblock  uint16
	Fname      [sbLabelMax]byte
	Blocklog   uint8
	Sectlog    uint8
	Inodelog   uint8
	Inopblog   uint8
	Agblklog   uint8
	Rextslog   uint8
	Inprogress uint8
	ImaxPct    uint8
	Icount     uint64
	Ifree      uint64
	Fdblocks   uint64
	Frextents  uint64
	Uquotino   uint64
	Gquotino   uint64
	Qflags     uint16
	Flags      uint8
	SharedVn   uint8
	Inoalignmt uint32
	Unit       uint32
	Width      uint32
	Dirblklog  uint8
	Logsectlog uint8
	Logsectsize uint16
	Logsunit    uint32
	Features2   uint32
	BadFeatures2 uint32

	// version 5 fields
	FeaturesCompat      uint32
	FeaturesROCompat    uint32
	FeaturesIncompat    uint32
	FeaturesLogIncompat uint32
	CRC                 uint32
	SpinoAlign          uint32
	Pquotino            uint64
	LSN                 int64
	MetaUUID            [16]byte
}

// superblockFromBytes decodes a fixed xfs_sb_t from its on-disk, big-endian
// byte layout and validates the invariants SPEC_FULL §3 requires.
func superblockFromBytes(b []byte) (*superblock, error) {
	if len(b) < superblockSize {
		return nil, fmt.Errorf("superblock: short read (%d bytes): %w", len(b), ErrInvalidImage)
	}

	sb := &superblock{}
	r := newFieldReader(b)

	sb.Magicnum = r.u32()
	sb.Blocksize = r.u32()
	sb.Dblocks = r.u64()
	sb.Rblocks = r.u64()
	sb.Rextents = r.u64()
	copy(sb.UUID[:], r.bytes(16))
	sb.Logstart = r.u64()
	sb.Rootino = r.u64()
	sb.Rbmino = r.u64()
	sb.Rsumino = r.u64()
	sb.Rextsize = r.u32()
	sb.Agblocks = r.u32()
	sb.Agcount = r.u32()
	sb.Rbmblocks = r.u32()
	sb.Logblocks = r.u32()
	sb.Versionnum = r.u16()
	sb.Sectsize = r.u16()
	sb.Inodesize = r.u16()
	sb.Inopblock = r.u16()
	copy(sb.Fname[:], r.bytes(sbLabelMax))
	sb.Blocklog = r.u8()
	sb.Sectlog = r.u8()
	sb.Inodelog = r.u8()
	sb.Inopblog = r.u8()
	sb.Agblklog = r.u8()
	sb.Rextslog = r.u8()
	sb.Inprogress = r.u8()
	sb.ImaxPct = r.u8()
	sb.Icount = r.u64()
	sb.Ifree = r.u64()
	sb.Fdblocks = r.u64()
	sb.Frextents = r.u64()
	sb.Uquotino = r.u64()
	sb.Gquotino = r.u64()
	sb.Qflags = r.u16()
	sb.Flags = r.u8()
	sb.SharedVn = r.u8()
	sb.Inoalignmt = r.u32()
	sb.Unit = r.u32()
	sb.Width = r.u32()
	sb.Dirblklog = r.u8()
	sb.Logsectlog = r.u8()
	sb.Logsectsize = r.u16()
	sb.Logsunit = r.u32()
	sb.Features2 = r.u32()
	sb.BadFeatures2 = r.u32()

	sb.FeaturesCompat = r.u32()
	sb.FeaturesROCompat = r.u32()
	sb.FeaturesIncompat = r.u32()
	sb.FeaturesLogIncompat = r.u32()
	sb.CRC = r.u32()
	sb.SpinoAlign = r.u32()
	sb.Pquotino = r.u64()
	sb.LSN = int64(r.u64())
	copy(sb.MetaUUID[:], r.bytes(16))

	if err := r.err(); err != nil {
		return nil, fmt.Errorf("superblock: %w: %w", err, ErrInvalidImage)
	}

	if sb.Magicnum != xfsSBMagic {
		return nil, fmt.Errorf("superblock: magic mismatch (got 0x%x): %w", sb.Magicnum, ErrInvalidImage)
	}
	if sb.Blocksize == 0 || sb.Blocksize%512 != 0 {
		return nil, fmt.Errorf("superblock: invalid block size %d: %w", sb.Blocksize, ErrInvalidImage)
	}
	if sb.Inprogress != 0 {
		return nil, fmt.Errorf("superblock: mkfs in progress: %w", ErrInvalidImage)
	}
	version := sb.Versionnum & sbVersionNumBits
	if version > 5 {
		return nil, fmt.Errorf("superblock: unsupported version %d: %w", version, ErrInvalidImage)
	}

	return sb, nil
}

// version returns the structural superblock version (low 4 bits of
// sb_versionnum): 1..5.
func (sb *superblock) version() uint16 {
	return sb.Versionnum & sbVersionNumBits
}

func (sb *superblock) hasCRC() bool {
	return sb.version() == 5
}

func (sb *superblock) hasFType() bool {
	return (sb.version() == 5 && sb.FeaturesIncompat&sbFeatIncompatFType != 0) ||
		sb.Features2&sbVersion2FType != 0
}

func (sb *superblock) hasBigtime() bool {
	return sb.version() == 5 && sb.FeaturesIncompat&sbFeatIncompatBigtime != 0
}

func (sb *superblock) hasNrext64() bool {
	return sb.version() == 5 && sb.FeaturesIncompat&sbFeatIncompatNrext64 != 0
}

func (sb *superblock) label() string {
	n := 0
	for n < len(sb.Fname) && sb.Fname[n] != 0 {
		n++
	}
	return string(sb.Fname[:n])
}

func (sb *superblock) uuid() uuid.UUID {
	u, _ := uuid.FromBytes(sb.UUID[:])
	return u
}

func (sb *superblock) metaUUID() uuid.UUID {
	u, _ := uuid.FromBytes(sb.MetaUUID[:])
	return u
}

// fieldReader walks a byte buffer and decodes fixed-width big-endian fields
// in sequence, the same left-to-right style the dinode/AGI/btree decoders
// use. A short read is latched and reported once via err(), so callers
// don't need to check after every field.
type fieldReader struct {
	b      []byte
	pos    int
	failed bool
}

func newFieldReader(b []byte) *fieldReader {
	return &fieldReader{b: b}
}

func (r *fieldReader) bytes(n int) []byte {
	if r.failed || r.pos+n > len(r.b) {
		r.failed = true
		return make([]byte, n)
	}
	out := r.b[r.pos : r.pos+n]
	r.pos += n
	return out
}

func (r *fieldReader) u8() uint8 {
	return r.bytes(1)[0]
}

func (r *fieldReader) u16() uint16 {
	return binary.BigEndian.Uint16(r.bytes(2))
}

func (r *fieldReader) u32() uint32 {
	return binary.BigEndian.Uint32(r.bytes(4))
}

func (r *fieldReader) u64() uint64 {
	return binary.BigEndian.Uint64(r.bytes(8))
}

func (r *fieldReader) seek(pos int) {
	r.pos = pos
}

func (r *fieldReader) err() error {
	if r.failed {
		return fmt.Errorf("short buffer (%d bytes)", len(r.b))
	}
	return nil
}
