package xfs

import (
	"fmt"
)

const (
	sblockHeaderLen    = 16 // xfs_btree_sblock: magic,level,numrecs,leftsib,rightsib
	sblockCRCHeaderLen = 56 // + blkno,lsn,uuid,owner(u32),crc
	lblockHeaderLen    = 24 // xfs_btree_lblock: magic,level,numrecs,leftsib,rightsib
	lblockCRCHeaderLen = 72 // + blkno,lsn,uuid,owner(u64),crc,pad
)

// btreeBlockHeader is the portion of a short- or long-form B+tree block
// header shared by every variant: enough to decide whether to recurse.
type btreeBlockHeader struct {
	Magic   uint32
	Level   uint16
	Numrecs uint16
}

func shortBlockHeaderLen(hasCRC bool) int {
	if hasCRC {
		return sblockCRCHeaderLen
	}
	return sblockHeaderLen
}

func longBlockHeaderLen(hasCRC bool) int {
	if hasCRC {
		return lblockCRCHeaderLen
	}
	return lblockHeaderLen
}

func decodeBlockHeader(b []byte) btreeBlockHeader {
	r := newFieldReader(b)
	h := btreeBlockHeader{}
	h.Magic = r.u32()
	h.Level = r.u16()
	h.Numrecs = r.u16()
	return h
}

func checkMagic(h btreeBlockHeader, allowed []uint32) error {
	if len(allowed) == 0 {
		return nil
	}
	for _, m := range allowed {
		if h.Magic == m {
			return nil
		}
	}
	return fmt.Errorf("btree: node has invalid magic 0x%x: %w", h.Magic, ErrInvalidImage)
}

// readBlockAt reads blockSize bytes at the given absolute filesystem
// block, addressed in units of sb_blocksize, from the Filesystem's shared
// byte source.
func (fs *Filesystem) readBlockAt(absBlock uint64) ([]byte, error) {
	off := int64(absBlock) * int64(fs.sb.Blocksize)
	buf := make([]byte, fs.sb.Blocksize)
	if _, err := fs.src.Seek(off, 0); err != nil {
		return nil, err
	}
	if _, err := readFull(fs.src, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// walkSmallTree walks a short-form B+tree rooted at the AG-relative block
// `block` within allocation group `agNum`, yielding `leafSize`-byte leaf
// records in depth-first left-to-right order. Used for the per-AG inobt
// and finobt.
func (fs *Filesystem) walkSmallTree(block uint32, agNum uint32, leafSize int, allowed []uint32) ([][]byte, error) {
	abs := uint64(agNum)*uint64(fs.sb.Agblocks) + uint64(block)
	buf, err := fs.readBlockAt(abs)
	if err != nil {
		return nil, err
	}
	return fs.walkSmallTreeBlock(buf, agNum, leafSize, allowed)
}

func (fs *Filesystem) walkSmallTreeBlock(buf []byte, agNum uint32, leafSize int, allowed []uint32) ([][]byte, error) {
	h := decodeBlockHeader(buf)
	if err := checkMagic(h, allowed); err != nil {
		return nil, err
	}

	hdrLen := shortBlockHeaderLen(fs.hasCRC)

	if h.Level == 0 {
		return sliceLeafRecords(buf, hdrLen, int(h.Numrecs), leafSize), nil
	}

	maxrecs := (int(fs.sb.Blocksize) - hdrLen) / 8
	ptrOff := hdrLen + maxrecs*4
	var out [][]byte
	for i := 0; i < int(h.Numrecs); i++ {
		off := ptrOff + i*4
		if off+4 > len(buf) {
			return nil, fmt.Errorf("btree: short-form pointer out of range: %w", ErrInvalidImage)
		}
		ptr := beUint32(buf[off : off+4])
		log.WithFields(map[string]interface{}{"ag": agNum, "ptr": ptr}).Debug("xfs: descending short-form btree")

		child, err := fs.walkSmallTree(ptr, agNum, leafSize, allowed)
		if err != nil {
			return nil, err
		}
		out = append(out, child...)
	}
	return out, nil
}

// walkLargeTree walks a long-form B+tree rooted at the absolute
// filesystem block `block`, yielding `leafSize`-byte leaf records in
// depth-first left-to-right order. Used for the bmap (bmbt) tree.
//
// Per SPEC_FULL §4.4/§9, the recursive descent always calls back into this
// same long-form walker.
func (fs *Filesystem) walkLargeTree(block uint64, leafSize int, allowed []uint32) ([][]byte, error) {
	buf, err := fs.readBlockAt(block)
	if err != nil {
		return nil, err
	}
	return fs.walkLargeTreeBlock(buf, leafSize, allowed)
}

func (fs *Filesystem) walkLargeTreeBlock(buf []byte, leafSize int, allowed []uint32) ([][]byte, error) {
	h := decodeBlockHeader(buf)
	if err := checkMagic(h, allowed); err != nil {
		return nil, err
	}

	hdrLen := longBlockHeaderLen(fs.hasCRC)

	if h.Level == 0 {
		return sliceLeafRecords(buf, hdrLen, int(h.Numrecs), leafSize), nil
	}

	maxrecs := (int(fs.sb.Blocksize) - hdrLen) / 16
	ptrOff := hdrLen + maxrecs*8
	var out [][]byte
	for i := 0; i < int(h.Numrecs); i++ {
		off := ptrOff + i*8
		if off+8 > len(buf) {
			return nil, fmt.Errorf("btree: long-form pointer out of range: %w", ErrInvalidImage)
		}
		fsb := beUint64(buf[off : off+8])
		agNum, agBlock := fsbToAG(fsb, uint(fs.sb.Agblklog))
		abs := agNum*uint64(fs.sb.Agblocks) + agBlock
		log.WithField("block", abs).Debug("xfs: descending long-form btree")

		child, err := fs.walkLargeTree(abs, leafSize, allowed)
		if err != nil {
			return nil, err
		}
		out = append(out, child...)
	}
	return out, nil
}

func sliceLeafRecords(buf []byte, start, numrecs, leafSize int) [][]byte {
	out := make([][]byte, 0, numrecs)
	for i := 0; i < numrecs; i++ {
		lo := start + i*leafSize
		hi := lo + leafSize
		if hi > len(buf) {
			break
		}
		out = append(out, buf[lo:hi])
	}
	return out
}
