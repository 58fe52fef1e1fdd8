package xfs

import "fmt"

// bmbtRootHeaderLen is the size of an embedded bmap B+tree root (xfs_bmdr_block):
// just bb_level and bb_numrecs, no magic or sibling pointers since the root
// lives inside the inode fork rather than in its own disk block.
const bmbtRootHeaderLen = 4

// datafork returns the raw bytes of ino's data fork: from the end of the
// dinode header up to the attribute fork (if any) or the end of the inode.
func (ino *Inode) datafork() []byte {
	start := ino.dinode.coreLen()
	end := len(ino.raw)
	if ino.dinode.Forkoff != 0 {
		end = start + int(ino.dinode.Forkoff)*8
	}
	// A LOCAL-format fork's content is exactly di_size bytes; anything
	// beyond that, up to the attribute fork or the end of the inode, is
	// unused literal-area padding.
	if ino.dinode.Format == diFormatLocal {
		if localEnd := start + int(ino.dinode.Size); localEnd < end {
			end = localEnd
		}
	}
	if start > len(ino.raw) {
		return nil
	}
	if end > len(ino.raw) {
		end = len(ino.raw)
	}
	return ino.raw[start:end]
}

// attrfork returns the raw bytes of ino's attribute fork, or nil if none is
// present (forkoff == 0).
func (ino *Inode) attrfork() []byte {
	if ino.dinode.Forkoff == 0 {
		return nil
	}
	start := ino.dinode.coreLen() + int(ino.dinode.Forkoff)*8
	if start >= len(ino.raw) {
		return nil
	}
	return ino.raw[start:]
}

// dataExtents returns the data fork's extent records, decoded from either
// the inline EXTENTS list or the BTREE-format fork (walking the full bmap
// B+tree rooted at the embedded bmdr block), in on-disk order. The records
// are not sorted here, and holes are not represented; dataruns inserts the
// sparse runs.
func (ino *Inode) dataExtents() ([]extentRecord, error) {
	switch ino.dinode.Format {
	case diFormatExtents:
		return decodeExtentList(ino.datafork(), ino.dinode.dataExtents())
	case diFormatBtree:
		recs, err := ino.walkBmbt(ino.datafork())
		if err != nil {
			return nil, fmt.Errorf("xfs: inode %d: %w", ino.inum, err)
		}
		return recs, nil
	default:
		return nil, fmt.Errorf("xfs: inode %d: datafork format %s: %w", ino.inum, ino.dinode.Format, ErrUnsupportedDatafork)
	}
}

func decodeExtentList(fork []byte, count uint64) ([]extentRecord, error) {
	out := make([]extentRecord, 0, count)
	for i := uint64(0); i < count; i++ {
		off := int(i) * 16
		if off+16 > len(fork) {
			return nil, fmt.Errorf("xfs: extent record %d out of range: %w", i, ErrInvalidImage)
		}
		l0 := beUint64(fork[off : off+8])
		l1 := beUint64(fork[off+8 : off+16])
		out = append(out, decodeExtent(l0, l1))
	}
	return out, nil
}

// walkBmbt descends the bmap B+tree whose embedded root occupies fork,
// returning every leaf extent record across the whole tree in logical
// order.
func (ino *Inode) walkBmbt(fork []byte) ([]extentRecord, error) {
	if len(fork) < bmbtRootHeaderLen {
		return nil, fmt.Errorf("xfs: bmbt root too short: %w", ErrInvalidImage)
	}
	r := newFieldReader(fork)
	level := r.u16()
	numrecs := r.u16()
	if level == 0 {
		return nil, fmt.Errorf("xfs: bmbt root claims level 0: %w", ErrInvalidImage)
	}

	maxrecs := (len(fork) - bmbtRootHeaderLen) / 16
	ptrOff := bmbtRootHeaderLen + maxrecs*8

	var out []extentRecord
	for i := 0; i < int(numrecs); i++ {
		off := ptrOff + i*8
		if off+8 > len(fork) {
			return nil, fmt.Errorf("xfs: bmbt root pointer out of range: %w", ErrInvalidImage)
		}
		fsb := beUint64(fork[off : off+8])
		agNum, agBlock := fsbToAG(fsb, uint(ino.fs.sb.Agblklog))
		abs := agNum*uint64(ino.fs.sb.Agblocks) + agBlock

		leaves, err := ino.fs.walkLargeTree(abs, 16, bmapMagics)
		if err != nil {
			return nil, fmt.Errorf("xfs: walking bmbt: %w", err)
		}
		for _, b := range leaves {
			l0 := beUint64(b[0:8])
			l1 := beUint64(b[8:16])
			out = append(out, decodeExtent(l0, l1))
		}
	}
	return out, nil
}

// dataruns converts ino's extent records into a run list covering every
// logical block up to ceil(Size/BlockSize), inserting explicit sparse runs
// for any unwritten gap between recorded extents and for any trailing hole.
// Each extent's fsb is converted from its packed (agno|agbno) form to an
// absolute block number (agno*sb_agblocks+agbno) before being stored in the
// run, since every consumer of Run.Block addresses the byte source directly.
func (ino *Inode) dataruns() ([]Run, error) {
	extents, err := ino.dataExtents()
	if err != nil {
		return nil, err
	}

	blockSize := uint64(ino.fs.sb.Blocksize)
	totalBlocks := (ino.dinode.Size + blockSize - 1) / blockSize

	runs := make([]Run, 0, len(extents)+1)
	var cursor uint64
	for _, e := range extents {
		if e.Offset > cursor {
			runs = append(runs, Run{Length: e.Offset - cursor, Sparse: true})
		}
		agNum, agBlock := fsbToAG(e.Block, uint(ino.fs.sb.Agblklog))
		block := agNum*uint64(ino.fs.sb.Agblocks) + agBlock
		runs = append(runs, Run{Block: block, Length: e.Count})
		cursor = e.Offset + e.Count
	}
	if cursor < totalBlocks {
		runs = append(runs, Run{Length: totalBlocks - cursor, Sparse: true})
	}
	return runs, nil
}
