package xfs

// On-disk magic numbers of the structures listed in SPEC_FULL §6.
const (
	dinodeMagic uint16 = 0x494e // "IN"

	symlinkMagic uint32 = 0x58534c4d // "XSLM"

	ibtMagic    uint32 = 0x49414254 // "IABT"
	ibtCRCMagic uint32 = 0x49414233 // "IAB3"

	bmapMagic    uint32 = 0x424d4150 // "BMAP"
	bmapCRCMagic uint32 = 0x424d4133 // "BMA3"

	dir2BlockMagic uint32 = 0x58443242 // "XD2B"
	dir2DataMagic  uint32 = 0x58443244 // "XD2D"
	dir3BlockMagic uint32 = 0x58444233 // "XDB3"
	dir3DataMagic  uint32 = 0x58444433 // "XDD3"
)

var inobtMagics = []uint32{ibtMagic, ibtCRCMagic}
var bmapMagics = []uint32{bmapMagic, bmapCRCMagic}
