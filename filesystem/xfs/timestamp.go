package xfs

import "time"

// bigtimeEpochOffset is the number of seconds between the bigtime epoch
// (1901-12-13T20:45:52Z) and the Unix epoch: -(1<<31).
const bigtimeEpochOffset = int64(-1) << 31

// decodeLegacyTimestamp interprets a raw xfs_timestamp_t as two big-endian
// 32-bit values (seconds, nanoseconds) since the Unix epoch.
func decodeLegacyTimestamp(sec, nsec uint32) int64 {
	return int64(int32(sec))*1_000_000_000 + int64(nsec)
}

// decodeBigtimeTimestamp interprets a raw xfs_timestamp_t as an unsigned
// 64-bit nanosecond counter since 1901-12-13T20:45:52Z, per SPEC_FULL §4.3:
//
//	sec  = total_ns / 1e9 - 2^31
//	nsec = total_ns % 1e9
//	epoch_ns = sec*1e9 + nsec
func decodeBigtimeTimestamp(raw uint64) int64 {
	sec := int64(raw/1_000_000_000) + bigtimeEpochOffset
	nsec := int64(raw % 1_000_000_000)
	return sec*1_000_000_000 + nsec
}

// nsToTime converts Unix-epoch nanoseconds to a UTC time.Time.
func nsToTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
