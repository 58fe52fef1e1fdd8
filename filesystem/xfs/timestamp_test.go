package xfs

import "testing"

func TestDecodeLegacyTimestamp(t *testing.T) {
	got := decodeLegacyTimestamp(1650637449, 264560000)
	want := int64(1650637449)*1_000_000_000 + 264560000
	if got != want {
		t.Fatalf("decodeLegacyTimestamp = %d, want %d", got, want)
	}
}

func TestDecodeBigtimeTimestamp(t *testing.T) {
	// raw = epoch_ns - bigtimeEpochOffset*1e9, derived from the documented
	// decode formula run in reverse.
	const wantEpochNs = int64(1650637449264560000)
	raw := uint64(wantEpochNs - bigtimeEpochOffset*1_000_000_000)

	got := decodeBigtimeTimestamp(raw)
	if got != wantEpochNs {
		t.Fatalf("decodeBigtimeTimestamp(%d) = %d, want %d", raw, got, wantEpochNs)
	}
}

func TestDecodeBigtimeTimestampAgreesWithLegacyAtUnixEpoch(t *testing.T) {
	// At the Unix epoch, the legacy and bigtime encodings should produce
	// the same nanosecond value.
	raw := uint64(0 - bigtimeEpochOffset*1_000_000_000)
	bigtimeNs := decodeBigtimeTimestamp(raw)
	legacyNs := decodeLegacyTimestamp(0, 0)
	if bigtimeNs != legacyNs {
		t.Fatalf("bigtime/legacy disagree at Unix epoch: %d vs %d", bigtimeNs, legacyNs)
	}
}

func TestNsToTime(t *testing.T) {
	tm := nsToTime(1_000_000_001)
	if tm.Unix() != 1 {
		t.Fatalf("Unix() = %d, want 1", tm.Unix())
	}
	if tm.Nanosecond() != 1 {
		t.Fatalf("Nanosecond() = %d, want 1", tm.Nanosecond())
	}
	if tm.Location().String() != "UTC" {
		t.Fatalf("location = %s, want UTC", tm.Location())
	}
}
