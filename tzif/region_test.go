package tzif

import (
	"bytes"
	"strings"
	"testing"

	"github.com/anttisaari/tzcore/region"
)

// honoluluFile reproduces RFC 8536 appendix B.2 (Pacific/Honolulu).
func honoluluFile(t *testing.T) []byte {
	t.Helper()

	v1Header := Header{Version: V2, Isutcnt: 6, Isstdcnt: 6, Leapcnt: 0, Timecnt: 7, Typecnt: 6, Charcnt: 20}
	v1Block := V1DataBlock{
		TransitionTimes: []int32{-2147483648, -1157283000, -1155436200, -880198200, -769395600, -765376200, -712150200},
		TransitionTypes: []uint8{1, 2, 1, 3, 4, 1, 5},
		LocalTimeTypeRecord: []LocalTimeTypeRecord{
			{Utoff: -37886, Dst: false, Idx: 0},
			{Utoff: -37800, Dst: false, Idx: 4},
			{Utoff: -34200, Dst: true, Idx: 8},
			{Utoff: -34200, Dst: true, Idx: 12},
			{Utoff: -34200, Dst: true, Idx: 16},
			{Utoff: -36000, Dst: false, Idx: 4},
		},
		TimeZoneDesignation:    []byte(strings.Join([]string{"LMT\x00", "HST\x00", "HDT\x00", "HWT\x00", "HPT\x00"}, "")),
		UTLocalIndicators:      []bool{true, false, false, false, true, false},
		StandardWallIndicators: []bool{true, false, false, false, true, false},
	}
	v2Header := Header{Version: V2, Isutcnt: 6, Isstdcnt: 6, Leapcnt: 0, Timecnt: 7, Typecnt: 6, Charcnt: 20}
	v2Block := V2DataBlock{
		TransitionTimes: []int64{-2334101314, -1157283000, -1155436200, -880198200, -769395600, -765376200, -712150200},
		TransitionTypes: []uint8{1, 2, 1, 3, 4, 1, 5},
		LocalTimeTypeRecord: []LocalTimeTypeRecord{
			{Utoff: -37886, Dst: false, Idx: 0},
			{Utoff: -37800, Dst: false, Idx: 4},
			{Utoff: -34200, Dst: true, Idx: 8},
			{Utoff: -34200, Dst: true, Idx: 12},
			{Utoff: -34200, Dst: true, Idx: 16},
			{Utoff: -36000, Dst: false, Idx: 4},
		},
		TimeZoneDesignation:    []byte(strings.Join([]string{"LMT\x00", "HST\x00", "HDT\x00", "HWT\x00", "HPT\x00"}, "")),
		UTLocalIndicators:      []bool{false, false, false, false, true, false},
		StandardWallIndicators: []bool{false, false, false, false, true, false},
	}
	v2Footer := Footer{TZString: []byte("HST10")}

	f := File{
		Version:  V2,
		V1Header: v1Header,
		V1Data:   v1Block,
		V2Header: v2Header,
		V2Data:   v2Block,
		V2Footer: v2Footer,
	}
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeFromBuffer_Honolulu(t *testing.T) {
	r, err := DecodeFromBuffer(honoluluFile(t), "Pacific/Honolulu")
	if err != nil {
		t.Fatalf("DecodeFromBuffer: %v", err)
	}
	if r == nil {
		t.Fatal("expected non-nil region")
	}
	if len(r.Records) != 7 {
		t.Fatalf("expected 7 records, got %d", len(r.Records))
	}
	if r.Records[0].Shortname != "HST" || r.Records[0].UTCOffset != -37800 {
		t.Fatalf("unexpected first record: %+v", r.Records[0])
	}
	if r.Records[6].Shortname != "HST" || r.Records[6].UTCOffset != -36000 || r.Records[6].DST {
		t.Fatalf("unexpected last record: %+v", r.Records[6])
	}
	if r.Rule.HasDST {
		t.Fatalf("expected no DST in footer rule, got %+v", r.Rule)
	}
	if r.Rule.StdOffset != -36000 {
		t.Fatalf("expected footer offset -36000, got %d", r.Rule.StdOffset)
	}

	// Past the last explicit transition, the resolver must fall back to
	// the footer rule rather than returning the last record by accident.
	rec := region.Resolve(r, -712150200+1)
	if rec.Shortname != "HST" || rec.UTCOffset != -36000 || rec.DST {
		t.Fatalf("unexpected post-transition record: %+v", rec)
	}

	// The instant of the 6th transition resolves to the record that
	// takes effect there (type 1: HST, -37800).
	rec = region.Resolve(r, -765376200)
	if rec.Shortname != "HST" || rec.UTCOffset != -37800 {
		t.Fatalf("unexpected mid-table record: %+v", rec)
	}
}

func TestDecodeFromBuffer_UTCSentinel(t *testing.T) {
	v1Header := Header{Version: V2, Typecnt: 1, Charcnt: 4}
	v1Block := V1DataBlock{
		LocalTimeTypeRecord: []LocalTimeTypeRecord{{Utoff: 0, Dst: false, Idx: 0}},
		TimeZoneDesignation: []byte("UTC\x00"),
	}
	v2Header := Header{Version: V2, Typecnt: 1, Charcnt: 4}
	v2Block := V2DataBlock{
		LocalTimeTypeRecord: []LocalTimeTypeRecord{{Utoff: 0, Dst: false, Idx: 0}},
		TimeZoneDesignation: []byte("UTC\x00"),
	}
	f := File{
		Version:  V2,
		V1Header: v1Header,
		V1Data:   v1Block,
		V2Header: v2Header,
		V2Data:   v2Block,
		V2Footer: Footer{TZString: []byte("UTC0")},
	}
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	r, err := DecodeFromBuffer(buf.Bytes(), "UTC")
	if err != nil {
		t.Fatalf("DecodeFromBuffer: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil (UTC sentinel), got %+v", r)
	}
}

func TestDecodeFromBuffer_RejectsBadUtoff(t *testing.T) {
	v1Header := Header{Version: V2, Typecnt: 1, Charcnt: 4}
	v1Block := V1DataBlock{
		LocalTimeTypeRecord: []LocalTimeTypeRecord{{Utoff: 99999, Dst: false, Idx: 0}},
		TimeZoneDesignation: []byte("XXX\x00"),
	}
	v2Header := Header{Version: V2, Typecnt: 1, Charcnt: 4}
	v2Block := V2DataBlock{
		LocalTimeTypeRecord: []LocalTimeTypeRecord{{Utoff: 99999, Dst: false, Idx: 0}},
		TimeZoneDesignation: []byte("XXX\x00"),
	}
	f := File{
		Version:  V2,
		V1Header: v1Header,
		V1Data:   v1Block,
		V2Header: v2Header,
		V2Data:   v2Block,
		V2Footer: Footer{TZString: []byte("XXX0")},
	}
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := DecodeFromBuffer(buf.Bytes(), "Bad/Zone"); err == nil {
		t.Fatal("expected error for out-of-range utoff")
	}
}
