// Package tzif implements the RFC 8536 TZif wire format: the header,
// version 1 and version 2+ data blocks, and the POSIX-TZ footer that a
// compiled timezone file is made of.
//
// https://datatracker.ietf.org/doc/html/rfc8536
package tzif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// order is the wire byte order: RFC 8536 requires big-endian, two's
// complement multi-octet fields throughout.
var order = binary.BigEndian

// Version identifies a TZif file's format revision. V1 stores 32-bit
// transition times; V2 and above store 64-bit times and add the footer.
type Version byte

func (v Version) String() string {
	switch v {
	case V1:
		return "V1 (0x00)"
	case V2:
		return "V2 (0x32)"
	case V3:
		return "V3 (0x33)"
	case V4:
		return "V4 (0x34)"
	default:
		return fmt.Sprintf("<undefined version (%d)>", v)
	}
}

const (
	// V1 files contain only the version 1 header and data block.
	V1 Version = 0x00
	// V2 files add a second, 64-bit header/data block plus a footer.
	V2 Version = 0x32
	// V3 files are V2 files whose footer TZ string may use the
	// version-3 POSIX extensions (transition times with signed hours
	// beyond 24, as in "M3.4.4/26").
	V3 Version = 0x33
	// V4 is not part of RFC 8536 as of this writing; tzfile(5) documents
	// it as allowing a truncated leading leap-second correction and a
	// table-expiration sentinel as the final leap-second record.
	V4 Version = 0x34
)

// Magic is the four-octet ASCII signature "TZif" that opens every header.
var Magic = [4]byte{'T', 'Z', 'i', 'f'}

// Header precedes each data block (one v1, one v2+). Reserved pads the
// struct to the 20-octet on-wire layout that binary.Write/Read expect;
// the count fields describe the data block that immediately follows.
type Header struct {
	Version  Version
	Reserved [15]byte

	// Isutcnt and Isstdcnt are either 0 or equal to Typecnt.
	Isutcnt  uint32
	Isstdcnt uint32
	// Leapcnt is the number of leap-second records in the data block.
	Leapcnt uint32
	// Timecnt is the number of transition times/types in the data block.
	Timecnt uint32
	// Typecnt is the number of local time type records; must not be 0.
	Typecnt uint32
	// Charcnt is the total size of the designation table, including
	// every entry's trailing NUL; must not be 0.
	Charcnt uint32
}

// Write writes the magic signature followed by the header fields.
func (h Header) Write(w io.Writer) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	return binary.Write(w, order, h)
}

// ReadHeader reads and validates the magic signature, then decodes the
// fixed-size header that follows it.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	magic := make([]byte, len(Magic))
	if err := binary.Read(r, order, &magic); err != nil {
		return h, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return h, fmt.Errorf("invalid magic: %v", magic)
	}
	err := binary.Read(r, order, &h)
	return h, err
}

// readFixedRecords reads n fixed-layout records of type T with
// binary.Read, one at a time. It covers LocalTimeTypeRecord and both
// leap-second record shapes, which all have no variable-length fields.
func readFixedRecords[T any](r io.Reader, n uint32) ([]T, error) {
	if n == 0 {
		return nil, nil
	}
	recs := make([]T, n)
	for i := range recs {
		if err := binary.Read(r, order, &recs[i]); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// readBoolFlags reads n one-octet boolean indicators.
func readBoolFlags(r io.Reader, n uint32) ([]bool, error) {
	if n == 0 {
		return nil, nil
	}
	vals := make([]bool, n)
	for i := range vals {
		if err := binary.Read(r, order, &vals[i]); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

// writeBoolFlags writes each indicator as a single octet, in order.
func writeBoolFlags(w io.Writer, vals []bool) error {
	for _, v := range vals {
		if err := binary.Write(w, order, v); err != nil {
			return err
		}
	}
	return nil
}

// wireRecord is satisfied by every fixed-layout record type that knows
// how to serialize itself: LocalTimeTypeRecord and the two leap-second
// record shapes.
type wireRecord interface {
	Write(w io.Writer) error
}

// writeRecords writes each record in order using its own Write method.
func writeRecords[T wireRecord](w io.Writer, recs []T) error {
	for _, r := range recs {
		if err := r.Write(w); err != nil {
			return err
		}
	}
	return nil
}

// V1DataBlock is the data block following the version 1 header: 32-bit
// transition times, one-octet transition type indices, the local time
// type table, the designation string table, leap-second records, and
// the standard/wall and UT/local indicator arrays, in that order.
type V1DataBlock struct {
	// TransitionTimes are 32-bit UNIX leap-time values in strictly
	// ascending order; RFC 8536 recommends none predate -2**59.
	TransitionTimes []int32

	// TransitionTypes indexes LocalTimeTypeRecord per transition time.
	TransitionTypes []uint8

	// LocalTimeTypeRecord holds the distinct offset/DST/designation
	// tuples referenced by TransitionTypes.
	LocalTimeTypeRecord []LocalTimeTypeRecord

	// TimeZoneDesignation is the NUL-terminated designation string
	// table; entries may overlap when one is a suffix of another.
	TimeZoneDesignation []byte

	// LeapSecondRecords lists TAI-UTC corrections in ascending order
	// of occurrence.
	LeapSecondRecords []V1LeapSecondRecord

	// StandardWallIndicators says whether each local time type's
	// transition times were given as standard or wall-clock time.
	StandardWallIndicators []bool

	// UTLocalIndicators says whether each local time type's transition
	// times were given as UT or local time.
	UTLocalIndicators []bool
}

func (b V1DataBlock) Write(w io.Writer) error {
	if err := binary.Write(w, order, b.TransitionTimes); err != nil {
		return err
	}
	if err := binary.Write(w, order, b.TransitionTypes); err != nil {
		return err
	}
	if err := writeRecords(w, b.LocalTimeTypeRecord); err != nil {
		return err
	}
	if _, err := w.Write(b.TimeZoneDesignation); err != nil {
		return err
	}
	if err := writeRecords(w, b.LeapSecondRecords); err != nil {
		return err
	}
	if err := writeBoolFlags(w, b.StandardWallIndicators); err != nil {
		return err
	}
	return writeBoolFlags(w, b.UTLocalIndicators)
}

// ReadV1DataBlock decodes a V1DataBlock whose field sizes are given by
// h's count fields.
func ReadV1DataBlock(r io.Reader, h Header) (V1DataBlock, error) {
	var b V1DataBlock
	var err error

	if h.Timecnt > 0 {
		b.TransitionTimes = make([]int32, h.Timecnt)
		if err = binary.Read(r, order, &b.TransitionTimes); err != nil {
			return b, fmt.Errorf("reading transition times: %w", err)
		}
		b.TransitionTypes = make([]uint8, h.Timecnt)
		if err = binary.Read(r, order, &b.TransitionTypes); err != nil {
			return b, fmt.Errorf("reading transition types: %w", err)
		}
	}
	if b.LocalTimeTypeRecord, err = readFixedRecords[LocalTimeTypeRecord](r, h.Typecnt); err != nil {
		return b, fmt.Errorf("reading local time type record: %w", err)
	}
	if h.Charcnt > 0 {
		b.TimeZoneDesignation = make([]byte, h.Charcnt)
		if _, err = r.Read(b.TimeZoneDesignation); err != nil {
			return b, fmt.Errorf("reading time zone designation: %w", err)
		}
	}
	if b.LeapSecondRecords, err = readFixedRecords[V1LeapSecondRecord](r, h.Leapcnt); err != nil {
		return b, fmt.Errorf("reading leap second record: %w", err)
	}
	if b.StandardWallIndicators, err = readBoolFlags(r, h.Isstdcnt); err != nil {
		return b, fmt.Errorf("reading standard/wall indicator: %w", err)
	}
	if b.UTLocalIndicators, err = readBoolFlags(r, h.Isutcnt); err != nil {
		return b, fmt.Errorf("reading UT/local indicator: %w", err)
	}
	return b, nil
}

// V1LeapSecondRecord is a 32-bit-occurrence leap-second correction, as
// stored in a V1DataBlock.
type V1LeapSecondRecord struct {
	// Occur is the UNIX leap-time value at which Corr takes effect.
	Occur int32
	// Corr is the cumulative TAI-UTC correction from Occur onward.
	Corr int32
}

func (r V1LeapSecondRecord) Write(w io.Writer) error {
	if err := binary.Write(w, order, r.Occur); err != nil {
		return err
	}
	return binary.Write(w, order, r.Corr)
}

// V2DataBlock is the data block following a version 2+ header. It has
// the same layout as V1DataBlock except transition times are 64-bit and
// leap-second occurrences are 64-bit.
type V2DataBlock struct {
	TransitionTimes []int64
	TransitionTypes []uint8

	LocalTimeTypeRecord []LocalTimeTypeRecord
	TimeZoneDesignation []byte

	LeapSecondRecords []V2LeapSecondRecord

	StandardWallIndicators []bool
	UTLocalIndicators      []bool
}

func (b V2DataBlock) Write(w io.Writer) error {
	if err := binary.Write(w, order, b.TransitionTimes); err != nil {
		return err
	}
	if err := binary.Write(w, order, b.TransitionTypes); err != nil {
		return err
	}
	if err := writeRecords(w, b.LocalTimeTypeRecord); err != nil {
		return err
	}
	if _, err := w.Write(b.TimeZoneDesignation); err != nil {
		return err
	}
	if err := writeRecords(w, b.LeapSecondRecords); err != nil {
		return err
	}
	if err := writeBoolFlags(w, b.StandardWallIndicators); err != nil {
		return err
	}
	return writeBoolFlags(w, b.UTLocalIndicators)
}

// ReadV2DataBlock decodes a V2DataBlock whose field sizes are given by
// h's count fields. h.Version must be V2 or later.
func ReadV2DataBlock(r io.Reader, h Header) (V2DataBlock, error) {
	if h.Version < V2 {
		return V2DataBlock{}, fmt.Errorf("invalid header version: %v", h.Version)
	}

	var b V2DataBlock
	var err error

	if h.Timecnt > 0 {
		b.TransitionTimes = make([]int64, h.Timecnt)
		if err = binary.Read(r, order, &b.TransitionTimes); err != nil {
			return b, fmt.Errorf("reading transition times: %w", err)
		}
		b.TransitionTypes = make([]uint8, h.Timecnt)
		if err = binary.Read(r, order, &b.TransitionTypes); err != nil {
			return b, fmt.Errorf("reading transition types: %w", err)
		}
	}
	if b.LocalTimeTypeRecord, err = readFixedRecords[LocalTimeTypeRecord](r, h.Typecnt); err != nil {
		return b, fmt.Errorf("reading local time type record: %w", err)
	}
	if h.Charcnt > 0 {
		b.TimeZoneDesignation = make([]byte, h.Charcnt)
		if _, err = r.Read(b.TimeZoneDesignation); err != nil {
			return b, fmt.Errorf("reading time zone designation: %w", err)
		}
	}
	if b.LeapSecondRecords, err = readFixedRecords[V2LeapSecondRecord](r, h.Leapcnt); err != nil {
		return b, fmt.Errorf("reading leap second record: %w", err)
	}
	if b.StandardWallIndicators, err = readBoolFlags(r, h.Isstdcnt); err != nil {
		return b, fmt.Errorf("reading standard/wall indicator: %w", err)
	}
	if b.UTLocalIndicators, err = readBoolFlags(r, h.Isutcnt); err != nil {
		return b, fmt.Errorf("reading UT/local indicator: %w", err)
	}
	return b, nil
}

// V2LeapSecondRecord is a 64-bit-occurrence leap-second correction, as
// stored in a V2DataBlock.
type V2LeapSecondRecord struct {
	Occur int64
	Corr  int32
}

func (r V2LeapSecondRecord) Write(w io.Writer) error {
	if err := binary.Write(w, order, r.Occur); err != nil {
		return err
	}
	return binary.Write(w, order, r.Corr)
}

// LocalTimeTypeRecord names one local-time regime: an offset from UT,
// whether it's DST, and which designation string describes it.
type LocalTimeTypeRecord struct {
	// Utoff is seconds to add to UT to get local time. Must not be
	// -2**31; RFC 8536 recommends keeping it within [-89999, 93599].
	Utoff int32
	// Dst marks this type as daylight saving time.
	Dst bool
	// Idx is the byte offset of this type's NUL-terminated designation
	// within the data block's designation table.
	Idx uint8
}

func (r LocalTimeTypeRecord) Write(w io.Writer) error {
	if err := binary.Write(w, order, r.Utoff); err != nil {
		return err
	}
	if err := binary.Write(w, order, r.Dst); err != nil {
		return err
	}
	return binary.Write(w, order, r.Idx)
}

// Footer holds the POSIX TZ string that extrapolates local time past
// the last transition in the V2+ data block. An empty string means no
// extrapolation rule is available.
type Footer struct {
	TZString []byte
}

var asciiNewLine = byte(0x0A)

// Write emits the footer as a newline, the TZ string, and a newline.
func (f Footer) Write(w io.Writer) error {
	if _, err := w.Write([]byte{asciiNewLine}); err != nil {
		return err
	}
	if _, err := w.Write(f.TZString); err != nil {
		return err
	}
	_, err := w.Write([]byte{asciiNewLine})
	return err
}

// ReadFooter reads a newline-delimited footer: a leading newline, the
// TZ string, and a trailing newline.
func ReadFooter(r io.Reader) (Footer, error) {
	var f Footer
	buf := make([]byte, 1)
	if _, err := r.Read(buf); err != nil {
		return f, fmt.Errorf("reading newline: %w", err)
	}
	if buf[0] != asciiNewLine {
		return f, fmt.Errorf("expected newline: %v", buf[0])
	}
	var b []byte
	for {
		if _, err := r.Read(buf); err != nil {
			return f, fmt.Errorf("reading TZ string: %w", err)
		}
		if buf[0] == asciiNewLine {
			break
		}
		b = append(b, buf[0])
	}
	f.TZString = b
	return f, nil
}
