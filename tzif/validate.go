package tzif

import (
	"errors"
	"fmt"

	"darvaza.org/core"
)

// ErrInvalidTZif is the sentinel wrapped around every error Validate
// reports, so callers can test for it with errors.Is regardless of which
// specific check failed.
var ErrInvalidTZif = core.Wrap(core.ErrInvalid, "invalid tzif data")

// minUtoff and maxUtoff bound a local-time-type's UT offset per RFC 8536
// section 3.2: from -24:59:59 through +25:59:59, both ends included.
const (
	minUtoff = -89999
	maxUtoff = 93599
)

// bigBangFloor rejects transition times implausibly far in the past. RFC
// 8536 section 3.2 suggests -2**59 as a sanity floor: well before any
// astronomically plausible instant, but loose enough not to reject real
// TZif data. Retained verbatim; narrower bounds have been observed to
// reject legitimate files.
const bigBangFloor int64 = -(1 << 59)

func Validate(f File) error {
	var errs []error
	if f.Version != f.V1Header.Version || f.V1Header.Version != f.V2Header.Version {
		errs = append(errs, fmt.Errorf("inconsistent version: file = %v, v1 header = %v, v2 header = %v", f.Version, f.V1Header.Version, f.V2Header.Version))
	}
	if f.Version != V2 && f.Version != V3 {
		errs = append(errs, fmt.Errorf("unsupported version %v: must be V2 or V3", f.Version))
	}

	if err := validateV1(f); err != nil {
		errs = append(errs, err...)
	}

	if f.Version > V1 {
		if err := validateV2(f); err != nil {
			errs = append(errs, err...)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return core.Wrap(ErrInvalidTZif, errors.Join(errs...).Error())
}

func validateV1(f File) []error {
	var (
		err    []error
		data   = f.V1Data
		header = f.V1Header
	)

	// Isutcnt
	if header.Isutcnt != 0 && header.Isutcnt != header.Typecnt {
		err = append(err, fmt.Errorf("invalid v1 isutcnt (%d): must be 0 or equal to typecnt (%d)", header.Isutcnt, header.Typecnt))
	}
	if len(data.UTLocalIndicators) != int(header.Isutcnt) {
		err = append(err, fmt.Errorf("invalid v1 isutcnt: header = %d, data = %d", header.Isutcnt, len(data.UTLocalIndicators)))
	}

	// Isstdcnt
	if header.Isstdcnt != 0 && header.Isstdcnt != header.Typecnt {
		err = append(err, fmt.Errorf("invalid v1 isstdcnt (%d): must be 0 or equal to typecnt (%d)", header.Isstdcnt, header.Typecnt))
	}
	if len(data.StandardWallIndicators) != int(header.Isstdcnt) {
		err = append(err, fmt.Errorf("invalid v1 isstdcnt: header = %d, data = %d", header.Isstdcnt, len(data.StandardWallIndicators)))
	}

	// Leapcnt
	if len(data.LeapSecondRecords) != int(header.Leapcnt) {
		err = append(err, fmt.Errorf("invalid v1 leapcnt: header = %d, data = %d", header.Leapcnt, len(data.LeapSecondRecords)))
	}
	if len(data.LeapSecondRecords) > 0 && data.LeapSecondRecords[0].Occur < 0 {
		err = append(err, fmt.Errorf("invalid v1 leap second records: first occurrence must be non-negative, got %d", data.LeapSecondRecords[0].Occur))
	}
	for i := 1; i < len(data.LeapSecondRecords); i++ {
		if data.LeapSecondRecords[i].Occur <= data.LeapSecondRecords[i-1].Occur {
			err = append(err, fmt.Errorf("invalid v1 leap second records: occurrences must be strictly increasing at index %d", i))
		}
	}

	// Timecnt
	if len(data.TransitionTimes) != int(header.Timecnt) {
		err = append(err, fmt.Errorf("invalid v1 timecnt: header = %d, transition times = %d", header.Timecnt, len(data.TransitionTimes)))
	}
	if times, types := len(data.TransitionTimes), len(data.TransitionTypes); times != types {
		err = append(err, fmt.Errorf("inconsistent v1 transitions: transition times = %d, transition types = %d", times, types))
	}
	for i, idx := range data.TransitionTypes {
		if int(idx) >= int(header.Typecnt) {
			err = append(err, fmt.Errorf("invalid v1 transition type at index %d: %d is not less than typecnt (%d)", i, idx, header.Typecnt))
		}
	}

	// Typecnt
	if header.Typecnt == 0 {
		err = append(err, fmt.Errorf("invalid v1 typecnt: must not be zero"))
	}
	if len(data.LocalTimeTypeRecord) != int(header.Typecnt) {
		err = append(err, fmt.Errorf("invalid v1 typecnt: header = %d, data = %d", header.Typecnt, len(data.LocalTimeTypeRecord)))
	}
	for i, rec := range data.LocalTimeTypeRecord {
		if rec.Utoff < minUtoff || rec.Utoff > maxUtoff {
			err = append(err, fmt.Errorf("invalid v1 local time type record %d: utoff %d out of range [%d,%d]", i, rec.Utoff, minUtoff, maxUtoff))
		}
		if int(rec.Idx) >= int(header.Charcnt) {
			err = append(err, fmt.Errorf("invalid v1 local time type record %d: idx %d is not less than charcnt (%d)", i, rec.Idx, header.Charcnt))
		}
	}

	// Charcnt
	if header.Charcnt == 0 {
		err = append(err, fmt.Errorf("invalid v1 charcnt: must not be zero"))
	}
	if len(data.TimeZoneDesignation) != int(header.Charcnt) {
		err = append(err, fmt.Errorf("invalid v1 charcnt: header = %d, data = %d", header.Charcnt, len(data.TimeZoneDesignation)))
	}
	if header.Charcnt > 0 && data.TimeZoneDesignation[len(data.TimeZoneDesignation)-1] != 0 {
		err = append(err, fmt.Errorf("invalid v1 time zone designations: missing null terminator"))
	}
	return err
}

func validateV2(f File) []error {
	var (
		err    []error
		data   = f.V2Data
		header = f.V2Header
	)

	// Isutcnt
	if header.Isutcnt != 0 && header.Isutcnt != header.Typecnt {
		err = append(err, fmt.Errorf("invalid v2 isutcnt (%d): must be 0 or equal to typecnt (%d)", header.Isutcnt, header.Typecnt))
	}
	if len(data.UTLocalIndicators) != int(header.Isutcnt) {
		err = append(err, fmt.Errorf("invalid v2 isutcnt: header = %d, data = %d", header.Isutcnt, len(data.UTLocalIndicators)))
	}

	// Isstdcnt
	if header.Isstdcnt != 0 && header.Isstdcnt != header.Typecnt {
		err = append(err, fmt.Errorf("invalid v2 isstdcnt (%d): must be 0 or equal to typecnt (%d)", header.Isstdcnt, header.Typecnt))
	}
	if len(data.StandardWallIndicators) != int(header.Isstdcnt) {
		err = append(err, fmt.Errorf("invalid v2 isstdcnt: header = %d, data = %d", header.Isstdcnt, len(data.StandardWallIndicators)))
	}

	// Leapcnt
	if len(data.LeapSecondRecords) != int(header.Leapcnt) {
		err = append(err, fmt.Errorf("invalid v2 leapcnt: header = %d, data = %d", header.Leapcnt, len(data.LeapSecondRecords)))
	}
	if len(data.LeapSecondRecords) > 0 && data.LeapSecondRecords[0].Occur < 0 {
		err = append(err, fmt.Errorf("invalid v2 leap second records: first occurrence must be non-negative, got %d", data.LeapSecondRecords[0].Occur))
	}
	for i := 1; i < len(data.LeapSecondRecords); i++ {
		if data.LeapSecondRecords[i].Occur <= data.LeapSecondRecords[i-1].Occur {
			err = append(err, fmt.Errorf("invalid v2 leap second records: occurrences must be strictly increasing at index %d", i))
		}
	}

	// Timecnt
	if len(data.TransitionTimes) != int(header.Timecnt) {
		err = append(err, fmt.Errorf("invalid v2 timecnt: header = %d, transition times = %d", header.Timecnt, len(data.TransitionTimes)))
	}
	if times, types := len(data.TransitionTimes), len(data.TransitionTypes); times != types {
		err = append(err, fmt.Errorf("inconsistent v2 transitions: transition times = %d, transition types = %d", times, types))
	}
	for i := 1; i < len(data.TransitionTimes); i++ {
		if data.TransitionTimes[i] <= data.TransitionTimes[i-1] {
			err = append(err, fmt.Errorf("invalid v2 transition times: must be strictly increasing at index %d", i))
		}
	}
	for i, tt := range data.TransitionTimes {
		if tt < bigBangFloor {
			err = append(err, fmt.Errorf("invalid v2 transition time at index %d: %d predates the sanity floor (%d)", i, tt, bigBangFloor))
		}
	}
	for i, idx := range data.TransitionTypes {
		if int(idx) >= int(header.Typecnt) {
			err = append(err, fmt.Errorf("invalid v2 transition type at index %d: %d is not less than typecnt (%d)", i, idx, header.Typecnt))
		}
	}

	// Typecnt
	if header.Typecnt == 0 {
		err = append(err, fmt.Errorf("invalid v2 typecnt: must not be zero"))
	}
	if len(data.LocalTimeTypeRecord) != int(header.Typecnt) {
		err = append(err, fmt.Errorf("invalid v2 typecnt: header = %d, data = %d", header.Typecnt, len(data.LocalTimeTypeRecord)))
	}
	for i, rec := range data.LocalTimeTypeRecord {
		if rec.Utoff < minUtoff || rec.Utoff > maxUtoff {
			err = append(err, fmt.Errorf("invalid v2 local time type record %d: utoff %d out of range [%d,%d]", i, rec.Utoff, minUtoff, maxUtoff))
		}
		if int(rec.Idx) >= int(header.Charcnt) {
			err = append(err, fmt.Errorf("invalid v2 local time type record %d: idx %d is not less than charcnt (%d)", i, rec.Idx, header.Charcnt))
		}
	}

	// Charcnt
	if header.Charcnt == 0 {
		err = append(err, fmt.Errorf("invalid v2 charcnt: must not be zero"))
	}
	if len(data.TimeZoneDesignation) != int(header.Charcnt) {
		err = append(err, fmt.Errorf("invalid v2 charcnt: header = %d, data = %d", header.Charcnt, len(data.TimeZoneDesignation)))
	}
	if header.Charcnt > 0 && data.TimeZoneDesignation[len(data.TimeZoneDesignation)-1] != 0 {
		err = append(err, fmt.Errorf("invalid v2 time zone designations: missing null terminator"))
	}
	return err
}
