package tzif

import (
	"bytes"
	"io"

	"darvaza.org/core"

	"github.com/anttisaari/tzcore/posixtz"
	"github.com/anttisaari/tzcore/region"
)

// Decode reads a TZif v2/v3 byte stream from r and assembles a
// *region.Region named regionName. A nil *region.Region with a nil error
// is returned for the UTC sentinel case (a single local time type with a
// zero UT offset): callers treat that as "no region" / UTC, per the
// storage convention documented on region.Region.
//
// This is step 6 ("Assemble the Region") of the decode procedure: the
// header/data-block parsing and structural validation happen first
// (DecodeFile, Validate), then the footer is handed to posixtz.Parse,
// and finally the per-transition records are denormalized from the
// local-time-type table.
func Decode(r io.Reader, regionName string) (*region.Region, error) {
	f, err := DecodeFile(r)
	if err != nil {
		return nil, core.Wrapf(ErrInvalidTZif, "%s: %v", regionName, err)
	}
	return assemble(f, regionName)
}

// DecodeFromBuffer is Decode over an in-memory byte slice.
func DecodeFromBuffer(buf []byte, regionName string) (*region.Region, error) {
	return Decode(bytes.NewReader(buf), regionName)
}

func assemble(f File, regionName string) (*region.Region, error) {
	if f.Version != V2 && f.Version != V3 {
		return nil, core.Wrapf(ErrInvalidTZif, "%s: unsupported version %v", regionName, f.Version)
	}
	if err := Validate(f); err != nil {
		return nil, err
	}

	rule, err := posixtz.Parse(string(f.V2Footer.TZString))
	if err != nil {
		return nil, core.Wrapf(ErrInvalidTZif, "%s: footer: %v", regionName, err)
	}

	ltts := f.V2Data.LocalTimeTypeRecord
	desig := f.V2Data.TimeZoneDesignation

	if len(ltts) == 1 && ltts[0].Utoff == 0 {
		return nil, nil
	}

	records := make([]region.Record, len(f.V2Data.TransitionTimes))
	for i, tt := range f.V2Data.TransitionTimes {
		ltt := ltts[f.V2Data.TransitionTypes[i]]
		records[i] = region.Record{
			Time:      tt,
			UTCOffset: int64(ltt.Utoff),
			Shortname: designation(desig, ltt.Idx),
			DST:       ltt.Dst,
		}
	}

	return &region.Region{
		Name:    regionName,
		Records: records,
		Rule:    rule,
	}, nil
}

// designation reads the NUL-terminated abbreviation string starting at
// idx within the region's abbreviation storage.
func designation(desig []byte, idx uint8) string {
	rest := desig[idx:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		end = len(rest)
	}
	return string(rest[:end])
}
