// Package tzcore is the public Time API: conversions between Unix
// instants, timezone-qualified wall-clock readings, and the
// (year, month, day, hour, minute, second) components.
//
// Grounded on original_source/libtz.c's tz_time_* / tz_get_date /
// tz_get_hms family, which the teacher TZif package has no equivalent
// for — that package only encodes and decodes the wire structures.
package tzcore

import (
	"github.com/anttisaari/tzcore/internal/calendar"
	"github.com/anttisaari/tzcore/region"
)

// Date is a broken-down calendar date.
type Date = calendar.Date

// HMS is a broken-down time of day.
type HMS = calendar.HMS

// Time is an instant, optionally qualified by a Region. When Tz is nil,
// Time holds a true UTC second count. When Tz is set, Time holds the
// local absolute second count: the UTC instant plus the offset in
// effect at that instant, stored pre-shifted so Date/HMS don't need to
// re-resolve the zone on every read (ToUnixSeconds does resolve it).
//
// A Time borrows its Region; it must not outlive it.
type Time struct {
	time int64
	tz   *region.Region
}

// FromUnix builds a UTC Time from a Unix second count.
func FromUnix(t int64) Time {
	return Time{time: t, tz: nil}
}

// FromComponents builds a Time from broken-down components, interpreted
// as wall-clock time in tz (or UTC, when tz is nil). The result is
// stored without resolving tz's offset; call ToUTC to do that.
func FromComponents(d Date, hms HMS, tz *region.Region) Time {
	return Time{time: calendar.SecondsFromComponents(d, hms), tz: tz}
}

// ToUTC resolves t's zone (if any) and returns the equivalent UTC Time.
func (t Time) ToUTC() Time {
	if t.tz == nil {
		return t
	}
	rec := region.Resolve(t.tz, t.time)
	return Time{time: t.time - rec.UTCOffset, tz: nil}
}

// ToTZ re-expresses t as a local wall-clock reading in target. A nil
// target re-expresses t in UTC.
func (t Time) ToTZ(target *region.Region) Time {
	if t.tz == target {
		return t
	}
	if t.tz != nil {
		t = t.ToUTC()
	}
	if target == nil {
		return t
	}
	rec := region.Resolve(target, t.time)
	return Time{time: t.time + rec.UTCOffset, tz: target}
}

// ToUnixSeconds returns t's Unix second count, resolving its zone first
// if necessary.
func (t Time) ToUnixSeconds() int64 {
	return t.ToUTC().time
}

// Date returns t's broken-down calendar date, read directly off the
// stored (possibly zone-shifted) second count.
func (t Time) Date() Date {
	return calendar.DateFromSeconds(t.time)
}

// HMS returns t's broken-down time of day, read directly off the stored
// (possibly zone-shifted) second count.
func (t Time) HMS() HMS {
	return calendar.HMSFromSeconds(t.time)
}

// Shortname returns the time zone abbreviation in effect at t, or "UTC"
// when t has no zone.
func (t Time) Shortname() string {
	if t.tz == nil {
		return "UTC"
	}
	return region.Resolve(t.tz, t.time).Shortname
}

// IsDST reports whether daylight saving time is in effect at t. A
// UTC-only Time is never in DST.
func (t Time) IsDST() bool {
	if t.tz == nil {
		return false
	}
	return region.Resolve(t.tz, t.time).DST
}
