// Package region resolves an instant to the local-time-type record that
// governs it: the fixed historical transition table decoded from a TZif
// file, extended past its last explicit transition by projecting the
// POSIX TZ footer rule forward.
//
// Grounded on original_source/libtz.c's region_get_nearest,
// process_rrule, and trans_date_to_seconds; the teacher TZif package has
// no equivalent (it only encodes/decodes the wire structures).
package region

import (
	"darvaza.org/core"

	"github.com/anttisaari/tzcore/internal/calendar"
	"github.com/anttisaari/tzcore/posixtz"
)

// Record is a denormalized transition: the offset, designation, and DST
// flag that apply from Time onward, until the next Record (or the
// projected rule, past the last Record).
type Record struct {
	Time      int64
	UTCOffset int64
	Shortname string
	DST       bool
}

// Region is a fully assembled timezone: a table of historical
// transitions plus the POSIX rule used to extrapolate future ones. A nil
// *Region denotes UTC, matching the TZif "typecnt==1 && utoff==0"
// sentinel case.
type Region struct {
	Name    string
	Records []Record
	Rule    posixtz.RecurrenceRule
}

// ErrEmpty classifies a non-nil Region with no records and no usable
// fallback rule. No function in this package returns it.
var ErrEmpty = core.Wrap(core.ErrInvalid, "region has no records")

// Resolve returns the Record in effect at instant tm. tm is interpreted
// in whatever timeline the caller's Records were built against: true UTC
// when resolving a UTC-tagged Time, or local absolute seconds (per the
// storage convention documented on Time) when resolving an already-tz'd
// one. A nil Region always resolves to UTC.
func Resolve(r *Region, tm int64) Record {
	if r == nil {
		return Record{Time: tm, UTCOffset: 0, Shortname: "UTC", DST: false}
	}

	n := len(r.Records)
	if n == 0 {
		return projectRule(r.Rule, tm)
	}

	last := r.Records[n-1]
	if tm > last.Time {
		return projectRule(r.Rule, tm)
	}

	left, right := 0, n
	for left < right {
		mid := int(uint(left+right) >> 1)
		if r.Records[mid].Time <= tm {
			left = mid + 1
		} else {
			right = mid
		}
	}

	idx := left - 1
	if idx < 0 {
		idx = 0
	}
	return r.Records[idx]
}

// projectRule extrapolates past the last explicit transition by
// evaluating the POSIX footer rule for the calendar year containing tm.
func projectRule(rule posixtz.RecurrenceRule, tm int64) Record {
	if !rule.HasDST {
		return Record{Time: tm, UTCOffset: int64(rule.StdOffset), Shortname: rule.StdName, DST: false}
	}

	year := calendar.DateFromSeconds(tm).Year
	stdSecs := transitionDateToSeconds(year, rule.StdDate)
	dstSecs := transitionDateToSeconds(year, rule.DSTDate)

	std := Record{Time: stdSecs, UTCOffset: int64(rule.StdOffset), Shortname: rule.StdName, DST: false}
	dst := Record{Time: dstSecs, UTCOffset: int64(rule.DSTOffset), Shortname: rule.DSTName, DST: true}

	first, second := std, dst
	if first.Time > second.Time {
		first, second = second, first
	}
	if tm < first.Time {
		return first
	}
	if tm < second.Time {
		return second
	}
	return first
}

// transitionDateToSeconds evaluates a TransitionDate for the given
// calendar year, returning a local wall-clock second count (not yet
// offset-adjusted) consistent with the storage convention used
// throughout this package.
func transitionDateToSeconds(year int64, td posixtz.TransitionDate) int64 {
	switch td.Kind {
	case posixtz.MonthWeekDay:
		if td.Month < 1 {
			return 0
		}
		isLeap := calendar.IsLeapYear(year)
		t := calendar.YearToTime(year) + calendar.MonthToSeconds(int64(td.Month-1), isLeap)

		weekday := calendar.WeekdayAtMidnight(t)
		days := int64(td.Weekday) - weekday
		if days < 0 {
			days += 7
		}

		monthDayCount := calendar.LastDayOfMonth(year, int64(td.Month))
		week := int64(td.Week)
		if week == 5 && days+28 >= monthDayCount {
			week = 4
		}

		t += calendar.SecondsPerDay*(days+7*(week-1)) + int64(td.Time)
		return t

	case posixtz.JulianNoLeap:
		isLeap := calendar.IsLeapYear(year)
		day := int64(td.Day)
		if td.Day < 60 || !isLeap {
			day--
		}
		return calendar.YearToTime(year) + calendar.SecondsPerDay*day + int64(td.Time)

	case posixtz.JulianLeap:
		return calendar.YearToTime(year) + calendar.SecondsPerDay*int64(td.Day) + int64(td.Time)

	default:
		return 0
	}
}
