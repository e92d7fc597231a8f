// Package calendar implements the proleptic Gregorian calendar arithmetic
// shared by the POSIX TZ recurrence resolver and the Time API: conversions
// between absolute Unix seconds and broken-down (year, month, day, hour,
// minute, second) components, correct across the full signed 64-bit range.
//
// The implementation follows the Go standard library's time package
// internals (also the basis of the teacher's internal/unixtime package),
// extended with the inverse (seconds -> components) direction described in
// this project's original C reference implementation.
package calendar

const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour

	DaysPer400Years = 365*400 + 97
	DaysPer100Years = 365*100 + 24
	DaysPer4Years   = 365*4 + 1
)

// absoluteZeroYear is the year used as the origin of the "absolute"
// timeline: far enough in the past that every representable signed-64-bit
// Unix second maps to a non-negative absolute second count.
const absoluteZeroYear = -292277022399

// unixToInternal shifts a Unix-epoch second count to the "internal" epoch
// (year 1), and internalToAbsolute shifts from there to the absolute
// epoch (absoluteZeroYear). Adding both gives unixToAbsolute, used to
// translate any Unix second into a non-negative absolute second.
const (
	unixToInternal     int64 = (1969*365 + 1969/4 - 1969/100 + 1969/400) * SecondsPerDay
	internalToAbsolute int64 = 9223371966579724800
	unixToAbsolute     int64 = unixToInternal + internalToAbsolute
)

var daysBeforeMonth = [13]int64{
	0,
	31,
	31 + 28,
	31 + 28 + 31,
	31 + 28 + 31 + 30,
	31 + 28 + 31 + 30 + 31,
	31 + 28 + 31 + 30 + 31 + 30,
	31 + 28 + 31 + 30 + 31 + 30 + 31,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30 + 31,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30 + 31 + 30,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30 + 31 + 30 + 31,
}

var daysInMonth = [13]int64{-1, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear reports whether y is a leap year in the proleptic Gregorian
// calendar.
func IsLeapYear(y int64) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// LeapYearsBefore returns the number of leap years strictly before year y.
func LeapYearsBefore(y int64) int64 {
	y--
	floorDiv := func(a, b int64) int64 {
		q := a / b
		if a%b != 0 && a < 0 {
			q--
		}
		return q
	}
	return floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400)
}

func leapYearsBetween(start, end int64) int64 {
	return LeapYearsBefore(end) - LeapYearsBefore(start+1)
}

// YearToTime returns the number of seconds from the Unix epoch to
// January 1st, 00:00:00 of year y.
func YearToTime(y int64) int64 {
	yearGap := y - 1970
	leaps := leapYearsBetween(1970, y)
	return (yearGap*365 + leaps) * SecondsPerDay
}

// MonthToSeconds returns the number of seconds from January 1st to the
// first day of month (0-indexed: 0 == January) in a year whose leap-ness
// is given by isLeap.
func MonthToSeconds(month int64, isLeap bool) int64 {
	t := daysBeforeMonth[month] * SecondsPerDay
	if isLeap && month >= 2 {
		t += SecondsPerDay
	}
	return t
}

// LastDayOfMonth returns the number of days in the given 1-indexed month
// of year y.
func LastDayOfMonth(y, month int64) int64 {
	d := daysInMonth[month]
	if month == 2 && IsLeapYear(y) {
		d++
	}
	return d
}

// Date is a broken-down calendar date.
type Date struct {
	Year  int64
	Month int8
	Day   int8
}

// HMS is a broken-down time of day.
type HMS struct {
	Hours   int8
	Minutes int8
	Seconds int8
}

// DateFromSeconds decomposes a Unix second count into a calendar date,
// using the four-step 400/100/4/1-year quotient decomposition.
func DateFromSeconds(t int64) Date {
	abs := uint64(t + unixToAbsolute)
	d := abs / SecondsPerDay

	n := d / DaysPer400Years
	y := uint64(400) * n
	d -= DaysPer400Years * n

	n = d / DaysPer100Years
	n -= n >> 2
	y += 100 * n
	d -= DaysPer100Years * n

	n = d / DaysPer4Years
	y += 4 * n
	d -= DaysPer4Years * n

	n = d / 365
	n -= n >> 2
	y += n
	d -= 365 * n

	year := int64(y) + absoluteZeroYear
	yearDay := int64(d)

	day := yearDay
	if IsLeapYear(year) {
		switch {
		case day > 31+29-1:
			day--
		case day == 31+29-1:
			return Date{Year: year, Month: 2, Day: 29}
		}
	}

	month := day / 31
	end := daysBeforeMonth[month+1]
	var begin int64
	if day >= end {
		month++
		begin = end
	} else {
		begin = daysBeforeMonth[month]
	}
	month++
	day = day - begin + 1
	return Date{Year: year, Month: int8(month), Day: int8(day)}
}

// HMSFromSeconds extracts the time-of-day component from a Unix second
// count. A negative t still yields a non-negative result: the shift to
// the absolute (non-negative) timeline guarantees this before the
// remainder is taken.
func HMSFromSeconds(t int64) HMS {
	abs := uint64(t + unixToAbsolute)
	secs := int64(abs % SecondsPerDay)

	hours := secs / SecondsPerHour
	secs -= hours * SecondsPerHour

	minutes := secs / SecondsPerMinute
	secs -= minutes * SecondsPerMinute

	return HMS{Hours: int8(hours), Minutes: int8(minutes), Seconds: int8(secs)}
}

// SecondsFromComponents is the inverse of DateFromSeconds/HMSFromSeconds:
// it computes the Unix second count for the given broken-down date and
// time of day.
func SecondsFromComponents(date Date, hms HMS) int64 {
	isLeap := IsLeapYear(date.Year)
	t := YearToTime(date.Year)
	t += MonthToSeconds(int64(date.Month)-1, isLeap)
	t += (int64(date.Day) - 1) * SecondsPerDay
	t += int64(hms.Hours) * SecondsPerHour
	t += int64(hms.Minutes) * SecondsPerMinute
	t += int64(hms.Seconds)
	return t
}

// WeekdayAtMidnight returns the Sunday=0..Saturday=6 weekday of the day
// that begins at absolute Unix second t (which must be a local midnight).
// The epoch (1970-01-01) was a Thursday, hence the +4 day anchor.
func WeekdayAtMidnight(t int64) int64 {
	return mod(t+4*SecondsPerDay, 7*SecondsPerDay) / SecondsPerDay
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
