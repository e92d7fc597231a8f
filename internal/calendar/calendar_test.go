package calendar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int64
		want bool
	}{
		{2000, true},
		{1900, false},
		{2024, true},
		{2023, false},
		{0, true},
		{-4, true},
		{-100, false},
	}
	for _, tc := range tests {
		if got := IsLeapYear(tc.year); got != tc.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", tc.year, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		date Date
		hms  HMS
	}{
		{"epoch", Date{1970, 1, 1}, HMS{0, 0, 0}},
		{"just before epoch", Date{1969, 12, 31}, HMS{23, 59, 59}},
		{"year zero", Date{0, 1, 1}, HMS{0, 0, 0}},
		{"year one", Date{1, 1, 1}, HMS{0, 0, 0}},
		{"leap day", Date{2024, 2, 29}, HMS{12, 30, 45}},
		{"far negative", Date{-10000, 6, 15}, HMS{3, 4, 5}},
		{"far positive", Date{10000, 6, 15}, HMS{3, 4, 5}},
		{"end of non-leap feb", Date{2023, 2, 28}, HMS{0, 0, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			secs := SecondsFromComponents(tc.date, tc.hms)
			gotDate := DateFromSeconds(secs)
			gotHMS := HMSFromSeconds(secs)
			if diff := cmp.Diff(gotDate, tc.date); diff != "" {
				t.Errorf("DateFromSeconds() mismatch (-got +want):\n%s", diff)
			}
			if diff := cmp.Diff(gotHMS, tc.hms); diff != "" {
				t.Errorf("HMSFromSeconds() mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

func TestYearToTime(t *testing.T) {
	if got := YearToTime(1970); got != 0 {
		t.Errorf("YearToTime(1970) = %d, want 0", got)
	}
	if got := YearToTime(1971); got != 365*SecondsPerDay {
		t.Errorf("YearToTime(1971) = %d, want %d", got, 365*SecondsPerDay)
	}
	if got := YearToTime(1973); got != (365*2+366)*SecondsPerDay {
		t.Errorf("YearToTime(1973) = %d, want %d", got, (365*2+366)*SecondsPerDay)
	}
}

func TestWeekdayAtMidnight(t *testing.T) {
	// 1970-01-01 was a Thursday (4).
	if got := WeekdayAtMidnight(0); got != 4 {
		t.Errorf("WeekdayAtMidnight(epoch) = %d, want 4", got)
	}
	// 1970-01-04 was a Sunday (0).
	if got := WeekdayAtMidnight(3 * SecondsPerDay); got != 0 {
		t.Errorf("WeekdayAtMidnight(+3d) = %d, want 0", got)
	}
}
