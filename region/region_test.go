package region

import (
	"testing"

	"github.com/anttisaari/tzcore/internal/calendar"
	"github.com/anttisaari/tzcore/posixtz"
)

func TestResolve_NilRegionIsUTC(t *testing.T) {
	got := Resolve(nil, 1234567890)
	if got.Shortname != "UTC" || got.UTCOffset != 0 || got.DST {
		t.Errorf("Resolve(nil, ...) = %+v, want UTC/0/false", got)
	}
}

func TestResolve_BinarySearchOverExplicitRecords(t *testing.T) {
	r := &Region{
		Name: "Test/Zone",
		Records: []Record{
			{Time: 0, UTCOffset: -28800, Shortname: "PST", DST: false},
			{Time: 1000, UTCOffset: -25200, Shortname: "PDT", DST: true},
			{Time: 2000, UTCOffset: -28800, Shortname: "PST", DST: false},
		},
	}

	tests := []struct {
		tm   int64
		want string
	}{
		{-1, "PST"}, // before first record clamps to record 0
		{0, "PST"},
		{500, "PST"},
		{1000, "PDT"},
		{1500, "PDT"},
		{2000, "PST"},
	}
	for _, tc := range tests {
		got := Resolve(r, tc.tm)
		if got.Shortname != tc.want {
			t.Errorf("Resolve(%d) = %q, want %q", tc.tm, got.Shortname, tc.want)
		}
	}
}

func TestResolve_ProjectsPastLastRecord(t *testing.T) {
	rule, err := posixtz.Parse("PST8PDT,M3.2.0,M11.1.0")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	r := &Region{
		Name: "America/Los_Angeles",
		Records: []Record{
			{Time: 0, UTCOffset: -28800, Shortname: "PST", DST: false},
		},
		Rule: rule,
	}

	// 2025-03-09 12:00:00 UTC is after the 2025 spring-forward instant
	// (2025-03-09 02:00 local standard time, M3.2.0/2:00, offset -28800).
	got := Resolve(r, 1741521600)
	if !got.DST || got.Shortname != "PDT" {
		t.Errorf("Resolve(post-spring-forward) = %+v, want PDT", got)
	}
}

func TestResolve_ProjectsJulianNoLeapRuleInLeapYear(t *testing.T) {
	// J60 never counts Feb 29, so in a leap year it still names March 1.
	rule, err := posixtz.Parse("STD0DST,J60/2,J300/2")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	r := &Region{
		Name: "Test/JulianNoLeap",
		Records: []Record{
			{Time: 0, UTCOffset: 0, Shortname: "STD", DST: false},
		},
		Rule: rule,
	}

	// 2028 is a leap year. J60 never counts Feb 29, so it still names
	// March 1st, which is 60 days (not 59) after Jan 1st in a leap year.
	const secondsPerDay = 86400
	yearStart := calendar.YearToTime(2028)
	wantTransition := yearStart + secondsPerDay*60 + 2*3600 // Mar 1 02:00

	beforeTransition := wantTransition - 1
	atTransition := wantTransition

	got := Resolve(r, beforeTransition)
	if got.DST || got.Shortname != "STD" {
		t.Errorf("Resolve(just before J60 transition) = %+v, want STD", got)
	}

	got = Resolve(r, atTransition)
	if !got.DST || got.Shortname != "DST" {
		t.Errorf("Resolve(at J60 transition) = %+v, want DST", got)
	}
}

func TestResolve_EmptyRecordsUsesRuleDirectly(t *testing.T) {
	rule, err := posixtz.Parse("UTC0")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	r := &Region{Name: "Etc/UTC", Rule: rule}

	got := Resolve(r, 999)
	if got.Shortname != "UTC" || got.UTCOffset != 0 {
		t.Errorf("Resolve(empty records) = %+v, want UTC/0", got)
	}
}
