package tzcore

import (
	"testing"

	"github.com/anttisaari/tzcore/posixtz"
	"github.com/anttisaari/tzcore/region"
)

func newYorkRegion(t *testing.T) *region.Region {
	t.Helper()
	rule, err := posixtz.Parse("EST5EDT,M3.2.0,M11.1.0")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return &region.Region{
		Name: "America/New_York",
		Records: []region.Record{
			{Time: 0, UTCOffset: -18000, Shortname: "EST", DST: false},
		},
		Rule: rule,
	}
}

func TestFromUnix_IsUTC(t *testing.T) {
	tm := FromUnix(1735707600)
	if tm.Shortname() != "UTC" {
		t.Errorf("Shortname() = %q, want UTC", tm.Shortname())
	}
	if tm.IsDST() {
		t.Errorf("IsDST() = true, want false")
	}
	if got := tm.ToUnixSeconds(); got != 1735707600 {
		t.Errorf("ToUnixSeconds() = %d, want 1735707600", got)
	}
}

func TestToTZ_DST2025SpringForward(t *testing.T) {
	ny := newYorkRegion(t)

	// 2025-03-09 06:59:59 UTC: 01:59:59 EST, just before the jump.
	before := FromUnix(1741503599).ToTZ(ny)
	if before.IsDST() {
		t.Errorf("before transition: IsDST() = true, want false")
	}
	if before.Shortname() != "EST" {
		t.Errorf("before transition: Shortname() = %q, want EST", before.Shortname())
	}

	// 2025-03-09 07:00:00 UTC: 03:00:00 EDT, right after the jump.
	after := FromUnix(1741503600).ToTZ(ny)
	if !after.IsDST() {
		t.Errorf("after transition: IsDST() = false, want true")
	}
	if after.Shortname() != "EDT" {
		t.Errorf("after transition: Shortname() = %q, want EDT", after.Shortname())
	}
}

func TestFromComponents_RoundTripsThroughUTC(t *testing.T) {
	ny := newYorkRegion(t)

	// 2025-01-01 00:00:00 local (EST, -18000) == 2025-01-01 05:00:00 UTC.
	local := FromComponents(Date{Year: 2025, Month: 1, Day: 1}, HMS{}, ny)
	utc := local.ToUTC()

	wantUnix := int64(1735707600)
	if got := utc.ToUnixSeconds(); got != wantUnix {
		t.Errorf("ToUnixSeconds() = %d, want %d", got, wantUnix)
	}

	backToLocal := utc.ToTZ(ny)
	gotDate := backToLocal.Date()
	wantDate := Date{Year: 2025, Month: 1, Day: 1}
	if gotDate != wantDate {
		t.Errorf("Date() = %+v, want %+v", gotDate, wantDate)
	}
}

func TestToTZ_NilTargetIsUTC(t *testing.T) {
	ny := newYorkRegion(t)
	local := FromUnix(1741489200).ToTZ(ny)

	back := local.ToTZ(nil)
	if back.Shortname() != "UTC" {
		t.Errorf("Shortname() = %q, want UTC", back.Shortname())
	}
	if got := back.ToUnixSeconds(); got != 1741489200 {
		t.Errorf("ToUnixSeconds() = %d, want 1741489200", got)
	}
}
