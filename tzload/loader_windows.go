//go:build windows

package tzload

import (
	"context"
	"time"

	"darvaza.org/core"
)

func defaultZoneinfoDirs() []string {
	return nil
}

// windowsZoneNames maps a handful of Windows timezone key names to
// their IANA equivalent, the way original_source/libtz.c's Windows
// branch consults a static CLDR-derived table. Only the identifiers
// most likely to be encountered are listed; anything else falls back
// to UTC rather than guessing.
var windowsZoneNames = map[string]string{
	"Pacific Standard Time":    "America/Los_Angeles",
	"Mountain Standard Time":   "America/Denver",
	"Central Standard Time":    "America/Chicago",
	"Eastern Standard Time":    "America/New_York",
	"GMT Standard Time":        "Europe/London",
	"Romance Standard Time":    "Europe/Paris",
	"W. Europe Standard Time":  "Europe/Berlin",
	"FLE Standard Time":        "Europe/Helsinki",
	"Russian Standard Time":    "Europe/Moscow",
	"China Standard Time":      "Asia/Shanghai",
	"Tokyo Standard Time":      "Asia/Tokyo",
	"AUS Eastern Standard Time": "Australia/Sydney",
}

// resolveLocalName maps time.Local's Windows timezone key name to an
// IANA region name.
func (l *Loader) resolveLocalName() string {
	if iana, ok := windowsZoneNames[time.Local.String()]; ok {
		return iana
	}
	return "UTC"
}

// WatchLocal is not supported on Windows: there is no filesystem
// equivalent of /etc/localtime to watch, and the registry key the
// active zone lives under has no change-notification API this
// package depends on.
func (l *Loader) WatchLocal(context.Context) (<-chan string, error) {
	return nil, core.Wrap(ErrIO, "WatchLocal is not supported on windows")
}
