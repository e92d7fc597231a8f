// Package tzload resolves IANA region names, and the host's own "local"
// zone, to decoded Regions, by locating and reading TZif files from the
// system zoneinfo tree. It sits above tzif/region as a collaborator: the
// core decoder never touches the filesystem, and this package never
// touches TZif bytes except through tzif.Decode.
package tzload

import (
	"os"
	"path/filepath"
	"strings"

	"darvaza.org/core"
	"darvaza.org/slog"
	"darvaza.org/slog/handlers/discard"

	"github.com/anttisaari/tzcore/region"
	"github.com/anttisaari/tzcore/tzif"
)

// ErrRegionNotFound is returned when no zoneinfo directory in the
// search path contains a file for the requested region name.
var ErrRegionNotFound = core.Wrap(core.ErrNotExists, "region not found")

// ErrIO is returned for filesystem or watch failures that are not
// "not found" (a zone file that exists but cannot be opened, a watch
// that cannot be set up).
var ErrIO = core.Wrap(core.ErrInvalid, "io error")

// NewDiscardLogger returns a Logger that drops every entry. Useful when
// wiring a Loader into code that expects a non-nil slog.Logger but no
// tracing is wanted; a zero Loader's nil Logger already behaves this
// way, so this constructor only matters when a concrete value is
// required.
func NewDiscardLogger() slog.Logger {
	return discard.New()
}

// Loader resolves region names to decoded Regions. The zero Loader is
// ready to use and every method is safe to call on a nil *Loader.
type Loader struct {
	// Dir overrides the zoneinfo search path. Empty uses $ZONEINFO
	// followed by the platform's default install locations.
	Dir string

	// Logger receives Debug-level tracing of resolution decisions. A
	// nil Logger (the zero value) is silent.
	Logger slog.Logger
}

func (l *Loader) getLogger(level slog.LogLevel) (slog.Logger, bool) {
	if l == nil || l.Logger == nil {
		return nil, false
	}
	return l.Logger.WithLevel(level).WithEnabled()
}

func (l *Loader) debugf(format string, args ...any) {
	if lg, ok := l.getLogger(slog.Debug); ok {
		lg.Printf(format, args...)
	}
}

// zoneinfoDirs lists the directories searched for TZif files, in order.
func (l *Loader) zoneinfoDirs() []string {
	if l != nil && l.Dir != "" {
		return []string{l.Dir}
	}
	var dirs []string
	if env := os.Getenv("ZONEINFO"); env != "" {
		dirs = append(dirs, env)
	}
	return append(dirs, defaultZoneinfoDirs()...)
}

// LoadByName decodes the named IANA region (e.g. "Europe/Helsinki")
// from the first zoneinfo directory that contains it. "UTC" and
// "Etc/UTC" short-circuit to the nil-Region UTC sentinel without
// touching the filesystem.
func (l *Loader) LoadByName(name string) (*region.Region, error) {
	if name == "" || name == "UTC" || name == "Etc/UTC" {
		return nil, nil
	}

	var openErr error
	for _, dir := range l.zoneinfoDirs() {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			if openErr == nil && !os.IsNotExist(err) {
				openErr = err
			}
			continue
		}
		l.debugf("tzload: loading %s from %s", name, path)
		r, err := tzif.Decode(f, name)
		f.Close()
		return r, err
	}

	if openErr != nil {
		return nil, core.Wrapf(ErrIO, "%s: %v", name, openErr)
	}
	return nil, core.Wrapf(ErrRegionNotFound, "%s", name)
}

// ResolveLocalName determines the name of the host's local zone.
// If checkEnv is true and TZ is set in the environment, it takes
// precedence (an empty TZ means UTC; a leading ":" is stripped, per
// POSIX's "':'<pathname>" form). Otherwise the platform-specific
// strategy in loader_unix.go/loader_windows.go applies.
func (l *Loader) ResolveLocalName(checkEnv bool) string {
	if checkEnv {
		if tz, ok := os.LookupEnv("TZ"); ok {
			if tz == "" {
				return "UTC"
			}
			return strings.TrimPrefix(tz, ":")
		}
	}
	return l.resolveLocalName()
}

// LoadLocal resolves and loads the host's local zone in one step.
func (l *Loader) LoadLocal(checkEnv bool) (*region.Region, error) {
	return l.LoadByName(l.ResolveLocalName(checkEnv))
}
