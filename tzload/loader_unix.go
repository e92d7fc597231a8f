//go:build !windows

package tzload

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"darvaza.org/core"
)

// localtimePath is where POSIX systems keep the active zone, usually a
// symlink into a zoneinfo directory.
const localtimePath = "/etc/localtime"

// bsdZoneinfoDir is consulted on FreeBSD-derived systems that keep
// their own copy of the database outside /usr/share/zoneinfo, per
// original_source/libtz.c's local_tz_name.
const bsdZoneinfoDir = "/var/db/zoneinfo"

func defaultZoneinfoDirs() []string {
	return []string{"/usr/share/zoneinfo", "/usr/share/lib/zoneinfo", bsdZoneinfoDir}
}

// resolveLocalName follows /etc/localtime to its target and strips it
// down to the region name relative to whichever zoneinfo directory
// contains it. Mirrors libtz.c's realpath(...)-then-trim heuristic.
func (l *Loader) resolveLocalName() string {
	target, err := filepath.EvalSymlinks(localtimePath)
	if err != nil {
		return "UTC"
	}

	for _, dir := range l.zoneinfoDirs() {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absDir, target)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		return rel
	}
	return "UTC"
}

// WatchLocal reports the host's local zone name on a channel: once
// immediately, and again every time /etc/localtime changes (e.g. after
// `timedatectl set-timezone`). The channel is closed when ctx is
// canceled or the underlying watch ends.
func (l *Loader) WatchLocal(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, core.Wrapf(ErrIO, "watch local zone: %v", err)
	}
	if err := watcher.Add(filepath.Dir(localtimePath)); err != nil {
		watcher.Close()
		return nil, core.Wrapf(ErrIO, "watch %s: %v", localtimePath, err)
	}

	out := make(chan string, 1)
	out <- l.ResolveLocalName(false)

	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(localtimePath) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				l.debugf("tzload: %s changed (%s)", localtimePath, ev.Op)
				select {
				case out <- l.ResolveLocalName(false):
				case <-ctx.Done():
					return
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}
