package tzload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anttisaari/tzcore/tzc"
)

// writeZone compiles a minimal fixed-offset zone and writes it under
// dir/name, creating any intermediate directories name implies (e.g.
// "Europe/Helsinki").
func writeZone(t *testing.T, dir, name string) {
	t.Helper()

	compiled, err := tzc.CompileBytes([]byte("Zone\t" + name + "\t2:00\t-\tEET\n"))
	if err != nil {
		t.Fatalf("CompileBytes: %v", err)
	}
	buf, ok := compiled[name]
	if !ok {
		t.Fatalf("missing compiled zone %s", name)
	}

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoader_LoadByName(t *testing.T) {
	dir := t.TempDir()
	writeZone(t, dir, "Europe/Helsinki")

	l := &Loader{Dir: dir}
	r, err := l.LoadByName("Europe/Helsinki")
	if err != nil {
		t.Fatalf("LoadByName: %v", err)
	}
	if r == nil {
		t.Fatal("expected non-nil region")
	}
	if r.Name != "Europe/Helsinki" {
		t.Fatalf("unexpected region name: %s", r.Name)
	}
}

func TestLoader_LoadByName_UTCSentinel(t *testing.T) {
	l := &Loader{Dir: t.TempDir()}
	r, err := l.LoadByName("UTC")
	if err != nil {
		t.Fatalf("LoadByName: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil region for UTC, got %+v", r)
	}
}

func TestLoader_LoadByName_NotFound(t *testing.T) {
	l := &Loader{Dir: t.TempDir()}
	if _, err := l.LoadByName("Nowhere/Imaginary"); err == nil {
		t.Fatal("expected error for missing region")
	}
}

func TestLoader_NilSafe(t *testing.T) {
	var l *Loader
	if _, err := l.LoadByName("Nowhere/Imaginary"); err == nil {
		t.Fatal("expected error for missing region")
	}
	if name := l.ResolveLocalName(false); name == "" {
		t.Fatal("expected a non-empty fallback name")
	}
}

func TestLoader_ResolveLocalName_EnvOverride(t *testing.T) {
	l := &Loader{}

	t.Setenv("TZ", "Europe/Helsinki")
	if got := l.ResolveLocalName(true); got != "Europe/Helsinki" {
		t.Fatalf("expected Europe/Helsinki, got %s", got)
	}

	t.Setenv("TZ", ":Europe/Helsinki")
	if got := l.ResolveLocalName(true); got != "Europe/Helsinki" {
		t.Fatalf("expected leading ':' stripped, got %s", got)
	}

	t.Setenv("TZ", "")
	if got := l.ResolveLocalName(true); got != "UTC" {
		t.Fatalf("expected UTC for empty TZ, got %s", got)
	}
}
