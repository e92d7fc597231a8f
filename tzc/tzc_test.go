package tzc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/anttisaari/tzcore/tzif"
)

type testCase struct {
	Name  string
	Input []byte
	Want  map[string][]byte
}

func loadTestCases(t *testing.T) []testCase {
	t.Helper()

	var cases []testCase

	inputFiles, err := filepath.Glob("testdata/*.tzdata")
	if err != nil {
		t.Fatal(err)
	}

	for _, in := range inputFiles {
		content, err := os.ReadFile(in)
		if err != nil {
			t.Fatal(err)
		}

		// Extract the name of the zone from the file name; testdata/my_example.tzdata -> my_example
		name := strings.TrimSuffix(filepath.Base(in), ".tzdata")
		tc := testCase{Name: name, Input: content, Want: map[string][]byte{}}

		ifFiles, err := filepath.Glob(fmt.Sprintf("testdata/generated_tzif/%s/*", name))
		if err != nil {
			t.Fatal(err)
		}
		if len(ifFiles) == 0 {
			t.Skipf("no tzif fixtures found for %s", name)
		}

		for _, ifFile := range ifFiles {
			c, err := os.ReadFile(ifFile)
			if err != nil {
				t.Fatal(err)
			}
			s := filepath.Base(ifFile)
			tc.Want[s] = c
		}
		cases = append(cases, tc)
	}

	return cases
}

func TestCompile(t *testing.T) {
	data := loadTestCases(t)
	for _, d := range data {
		t.Run(d.Name, func(t *testing.T) {
			compiled, err := CompileBytes(d.Input)
			if err != nil {
				t.Fatalf("CompileBytes() error: %v", err)
			}
			for zone, want := range d.Want {
				t.Run(zone, func(t *testing.T) {
					got, ok := compiled[zone]
					var gotData tzif.File
					if ok {
						if string(got) == string(want) {
							return // OK
						}
						// Decode the data to compare the contents.
						gotData, err = tzif.DecodeFile(bytes.NewReader(got))
						if err != nil {
							t.Fatalf("decode got data: %v", err)
						}
					} else {
						// Zone is missing. Keep going and print the diff.
						t.Errorf("missing zone %s", zone)
						return
					}

					wantData, err := tzif.DecodeFile(bytes.NewReader(want))
					if err != nil {
						t.Fatalf("decode want data: %v", err)
					}

					if diff := cmp.Diff(gotData, wantData); diff != "" {
						t.Errorf("tzif mismatch (-got +want):\n%s", diff)
					}
				})
			}
		})
	}
}

// TestCompileZoneRoundTrip exercises the common case directly, without
// relying on testdata fixtures: a zone with an open-ended named rule
// pair must compile to a TZif file this repository's own tzif.Decode
// accepts and resolves correctly.
func TestCompileZoneRoundTrip(t *testing.T) {
	const src = `
Rule	Test	1987	max	-	Mar	Sun>=8	2:00	1:00	D
Rule	Test	1987	max	-	Nov	Sun>=1	2:00	0	S

Zone	Test/Zone	-5:00	Test	E%sT
`
	compiled, err := CompileBytes([]byte(src))
	if err != nil {
		t.Fatalf("CompileBytes() error: %v", err)
	}
	buf, ok := compiled["Test/Zone"]
	if !ok {
		t.Fatalf("missing compiled zone, got: %v", keysOf(compiled))
	}

	r, err := tzif.DecodeFromBuffer(buf, "Test/Zone")
	if err != nil {
		t.Fatalf("DecodeFromBuffer: %v", err)
	}
	if r == nil {
		t.Fatal("expected non-nil region")
	}
	if !r.Rule.HasDST {
		t.Fatalf("expected footer rule to carry DST, got %+v", r.Rule)
	}
	if r.Rule.StdOffset != -5*3600 {
		t.Fatalf("expected std offset -18000, got %d", r.Rule.StdOffset)
	}
}

func keysOf(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
