package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScanRecordsRegularFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	e, ok := m.Entries[path]
	if !ok {
		t.Fatalf("Scan did not record %s", path)
	}
	if e.Size != 5 {
		t.Errorf("Size = %d, want 5", e.Size)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	sidecar := filepath.Join(root, "manifest.json")

	m := &Manifest{Entries: map[string]Entry{
		"a.txt": {Path: "a.txt", Size: 10, ModTime: time.Unix(1000, 0).UTC()},
	}}
	if err := Write(sidecar, m); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(sidecar)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Entries["a.txt"].Size != 10 {
		t.Errorf("got %+v, want Size 10", got.Entries["a.txt"])
	}
}

func TestReadMissingReturnsEmptyManifest(t *testing.T) {
	m, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(m.Entries) != 0 {
		t.Errorf("got %d entries for a missing manifest, want 0", len(m.Entries))
	}
}

func TestDiffDetectsChangedAndNewFiles(t *testing.T) {
	prev := &Manifest{Entries: map[string]Entry{
		"a.txt": {Path: "a.txt", Size: 5, ModTime: time.Unix(1000, 0)},
	}}
	next := &Manifest{Entries: map[string]Entry{
		"a.txt": {Path: "a.txt", Size: 6, ModTime: time.Unix(1000, 0)},
		"b.txt": {Path: "b.txt", Size: 1, ModTime: time.Unix(2000, 0)},
	}}
	changed := Diff(prev, next)
	if len(changed) != 2 {
		t.Errorf("Diff = %v, want 2 changed paths", changed)
	}
}
