// Package metadata is a future-use artifact, grounded on the teacher's
// updatemgr.Manager: a JSON sidecar recording, per file, (path, size,
// mtime). The present system has no incremental-reindexing operation
// (spec §1 Non-goals), so nothing in internal/indexer calls this
// package; it exists, per spec §9, as a separate facility an
// incremental build could later diff against rather than folded into
// the builder's own control flow.
package metadata

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Entry records one corpus file's state at scan time.
type Entry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Manifest is the JSON sidecar shape: a flat map of entries, keyed by
// path for O(1) diffing by a future incremental builder.
type Manifest struct {
	Entries map[string]Entry `json:"entries"`
}

// Scan walks root and records (path, size, mtime) for every regular
// file it finds. It does not read file contents.
func Scan(root string) (*Manifest, error) {
	m := &Manifest{Entries: make(map[string]Entry)}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("metadata: walk %s: %w", path, err)
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("metadata: stat %s: %w", path, err)
		}
		m.Entries[path] = Entry{Path: path, Size: info.Size(), ModTime: info.ModTime()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Write persists the manifest as indented JSON, matching the teacher's
// updatemgr sidecar convention.
func Write(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("metadata: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("metadata: write %s: %w", path, err)
	}
	return nil
}

// Read loads a manifest previously written by Write. A missing file is
// not an error; it returns an empty manifest, since this facility is
// never relied upon for correctness.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{Entries: make(map[string]Entry)}, nil
		}
		return nil, fmt.Errorf("metadata: read %s: %w", path, err)
	}
	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("metadata: parse %s: %w", path, err)
	}
	if m.Entries == nil {
		m.Entries = make(map[string]Entry)
	}
	return m, nil
}

// Diff reports paths present in next that are absent from prev or whose
// size or mtime differs from prev's entry — candidates a future
// incremental indexer would re-tokenize. Paths only in prev are not
// reported.
func Diff(prev, next *Manifest) []string {
	var changed []string
	for path, e := range next.Entries {
		old, ok := prev.Entries[path]
		if !ok || old.Size != e.Size || !old.ModTime.Equal(e.ModTime) {
			changed = append(changed, path)
		}
	}
	return changed
}
