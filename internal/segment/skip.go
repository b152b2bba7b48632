package segment

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/textdex/textdex/internal/common"
)

// skipFileName is the name of the skip file inside a segment directory,
// matching original_source/search-engine/index.py's path['skip'].
const skipFileName = "skip"

// SkipEntry is one line of the skip file: the first term of a chunk, and
// the chunk's filename (spec §4.5).
type SkipEntry struct {
	FirstTerm string
	ChunkFile string
}

// writeSkipFile persists entries, sorted by FirstTerm (spec invariant S2).
// entries arrive already in non-decreasing FirstTerm order because chunks
// are flushed in posting order, but the sort is stable and explicit here
// to keep the invariant authoritative rather than incidental.
func writeSkipFile(dir string, entries []SkipEntry) error {
	sorted := make([]SkipEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FirstTerm < sorted[j].FirstTerm
	})

	path := filepath.Join(dir, skipFileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("segment: create skip file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range sorted {
		if _, err := fmt.Fprintf(w, "%s %s\n", e.FirstTerm, e.ChunkFile); err != nil {
			return fmt.Errorf("segment: write skip file %s: %w", path, err)
		}
	}
	return w.Flush()
}

// ReadSkipFile loads a segment's skip file entirely into memory (spec
// §4.5: "far smaller than the chunks themselves"). A missing skip file is
// fatal to any query against the segment (spec §7, error kind 4).
func ReadSkipFile(dir string) ([]SkipEntry, error) {
	path := filepath.Join(dir, skipFileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segment: missing skip file for %s: %w", dir, err)
	}
	defer f.Close()

	var entries []SkipEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("segment: malformed skip entry %q in %s", line, path)
		}
		entries = append(entries, SkipEntry{FirstTerm: fields[0], ChunkFile: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("segment: read skip file %s: %w", path, err)
	}
	return entries, nil
}

// BuildSkipFile rebuilds and overwrites a segment's skip file by
// reopening every chunk file and reading only its first posting — the
// algorithm spec §4.5 describes literally, as opposed to the incremental
// bookkeeping Writer does inline. It exists as a repair tool for the
// "operator deletes and rebuilds" recovery policy of spec §4.4, and as a
// cross-check that the two construction paths agree (see segment_test.go).
func BuildSkipFile(dir string) error {
	chunkFiles, err := listChunkFiles(dir)
	if err != nil {
		return err
	}

	entries := make([]SkipEntry, 0, len(chunkFiles))
	for _, name := range chunkFiles {
		term, err := firstTermOf(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("segment: rebuild skip file: %w", err)
		}
		entries = append(entries, SkipEntry{FirstTerm: term, ChunkFile: name})
	}
	return writeSkipFile(dir, entries)
}

// firstTermOf opens a chunk file, decompresses it, and reads only the
// term of its first posting line, closing the file before returning.
func firstTermOf(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("open gzip chunk %s: %w", path, err)
	}
	defer gz.Close()

	p, err := common.ReadPosting(bufio.NewReader(gz))
	if err != nil {
		return "", fmt.Errorf("read first posting of %s: %w", path, err)
	}
	return p.Term, nil
}

// listChunkFiles returns every "*.gz" entry in dir, sorted numerically by
// chunk index (not lexicographically — "10.gz" must sort after "2.gz").
func listChunkFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("segment: list %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".gz") {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return chunkIndex(names[i]) < chunkIndex(names[j])
	})
	return names, nil
}

func chunkIndex(name string) int {
	base := strings.TrimSuffix(name, ".gz")
	n := 0
	for _, c := range base {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// findChunk returns the index of the rightmost entry whose FirstTerm is
// <= term, or -1 if term sorts before every entry (spec §4.8/§9).
func findChunk(entries []SkipEntry, term string) int {
	lo, hi := 0, len(entries)-1
	result := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if entries[mid].FirstTerm <= term {
			result = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return result
}
