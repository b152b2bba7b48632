package segment

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"

	"github.com/textdex/textdex/internal/common"
)

// bloomFileName is the sidecar that holds a segment's term bloom filter.
// It is an optimization only — see SPEC_FULL.md §4.8 — and is never
// required for correctness.
const bloomFileName = "bloom"

// writeBloomSidecar LZ4-frames the filter's serialized bytes and writes
// them next to the segment's chunks, mirroring the teacher's sorter.go
// use of lz4.NewWriter for its own scratch compression.
func writeBloomSidecar(dir string, bloom *common.BloomFilter) error {
	path := filepath.Join(dir, bloomFileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("segment: create bloom sidecar %s: %w", path, err)
	}
	defer f.Close()

	lw := lz4.NewWriter(f)
	if _, err := lw.Write(bloom.Serialize()); err != nil {
		return fmt.Errorf("segment: write bloom sidecar %s: %w", path, err)
	}
	return lw.Close()
}

// readBloomSidecar loads and decompresses a segment's bloom filter. Any
// failure (missing file, truncated frame, corrupt header) is reported to
// the caller as (nil, false) rather than an error: a bloom sidecar is
// disposable, and its absence must fall back to "might contain", never
// to a hard query failure.
func readBloomSidecar(dir string) (*common.BloomFilter, bool) {
	path := filepath.Join(dir, bloomFileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lz4.NewReader(f)); err != nil {
		return nil, false
	}

	bloom, err := common.DeserializeBloom(buf.Bytes())
	if err != nil {
		return nil, false
	}
	return bloom, true
}
