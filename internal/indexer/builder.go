package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/textdex/textdex/internal/common"
	"github.com/textdex/textdex/internal/segment"
	"github.com/textdex/textdex/internal/tokenizer"
)

// Builder orchestrates C1 through C2, writing one segment per sorter run
// (C4), then collapses all of those segments into one with a final
// merge (C6) — spec §4.10, C10.
type Builder struct {
	IndexRoot  string
	CorpusRoot string

	// MaxRun overrides indexer.DefaultMaxRun; tests use this to force
	// multi-segment builds (spec §8 scenario 5) without generating a
	// gigabyte-scale corpus.
	MaxRun int
}

// NewBuilder returns a Builder with the default MaxRun.
func NewBuilder(indexRoot, corpusRoot string) *Builder {
	return &Builder{IndexRoot: indexRoot, CorpusRoot: corpusRoot}
}

// Build creates indexRoot (which must not already exist) and populates
// it with a single, fully merged segment over every file reachable under
// corpusRoot. A corpus that yields no postings leaves indexRoot with no
// segments at all.
func (b *Builder) Build() error {
	if _, err := os.Stat(b.IndexRoot); err == nil {
		return fmt.Errorf("indexer: index directory already exists: %s", b.IndexRoot)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("indexer: stat %s: %w", b.IndexRoot, err)
	}
	if err := os.MkdirAll(b.IndexRoot, 0755); err != nil {
		return fmt.Errorf("indexer: create index directory %s: %w", b.IndexRoot, err)
	}

	runOrdinal := 0
	sorter := NewSorter(b.MaxRun, func(run []common.Posting) error {
		dir := filepath.Join(b.IndexRoot, strconv.Itoa(runOrdinal))
		runOrdinal++
		return segment.WriteAll(dir, run)
	})

	if err := tokenizer.Walk(b.CorpusRoot, sorter.Add); err != nil {
		return fmt.Errorf("indexer: build %s: %w", b.IndexRoot, err)
	}
	if err := sorter.Finalize(); err != nil {
		return fmt.Errorf("indexer: build %s: %w", b.IndexRoot, err)
	}

	names, err := segment.ListSegments(b.IndexRoot)
	if err != nil {
		return fmt.Errorf("indexer: build %s: %w", b.IndexRoot, err)
	}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(b.IndexRoot, name)
	}

	if err := segment.Merge(b.IndexRoot, paths); err != nil {
		return fmt.Errorf("indexer: build %s: consolidate segments: %w", b.IndexRoot, err)
	}
	return nil
}
