// Package indexer implements the external sorter (C2) and the index
// builder (C10) that drives tokenization through to a finished index.
package indexer

import (
	"fmt"
	"slices"

	"github.com/textdex/textdex/internal/common"
)

// DefaultMaxRun is MAX_RUN from spec §4.2: the default bound on how many
// postings the sorter buffers in memory before flushing a run.
const DefaultMaxRun = 1 << 20

// OnRun is called once per completed run with its sorted postings. The
// slice is owned by the callback; Sorter allocates a fresh buffer after
// handing it off, so OnRun may retain it.
type OnRun func([]common.Posting) error

// Sorter buffers an arbitrarily long posting stream into bounded,
// in-memory sorted runs (spec §4.2, C2). It is the push-style mirror of
// the teacher's sorter.go Add/flushChunk: Add appends to the buffer and
// triggers a flush once MaxRun is reached, rather than the caller pulling
// a lazy sequence — the result is the same bounded-memory, single-run-
// alive-at-a-time discipline spec §5 requires.
type Sorter struct {
	maxRun int
	buf    []common.Posting
	onRun  OnRun
}

// NewSorter creates a Sorter with the given run-size bound. onRun is
// invoked synchronously, in order, once per flushed run.
func NewSorter(maxRun int, onRun OnRun) *Sorter {
	if maxRun <= 0 {
		maxRun = DefaultMaxRun
	}
	return &Sorter{
		maxRun: maxRun,
		buf:    make([]common.Posting, 0, maxRun),
		onRun:  onRun,
	}
}

// Add appends one posting, flushing a run when the buffer reaches
// maxRun.
func (s *Sorter) Add(p common.Posting) error {
	s.buf = append(s.buf, p)
	if len(s.buf) >= s.maxRun {
		return s.flush()
	}
	return nil
}

// Finalize flushes any remaining buffered postings as a final, possibly
// short, run.
func (s *Sorter) Finalize() error {
	return s.flush()
}

func (s *Sorter) flush() error {
	if len(s.buf) == 0 {
		return nil
	}

	run := s.buf
	slices.SortFunc(run, func(a, b common.Posting) int {
		return a.Compare(b)
	})

	s.buf = make([]common.Posting, 0, s.maxRun)

	if err := s.onRun(run); err != nil {
		return fmt.Errorf("indexer: sorter: %w", err)
	}
	return nil
}
