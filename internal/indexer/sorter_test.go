package indexer

import (
	"testing"

	"github.com/textdex/textdex/internal/common"
)

func TestSorterFlushesAtMaxRun(t *testing.T) {
	var runs [][]common.Posting
	s := NewSorter(2, func(run []common.Posting) error {
		runs = append(runs, run)
		return nil
	})

	postings := []common.Posting{
		{Term: "c", DocID: "1"},
		{Term: "a", DocID: "1"},
		{Term: "b", DocID: "1"},
	}
	for _, p := range postings {
		if err := s.Add(p); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0][0].Term != "a" || runs[0][1].Term != "c" {
		t.Errorf("first run not sorted: %v", runs[0])
	}
	if len(runs[1]) != 1 || runs[1][0].Term != "b" {
		t.Errorf("second run = %v, want [b]", runs[1])
	}
}

func TestSorterFinalizeOnEmptyBufferIsNoOp(t *testing.T) {
	called := false
	s := NewSorter(10, func(run []common.Posting) error {
		called = true
		return nil
	})
	if err := s.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if called {
		t.Error("onRun called on an empty sorter")
	}
}
