package tokenizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/textdex/textdex/internal/common"
)

func TestWalkEmitsOnePostingPerDistinctTerm(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	if err := os.WriteFile(path, []byte("foo bar foo baz\nbar\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var got []common.Posting
	err := Walk(root, func(p common.Posting) error {
		got = append(got, p)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	want := map[string]bool{"foo": true, "bar": true, "baz": true}
	if len(got) != len(want) {
		t.Fatalf("got %d postings, want %d: %v", len(got), len(want), got)
	}
	for _, p := range got {
		if p.DocID != path {
			t.Errorf("DocID = %q, want %q", p.DocID, path)
		}
		if !want[p.Term] {
			t.Errorf("unexpected term %q", p.Term)
		}
		delete(want, p.Term)
	}
	if len(want) != 0 {
		t.Errorf("missing terms: %v", want)
	}
}

func TestWalkRecursesSubdirectories(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var count int
	err := Walk(root, func(common.Posting) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d postings, want 1", count)
	}
}

func TestWalkAbortsOnMissingRoot(t *testing.T) {
	root := t.TempDir()
	missing := filepath.Join(root, "does-not-exist")

	err := Walk(missing, func(common.Posting) error { return nil })
	if err == nil {
		t.Fatal("expected error walking a nonexistent root")
	}
}
