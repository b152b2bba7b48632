package segment

import (
	"path/filepath"
	"sort"
	"strconv"
	"testing"

	"github.com/textdex/textdex/internal/common"
)

func postings(pairs ...[2]string) []common.Posting {
	out := make([]common.Posting, len(pairs))
	for i, p := range pairs {
		out[i] = common.Posting{Term: p[0], DocID: p[1]}
	}
	return out
}

func TestWriteAllAndLookup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seg")
	data := postings(
		[2]string{"alpha", "a.txt"},
		[2]string{"beta", "b.txt"},
		[2]string{"beta", "c.txt"},
		[2]string{"gamma", "a.txt"},
	)
	if err := WriteAll(dir, data); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ids, err := s.Lookup("beta")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "b.txt" || ids[1] != "c.txt" {
		t.Errorf("Lookup(beta) = %v, want [b.txt c.txt]", ids)
	}

	if ids, err := s.Lookup("missing"); err != nil || len(ids) != 0 {
		t.Errorf("Lookup(missing) = %v, %v, want empty, nil", ids, err)
	}

	if ids, err := s.Lookup("aaa"); err != nil || len(ids) != 0 {
		t.Errorf("Lookup before every term = %v, %v, want empty, nil", ids, err)
	}
}

func TestWriteAllSpansMultipleChunks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seg")
	var data []common.Posting
	for i := 0; i < ChunkSize*3+7; i++ {
		data = append(data, common.Posting{Term: "term", DocID: "doc" + strconv.Itoa(i)})
	}
	if err := WriteAll(dir, data); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	entries, err := ReadSkipFile(dir)
	if err != nil {
		t.Fatalf("ReadSkipFile: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d chunks, want 4", len(entries))
	}

	got, err := ReadAllPostings(dir)
	if err != nil {
		t.Fatalf("ReadAllPostings: %v", err)
	}
	if len(got) != len(data) {
		t.Fatalf("got %d postings, want %d", len(got), len(data))
	}
}

// TestLookupTermSpanningChunkBoundary covers a term with more postings
// than one chunk holds, so its run starts in one chunk and continues
// into the next (or several): Lookup must still return every doc-id,
// not just the ones in the chunk the binary search lands on.
func TestLookupTermSpanningChunkBoundary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seg")

	n := ChunkSize*3 + 7
	var data []common.Posting
	for i := 0; i < n; i++ {
		data = append(data, common.Posting{Term: "term", DocID: "doc" + strconv.Itoa(i)})
	}
	// A distinct trailing term guarantees the spanning term's last chunk
	// head is still exactly "term", not shifted by a later term sharing
	// the boundary chunk.
	data = append(data, common.Posting{Term: "zzz", DocID: "last.txt"})

	if err := WriteAll(dir, data); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	entries, err := ReadSkipFile(dir)
	if err != nil {
		t.Fatalf("ReadSkipFile: %v", err)
	}
	if len(entries) < 4 {
		t.Fatalf("got %d chunks, want at least 4 for this test to exercise a multi-chunk span", len(entries))
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ids, err := s.Lookup("term")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(ids) != n {
		t.Fatalf("Lookup(term) returned %d doc-ids, want %d (postings dropped across a chunk boundary)", len(ids), n)
	}

	seen := make(map[string]bool, n)
	for _, id := range ids {
		seen[id] = true
	}
	for i := 0; i < n; i++ {
		want := "doc" + strconv.Itoa(i)
		if !seen[want] {
			t.Errorf("Lookup(term) missing %s", want)
		}
	}
}

func TestBuildSkipFileAgreesWithWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seg")
	data := postings(
		[2]string{"alpha", "a.txt"},
		[2]string{"beta", "b.txt"},
		[2]string{"gamma", "c.txt"},
	)
	if err := WriteAll(dir, data); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	want, err := ReadSkipFile(dir)
	if err != nil {
		t.Fatalf("ReadSkipFile: %v", err)
	}

	if err := BuildSkipFile(dir); err != nil {
		t.Fatalf("BuildSkipFile: %v", err)
	}
	got, err := ReadSkipFile(dir)
	if err != nil {
		t.Fatalf("ReadSkipFile after rebuild: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("rebuilt skip file has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEmptySegment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seg")
	if err := WriteAll(dir, nil); err != nil {
		t.Fatalf("WriteAll(nil): %v", err)
	}
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ids, err := s.Lookup("anything")
	if err != nil || len(ids) != 0 {
		t.Errorf("Lookup on empty segment = %v, %v, want empty, nil", ids, err)
	}
}
