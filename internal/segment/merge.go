package segment

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/textdex/textdex/internal/common"
)

// mergeItem is one entry in the k-way merge's min-heap: the current head
// posting of a source segment, and which source it came from.
type mergeItem struct {
	posting common.Posting
	source  int
}

// heap is a manual binary min-heap over mergeItem, mirroring the
// teacher's sorter.go manualHeap (container/heap's interface{} boxing is
// unnecessary overhead for a heap this small and this hot).
type heap []mergeItem

func (h heap) less(i, j int) bool { return h[i].posting.Less(h[j].posting) }
func (h heap) swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *heap) push(x mergeItem) {
	*h = append(*h, x)
	h.up(len(*h) - 1)
}

func (h *heap) pop() mergeItem {
	old := *h
	n := len(old)
	top := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]
	h.down(0)
	return top
}

func (h *heap) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !h.less(j, i) {
			return
		}
		h.swap(i, j)
		j = i
	}
}

func (h *heap) down(i int) {
	n := len(*h)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		child := left
		if right := left + 1; right < n && h.less(right, left) {
			child = right
		}
		if !h.less(child, i) {
			return
		}
		h.swap(i, child)
		i = child
	}
}

// Merge performs a k-way merge of the segment directories in segments
// (all must be inside indexRoot), writes the order-preserving merge of
// their posting streams as a single new segment, then deletes the
// sources (spec §4.6 C6). A single-element list is a no-op. The new
// segment is named with the smallest non-negative integer not already
// present in indexRoot (spec invariant S3).
func Merge(indexRoot string, segments []string) error {
	if len(segments) <= 1 {
		return nil
	}

	readers := make([]*Reader, len(segments))
	for i, dir := range segments {
		r, err := OpenReader(dir)
		if err != nil {
			for _, opened := range readers[:i] {
				if opened != nil {
					opened.Close()
				}
			}
			return fmt.Errorf("segment: merge: %w", err)
		}
		readers[i] = r
	}
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	name, err := nextSegmentName(indexRoot)
	if err != nil {
		return err
	}
	outDir := filepath.Join(indexRoot, name)

	w, err := Create(outDir)
	if err != nil {
		return fmt.Errorf("segment: merge: %w", err)
	}

	h := make(heap, 0, len(readers))
	for i, r := range readers {
		p, err := r.Next()
		if err == io.EOF {
			continue
		}
		if err != nil {
			return fmt.Errorf("segment: merge: %w", err)
		}
		h.push(mergeItem{posting: p, source: i})
	}

	for len(h) > 0 {
		item := h.pop()
		if err := w.Write(item.posting); err != nil {
			return fmt.Errorf("segment: merge: %w", err)
		}

		next, err := readers[item.source].Next()
		if err == io.EOF {
			continue
		}
		if err != nil {
			return fmt.Errorf("segment: merge: %w", err)
		}
		h.push(mergeItem{posting: next, source: item.source})
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("segment: merge: finalize %s: %w", outDir, err)
	}

	for _, r := range readers {
		r.Close()
	}
	for _, dir := range segments {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("segment: merge: remove source %s: %w", dir, err)
		}
	}
	return nil
}

// ListSegments returns the segment directory names directly under
// indexRoot (non-negative integers, per invariant S3), sorted
// numerically. Enumeration by directory listing is authoritative — there
// is no separate manifest (spec §3 Index).
func ListSegments(indexRoot string) ([]string, error) {
	entries, err := os.ReadDir(indexRoot)
	if err != nil {
		return nil, fmt.Errorf("segment: list index %s: %w", indexRoot, err)
	}

	var names []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil || n < 0 {
			continue
		}
		names = append(names, n)
	}
	sort.Ints(names)

	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strconv.Itoa(n)
	}
	return out, nil
}

// nextSegmentName returns the smallest non-negative integer not already
// used as a segment directory name under indexRoot.
func nextSegmentName(indexRoot string) (string, error) {
	existing, err := ListSegments(indexRoot)
	if err != nil {
		return "", err
	}
	used := make(map[string]bool, len(existing))
	for _, n := range existing {
		used[n] = true
	}
	for i := 0; ; i++ {
		candidate := strconv.Itoa(i)
		if !used[candidate] {
			return candidate, nil
		}
	}
}
