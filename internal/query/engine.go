// Package query implements the merge-join evaluator (C9, spec §4.9):
// given a non-empty list of terms, return the doc-ids carrying every one
// of them. Grounded on the teacher's query/engine.go, which resolves a
// predicate by looking up each column's matching row-ids per block and
// intersecting — here there is one "column" (the term dimension) and
// lookups fan out across every segment instead of every block of one
// file.
package query

import (
	"fmt"
	"path/filepath"

	"github.com/textdex/textdex/internal/segment"
)

// Evaluate returns the set of doc-ids that appear paired with every term
// in terms, in some segment under indexRoot. terms must be non-empty.
// Each term's doc-id set is the union of its per-segment lookups (C8);
// the result is the intersection of those per-term sets (spec §4.9).
func Evaluate(indexRoot string, terms []string) ([]string, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("query: no terms given")
	}

	names, err := segment.ListSegments(indexRoot)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	segs := make([]*segment.Segment, 0, len(names))
	for _, name := range names {
		s, err := segment.Open(filepath.Join(indexRoot, name))
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		segs = append(segs, s)
	}

	var result map[string]struct{}
	for i, term := range terms {
		set := make(map[string]struct{})
		for _, s := range segs {
			ids, err := s.Lookup(term)
			if err != nil {
				return nil, fmt.Errorf("query: %w", err)
			}
			for _, id := range ids {
				set[id] = struct{}{}
			}
		}

		if i == 0 {
			result = set
			continue
		}
		for id := range result {
			if _, ok := set[id]; !ok {
				delete(result, id)
			}
		}
	}

	out := make([]string, 0, len(result))
	for id := range result {
		out = append(out, id)
	}
	return out, nil
}
