package segment

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/textdex/textdex/internal/common"
)

// Segment is a read handle on one segment directory: its skip entries
// loaded once, plus an optional bloom pre-filter. Opening it once and
// reusing it across many Lookup calls (as internal/query does for every
// term of one Evaluate call) amortizes the skip-file read across a whole
// query.
type Segment struct {
	Dir     string
	entries []SkipEntry
	bloom   *common.BloomFilter // nil if no usable sidecar
}

// Open loads dir's skip file (fatal if missing, per spec §7 kind 4) and
// opportunistically loads its bloom sidecar (never fatal).
func Open(dir string) (*Segment, error) {
	entries, err := ReadSkipFile(dir)
	if err != nil {
		return nil, err
	}
	bloom, _ := readBloomSidecar(dir)
	return &Segment{Dir: dir, entries: entries, bloom: bloom}, nil
}

// Lookup returns every doc-id paired with term within this segment.
// Ordinarily this reads at most two chunk files (spec §4.8, property
// P7); a term whose postings outnumber one chunk's cardinality spans
// more than two consecutive chunks, and all of them must be read for
// the result to be complete (spec §9's correction of the boundary
// rule takes priority over the idealized 2-chunk bound).
func (s *Segment) Lookup(term string) ([]string, error) {
	if s.bloom != nil && !s.bloom.MightContain(term) {
		return nil, nil
	}
	if len(s.entries) == 0 {
		return nil, nil
	}

	idx := findChunk(s.entries, term)

	var chunkFiles []string
	if idx == -1 {
		// term sorts before every chunk head; read the first chunk
		// anyway, which is guaranteed to yield nothing (spec §4.8 edge
		// case) but keeps the "consult the chunk whose head is largest
		// <= term, else the first" rule uniform.
		chunkFiles = append(chunkFiles, s.entries[0].ChunkFile)
	} else if s.entries[idx].FirstTerm == term {
		// idx is the rightmost entry with FirstTerm <= term (S2: heads
		// are sorted, so findChunk already lands on the last exact-match
		// chunk). term's run of postings may have started in an earlier
		// chunk (invariant C2 permits a chunk boundary to fall mid-run,
		// and with more postings for term than one chunk holds, several
		// consecutive chunks can all have head == term) — walk backward
		// over every chunk whose head equals term, then include the one
		// chunk before that run, whose head is strictly less than term
		// and which holds the start of term's postings.
		first := idx
		for first > 0 && s.entries[first-1].FirstTerm == term {
			first--
		}
		if first > 0 {
			chunkFiles = append(chunkFiles, s.entries[first-1].ChunkFile)
		}
		for i := first; i <= idx; i++ {
			chunkFiles = append(chunkFiles, s.entries[i].ChunkFile)
		}
	} else {
		chunkFiles = append(chunkFiles, s.entries[idx].ChunkFile)
	}

	var docIDs []string
	for _, cf := range chunkFiles {
		ids, err := scanChunkForTerm(filepath.Join(s.Dir, cf), term)
		if err != nil {
			return nil, err
		}
		docIDs = append(docIDs, ids...)
	}
	return docIDs, nil
}

// scanChunkForTerm streams one chunk, collecting doc-ids for term and
// breaking out as soon as a lexicographically greater term is seen
// (spec §4.8). The file handle is always released via defer, including
// on the early break (spec §9 "Generator early-close").
func scanChunkForTerm(path, term string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segment: open chunk %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("segment: open gzip chunk %s: %w", path, err)
	}
	defer gz.Close()

	r := bufio.NewReader(gz)
	var docIDs []string
	for {
		p, err := common.ReadPosting(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return docIDs, fmt.Errorf("segment: read chunk %s: %w", path, err)
		}
		if p.Term == term {
			docIDs = append(docIDs, p.DocID)
			continue
		}
		if p.Term > term {
			break
		}
	}
	return docIDs, nil
}
