package segment

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/textdex/textdex/internal/common"
)

// Reader streams every posting of one segment, in sorted order, by
// opening its chunks in skip-file order and concatenating them (spec
// §4.7 C7). It is the input side of the merger (C6): a k-way merge pulls
// one posting at a time from several Readers. Only one chunk file is
// open at a time — the previous one is closed before the next is opened
// (spec §5).
type Reader struct {
	dir     string
	entries []SkipEntry
	next    int

	f  *os.File
	gz *gzip.Reader
	br *bufio.Reader
}

// OpenReader opens a segment for full streaming read.
func OpenReader(dir string) (*Reader, error) {
	entries, err := ReadSkipFile(dir)
	if err != nil {
		return nil, err
	}
	return &Reader{dir: dir, entries: entries}, nil
}

// Next returns the next posting in sorted order, or io.EOF once the
// segment is exhausted.
func (r *Reader) Next() (common.Posting, error) {
	for {
		if r.br == nil {
			if r.next >= len(r.entries) {
				return common.Posting{}, io.EOF
			}
			if err := r.openChunk(r.entries[r.next].ChunkFile); err != nil {
				return common.Posting{}, err
			}
			r.next++
		}

		p, err := common.ReadPosting(r.br)
		if err == io.EOF {
			r.closeChunk()
			continue
		}
		if err != nil {
			return common.Posting{}, fmt.Errorf("segment: read %s: %w", r.dir, err)
		}
		return p, nil
	}
}

func (r *Reader) openChunk(name string) error {
	path := filepath.Join(r.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("segment: open chunk %s: %w", path, err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("segment: open gzip chunk %s: %w", path, err)
	}
	r.f = f
	r.gz = gz
	r.br = bufio.NewReader(gz)
	return nil
}

func (r *Reader) closeChunk() {
	if r.gz != nil {
		r.gz.Close()
		r.gz = nil
	}
	if r.f != nil {
		r.f.Close()
		r.f = nil
	}
	r.br = nil
}

// Close releases the currently open chunk, if any. Safe to call more
// than once.
func (r *Reader) Close() error {
	r.closeChunk()
	return nil
}

// ReadAllPostings drains a Reader into a slice. Used by tests only,
// never by the hot merge path (which must not materialize a whole
// segment in memory).
func ReadAllPostings(dir string) ([]common.Posting, error) {
	r, err := OpenReader(dir)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []common.Posting
	for {
		p, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
}
