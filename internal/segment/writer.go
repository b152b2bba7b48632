package segment

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/textdex/textdex/internal/common"
)

// bufWriterPool reuses 256KB bufio.Writers across chunk flushes, mirroring
// the teacher's sorter.go bufWriterPool.
var bufWriterPool = sync.Pool{
	New: func() interface{} {
		return bufio.NewWriterSize(nil, 256*1024)
	},
}

// Writer persists a sorted posting stream as a new segment: a directory
// of numbered gzip chunk files plus a skip file (spec §4.4 C4). Postings
// must arrive in non-decreasing (Term, DocID) order; Writer only buffers
// one chunk's worth (ChunkSize postings) at a time, so it is safe to feed
// it directly from either a fully materialized sorted run (C2) or a
// streaming k-way merge (C6).
type Writer struct {
	dir      string
	chunkIdx int
	buf      []common.Posting
	entries  []SkipEntry
	bloom    *common.BloomFilter
	closed   bool
}

// Create makes a fresh segment directory at dir, which must not already
// exist (spec §4.4 "target directory path (must not exist)").
func Create(dir string) (*Writer, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("segment: directory already exists: %s", dir)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("segment: stat %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("segment: create directory %s: %w", dir, err)
	}
	return &Writer{
		dir:   dir,
		buf:   make([]common.Posting, 0, ChunkSize),
		bloom: common.NewBloomFilter(ChunkSize*4, 0.01),
	}, nil
}

// Write appends one posting, flushing a chunk file whenever the buffer
// reaches ChunkSize.
func (w *Writer) Write(p common.Posting) error {
	w.buf = append(w.buf, p)
	w.bloom.Add(p.Term)
	if len(w.buf) >= ChunkSize {
		return w.flush()
	}
	return nil
}

// WriteAll is a convenience for writing an already-sorted slice in one
// call, as the builder does for each freshly flushed sorter run.
func WriteAll(dir string, postings []common.Posting) error {
	w, err := Create(dir)
	if err != nil {
		return err
	}
	for _, p := range postings {
		if err := w.Write(p); err != nil {
			return err
		}
	}
	return w.Close()
}

func (w *Writer) flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	name := strconv.Itoa(w.chunkIdx) + ".gz"
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("segment: create chunk %s: %w", path, err)
	}

	gz := gzip.NewWriter(f)

	bufferedWriter := bufWriterPool.Get().(*bufio.Writer)
	bufferedWriter.Reset(gz)
	defer func() {
		bufferedWriter.Reset(nil)
		bufWriterPool.Put(bufferedWriter)
	}()

	for _, p := range w.buf {
		if err := common.WritePosting(bufferedWriter, p); err != nil {
			_ = gz.Close()
			_ = f.Close()
			return fmt.Errorf("segment: write chunk %s: %w", path, err)
		}
	}

	if err := bufferedWriter.Flush(); err != nil {
		_ = gz.Close()
		_ = f.Close()
		return fmt.Errorf("segment: flush chunk %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("segment: close gzip %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("segment: close chunk %s: %w", path, err)
	}

	w.entries = append(w.entries, SkipEntry{FirstTerm: w.buf[0].Term, ChunkFile: name})
	w.chunkIdx++
	w.buf = w.buf[:0]
	return nil
}

// Close flushes any buffered postings, then writes the skip file and the
// bloom sidecar. A Writer with zero postings produces an empty segment
// directory (no chunk files, an empty skip file) — scenario 1 of spec §8
// explicitly allows this.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.flush(); err != nil {
		return err
	}
	if err := writeSkipFile(w.dir, w.entries); err != nil {
		return err
	}
	if err := writeBloomSidecar(w.dir, w.bloom); err != nil {
		// The bloom sidecar is a pure optimization (SPEC_FULL.md §4.8);
		// its loss must not fail the build.
		fmt.Fprintf(os.Stderr, "warning: segment %s: bloom sidecar not written: %v\n", w.dir, err)
	}
	return nil
}
