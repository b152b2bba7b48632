// Package tokenizer walks a corpus tree and emits one posting per
// distinct term per file (spec §4.1, C1), grounded on
// original_source/search-engine/index.py's postings_from_dir and the
// teacher's scanner.go (recursive walk + line-oriented reading).
package tokenizer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/textdex/textdex/internal/common"
)

// termPattern is the word class of spec §4.1: a maximal run of ASCII
// letters, digits, or underscore.
var termPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// Emit is called once per distinct (term, doc-id) pair discovered in the
// corpus. Postings from one file are emitted contiguously, in whatever
// order the regexp scan of its lines finds them, which is not
// necessarily sorted (spec §4.1: "arbitrary order within the file").
type Emit func(common.Posting) error

// Walk recursively visits every regular file under root and calls emit
// for each distinct term it contains. An unreadable file aborts the
// entire walk (spec §4.1, §7 error kind 1) — partial indexes are not
// recovered, so Walk does not attempt to skip and continue.
func Walk(root string, emit Emit) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("tokenizer: walk %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return tokenizeFile(path, emit)
	})
}

// tokenizeFile emits one posting per distinct term appearing in path.
// Binary files are tokenized by the same byte-level rule; the result is
// defined but not necessarily meaningful (spec §4.1).
func tokenizeFile(path string, emit Emit) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("tokenizer: open %s: %w", path, err)
	}
	defer f.Close()

	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		for _, match := range termPattern.FindAll(line, -1) {
			term := string(match)
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			if err := emit(common.Posting{Term: term, DocID: path}); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("tokenizer: read %s: %w", path, err)
	}
	return nil
}
