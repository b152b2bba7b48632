// Package grep rescans query matches for the CLI's grep subcommand
// (spec §6). It is a pure consumer of internal/query's result: it never
// touches the index again, only the original corpus files.
package grep

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Match is one matching line within one matching file.
type Match struct {
	Path string
	Line int // 1-based
	Text string
}

// Scan reopens each of paths and returns every line containing at least
// one of terms, as PATH:LINENO:LINE triples. A file that can no longer
// be read (spec §7 kind 5, the one recoverable failure) is reported to
// warn and skipped; the remaining paths are still scanned.
func Scan(paths []string, terms []string, warn func(path string, err error)) []Match {
	var out []Match
	for _, path := range paths {
		matches, err := scanFile(path, terms)
		if err != nil {
			if warn != nil {
				warn(path, err)
			}
			continue
		}
		out = append(out, matches...)
	}
	return out
}

func scanFile(path string, terms []string) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grep: open %s: %w", path, err)
	}
	defer f.Close()

	var matches []Match
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if containsAny(line, terms) {
			matches = append(matches, Match{Path: path, Line: lineNo, Text: line})
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return matches, fmt.Errorf("grep: read %s: %w", path, err)
	}
	return matches, nil
}

func containsAny(line string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(line, t) {
			return true
		}
	}
	return false
}
