// Command textdex builds and queries a disk-resident inverted index
// over a tree of plain-text files. Grounded on the teacher's main.go:
// a flat command switch, one runXxx per subcommand, plain stderr
// error reporting and process exit codes instead of a structured
// logger or a cobra-style command tree.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/textdex/textdex/internal/daemon"
	"github.com/textdex/textdex/internal/grep"
	"github.com/textdex/textdex/internal/indexer"
	"github.com/textdex/textdex/internal/query"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "index":
		runIndex(os.Args[2:])
	case "query":
		runQuery(os.Args[2:])
	case "grep":
		runGrep(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "version":
		fmt.Printf("textdex v%s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `textdex - inverted full-text index builder and query engine

Usage:
    textdex index INDEX_DIR CORPUS_DIR
    textdex query INDEX_DIR TERM...
    textdex grep  INDEX_DIR TERM...
    textdex serve INDEX_DIR [--socket PATH]
    textdex version
    textdex help`)
}

func runIndex(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: textdex index INDEX_DIR CORPUS_DIR")
		os.Exit(1)
	}
	b := indexer.NewBuilder(args[0], args[1])
	if err := b.Build(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runQuery(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: textdex query INDEX_DIR TERM...")
		os.Exit(1)
	}
	paths, err := query.Evaluate(args[0], args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}

func runGrep(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: textdex grep INDEX_DIR TERM...")
		os.Exit(1)
	}
	indexDir, terms := args[0], args[1:]

	paths, err := query.Evaluate(indexDir, terms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	matches := grep.Scan(paths, terms, func(path string, err error) {
		fmt.Fprintf(os.Stderr, "grep: %s: %v\n", path, err)
	})
	for _, m := range matches {
		fmt.Fprintf(out, "%s:%d:%s\n", m.Path, m.Line, m.Text)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	socket := fs.String("socket", "/tmp/textdex.sock", "Unix domain socket path")
	workers := fs.Int("workers", 50, "max concurrent connections")
	_ = fs.Parse(args)

	// Flags may come before or after INDEX_DIR.
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: textdex serve INDEX_DIR [--socket PATH] [--workers N]")
		os.Exit(1)
	}
	indexDir := fs.Arg(0)
	_ = fs.Parse(fs.Args()[1:])
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "usage: textdex serve INDEX_DIR [--socket PATH] [--workers N]")
		os.Exit(1)
	}

	d := daemon.New(daemon.Config{
		SocketPath:     *socket,
		IndexDir:       indexDir,
		MaxConcurrency: *workers,
	})
	if err := d.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
