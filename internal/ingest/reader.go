// Package ingest loads raw log files for the pipeline. The pipeline
// assumes the full input is materialized before chunking, so ReadLines
// returns every line at once; only the normalization is streamed.
package ingest

import (
	"bufio"
	"fmt"
	"os"
)

// maxLineBytes bounds a single log line. PBX logs stay far below this;
// anything longer is corrupt input and fails the read.
const maxLineBytes = 1 << 20

// ReadLines loads the file at path and splits it into lines. A missing or
// unreadable file is returned as an error so callers refuse to start the
// pipeline. Content is normalized while reading: a UTF-8 BOM is dropped,
// invalid UTF-8 bytes are removed, and Windows line endings are
// tolerated. Interior blank lines are kept; the pipeline skips them per
// line.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(sanitized(f))
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}
