package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// maxLineSize bounds a single line; longer lines fail the scan
const maxLineSize = 1024 * 1024

// ReadLines parses every line of r into sink until EOF or ctx is done.
// It returns the number of records delivered.
func ReadLines(ctx context.Context, r io.Reader, sink Sink) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if rec, ok := ParseLine(scanner.Text()); ok {
			sink(rec)
			n++
		}
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("failed to read lines: %w", err)
	}
	return n, nil
}
