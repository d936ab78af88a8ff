// Package reader implements arccrawler's resumable record store: an
// append-only JSON-lines content file paired with a sibling index file.
package reader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// WriteLine serializes value as compact JSON followed by a newline and
// appends it to path, creating the file if needed. A single os.File.Write
// call for the whole line keeps a crash between two appends from tearing a
// previously-written line; the dual-file rebuild in Open tolerates a torn
// append of the very last line.
func WriteLine(path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("arccrawler: encoding line for %s: %w", path, err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("arccrawler: opening %s for append: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("arccrawler: appending line to %s: %w", path, err)
	}
	return nil
}

// LineIterator is a lazy, single-pass sequence of parsed JSON values read
// from a newline-delimited JSON file, skipping blank lines. Each call to
// NewLineIterator starts a fresh pass from the top of the file.
type LineIterator struct {
	f       *os.File
	scanner *bufio.Scanner
	offset  int64
}

// NewLineIterator opens path for sequential reading.
func NewLineIterator(path string) (*LineIterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("arccrawler: opening %s: %w", path, err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &LineIterator{f: f, scanner: scanner}, nil
}

// Next returns the next non-blank line's decoded value along with the byte
// offset it started at. ok is false once the file is exhausted.
func (it *LineIterator) Next() (value any, offset int64, ok bool, err error) {
	for it.scanner.Scan() {
		line := it.scanner.Bytes()
		lineStart := it.offset
		it.offset += int64(len(line)) + 1 // +1 for the newline the scanner stripped

		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var decoded any
		if jsonErr := json.Unmarshal(line, &decoded); jsonErr != nil {
			return nil, lineStart, true, fmt.Errorf("arccrawler: decoding line at offset %d: %w", lineStart, jsonErr)
		}
		return decoded, lineStart, true, nil
	}
	if scanErr := it.scanner.Err(); scanErr != nil {
		return nil, 0, false, fmt.Errorf("arccrawler: reading %s: %w", it.f.Name(), scanErr)
	}
	return nil, 0, false, nil
}

// Close releases the underlying file handle.
func (it *LineIterator) Close() error {
	return it.f.Close()
}

// ReadLines fully materializes a file's lines; convenience wrapper over
// LineIterator for callers that don't need streaming.
func ReadLines(path string) ([]any, error) {
	it, err := NewLineIterator(path)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var values []any
	for {
		v, _, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		values = append(values, v)
	}
	return values, nil
}
