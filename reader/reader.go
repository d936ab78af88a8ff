package reader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/codepr/arccrawler/internal/console"
)

// Record is any JSON-serializable value; the store never inspects its shape.
type Record = any

// IndexEntry summarizes one content line: always "line", plus "url" when the
// writer supplied one (or a rebuild recovered one from the record), plus
// whatever extra fields a caller's index_record_setter contributed.
type IndexEntry map[string]any

// URL returns the entry's url field, or "" if absent/not a string.
func (e IndexEntry) URL() string {
	if u, ok := e["url"].(string); ok {
		return u
	}
	return ""
}

// Line returns the entry's zero-based line offset, or -1 if absent.
func (e IndexEntry) Line() int {
	switch v := e["line"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return -1
}

// ErrStoreDeclined is returned by Open when the store doesn't exist yet and
// the caller's Console declines to create it.
var ErrStoreDeclined = errors.New("arccrawler: store creation declined")

// RebuildFieldsFunc derives index fields for a content record when the index
// file is missing and must be rebuilt by streaming the content file. Unlike
// the live-write path, this function cannot be told the fetched URL
// separately and must recover it from the record itself, if possible.
type RebuildFieldsFunc func(record Record) map[string]any

func defaultRebuildFields(record Record) map[string]any {
	if m, ok := record.(map[string]any); ok {
		if url, ok := m["url"].(string); ok {
			return map[string]any{"url": url}
		}
	}
	return map[string]any{}
}

// Option configures Open.
type Option func(*options)

type options struct {
	console       console.Console
	rebuildFields RebuildFieldsFunc
}

// WithConsole supplies the confirmation-prompt/log-sink capability. Without
// one, Open creates a missing store unconditionally (no prompt possible).
func WithConsole(c console.Console) Option {
	return func(o *options) { o.console = c }
}

// WithRebuildFieldsFunc overrides how index fields are recovered from a
// content record when rebuilding the index from scratch.
func WithRebuildFieldsFunc(fn RebuildFieldsFunc) Option {
	return func(o *options) { o.rebuildFields = fn }
}

// IndexReader is the resumable record store: an append-only JSON-lines
// content file at Path(), paired with a sibling ".index" file. It is safe
// for concurrent use.
type IndexReader struct {
	mu            sync.Mutex
	path          string
	indexPath     string
	index         []IndexEntry
	lineOffsets   []int64
	rebuildFields RebuildFieldsFunc
	console       console.Console
}

func indexPathFor(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".index"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Open opens (or creates) the store at path (expected to end in ".jsonl").
// If neither file exists, it prompts for confirmation via the configured
// Console (if any) before creating both empty. If the content file exists
// without an index, the index is rebuilt by streaming the content file.
func Open(path string, opts ...Option) (*IndexReader, error) {
	o := &options{rebuildFields: defaultRebuildFields}
	for _, opt := range opts {
		opt(o)
	}

	r := &IndexReader{
		path:          path,
		indexPath:     indexPathFor(path),
		rebuildFields: o.rebuildFields,
		console:       o.console,
	}

	contentExists := fileExists(r.path)
	indexExists := fileExists(r.indexPath)

	switch {
	case !contentExists && !indexExists:
		if r.console != nil && !r.console.Confirm(fmt.Sprintf("Store %s does not exist. Create it? [y/N] ", r.path)) {
			return nil, ErrStoreDeclined
		}
		if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
			return nil, fmt.Errorf("arccrawler: creating store directory: %w", err)
		}
		for _, p := range []string{r.path, r.indexPath} {
			f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, fmt.Errorf("arccrawler: creating %s: %w", p, err)
			}
			f.Close()
		}
		return r, nil

	case contentExists && !indexExists:
		if err := r.rebuildIndex(); err != nil {
			return nil, err
		}
		return r, nil

	case !contentExists && indexExists:
		return nil, fmt.Errorf("arccrawler: index %s exists without its content file %s", r.indexPath, r.path)

	default:
		if err := r.loadIndex(); err != nil {
			return nil, err
		}
		if err := r.loadLineOffsets(); err != nil {
			return nil, err
		}
		return r, nil
	}
}

// rebuildIndex reconstructs the index file from the content file when the
// index is missing entirely.
func (r *IndexReader) rebuildIndex() error {
	it, err := NewLineIterator(r.path)
	if err != nil {
		return err
	}
	defer it.Close()

	for {
		record, offset, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		fields := r.rebuildFields(record)
		entry := IndexEntry{}
		for k, v := range fields {
			entry[k] = v
		}
		entry["line"] = len(r.index)

		if err := WriteLine(r.indexPath, entry); err != nil {
			return err
		}
		r.index = append(r.index, entry)
		r.lineOffsets = append(r.lineOffsets, offset)
	}
	return nil
}

// loadIndex reads the existing index file fully into memory.
func (r *IndexReader) loadIndex() error {
	it, err := NewLineIterator(r.indexPath)
	if err != nil {
		return err
	}
	defer it.Close()

	for {
		value, _, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		m, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("arccrawler: index entry in %s is not a JSON object", r.indexPath)
		}
		r.index = append(r.index, IndexEntry(m))
	}
	return nil
}

// loadLineOffsets scans the content file to recover byte offsets for O(1)
// seeks, self-healing a torn append: if the content file has exactly one
// more record than the index, the dangling record is recovered into a
// rebuilt index entry and appended to the index file.
func (r *IndexReader) loadLineOffsets() error {
	it, err := NewLineIterator(r.path)
	if err != nil {
		return err
	}
	defer it.Close()

	var offsets []int64
	var records []Record
	for {
		value, offset, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		offsets = append(offsets, offset)
		records = append(records, value)
	}

	switch len(offsets) - len(r.index) {
	case 0:
		r.lineOffsets = offsets
	case 1:
		extra := records[len(records)-1]
		fields := r.rebuildFields(extra)
		entry := IndexEntry{}
		for k, v := range fields {
			entry[k] = v
		}
		entry["line"] = len(r.index)
		if err := WriteLine(r.indexPath, entry); err != nil {
			return err
		}
		r.index = append(r.index, entry)
		r.lineOffsets = offsets
	default:
		return fmt.Errorf(
			"arccrawler: store %s is corrupt: %d content lines vs %d index entries",
			r.path, len(offsets), len(r.index),
		)
	}
	return nil
}

// Len returns the number of records in the store.
func (r *IndexReader) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.index)
}

// Path returns the content (".jsonl") file path.
func (r *IndexReader) Path() string {
	return r.path
}

// IndexData returns a copy of the ordered index entries.
func (r *IndexReader) IndexData() []IndexEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]IndexEntry, len(r.index))
	copy(out, r.index)
	return out
}

// Write appends record to the content file and a composed index entry to
// the index file. fields are the index entry's extra fields (the caller is
// responsible for including "url"); "line" is always set by the store
// itself. The content line is appended first: if the index append then
// fails, the content file is one line ahead of the index, and the next Open
// recovers that extra line into a rebuilt index entry.
func (r *IndexReader) Write(record Record, fields map[string]any) (IndexEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	beforeSize, err := fileSize(r.path)
	if err != nil {
		return nil, err
	}

	entry := IndexEntry{}
	for k, v := range fields {
		entry[k] = v
	}
	entry["line"] = len(r.index)

	if err := WriteLine(r.path, record); err != nil {
		return nil, err
	}
	if err := WriteLine(r.indexPath, entry); err != nil {
		return nil, err
	}

	r.lineOffsets = append(r.lineOffsets, beforeSize)
	r.index = append(r.index, entry)
	return entry, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("arccrawler: stat %s: %w", path, err)
	}
	return info.Size(), nil
}

// Get returns the record at line index i (0-based, in write order).
func (r *IndexReader) Get(i int) (Record, error) {
	r.mu.Lock()
	if i < 0 || i >= len(r.index) {
		r.mu.Unlock()
		return nil, fmt.Errorf("arccrawler: index %d out of range [0,%d)", i, len(r.index))
	}
	offset := r.lineOffsets[i]
	r.mu.Unlock()
	return r.readLineAt(offset)
}

func (r *IndexReader) readLineAt(offset int64) (Record, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("arccrawler: opening %s: %w", r.path, err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("arccrawler: seeking %s: %w", r.path, err)
	}

	line, err := bufio.NewReader(f).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, fmt.Errorf("arccrawler: reading line from %s: %w", r.path, err)
	}

	var value any
	if err := json.Unmarshal(bytes.TrimSpace(line), &value); err != nil {
		return nil, fmt.Errorf("arccrawler: decoding line from %s: %w", r.path, err)
	}
	return value, nil
}

// All returns every record in write order.
func (r *IndexReader) All() ([]Record, error) {
	n := r.Len()
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		rec, err := r.Get(i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Slice returns records [start, stop) stepping by step. A step of 0
// defaults to 1 and stop is clamped to Len(). Negative indices are not
// counted from the end: a negative start, or a negative step that walks
// below 0, returns an out-of-range error.
func (r *IndexReader) Slice(start, stop, step int) ([]Record, error) {
	if step == 0 {
		step = 1
	}
	n := r.Len()
	if stop > n {
		stop = n
	}
	var records []Record
	for i := start; i < stop; i += step {
		rec, err := r.Get(i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// GetWhere scans every record in write order and returns those for which
// pred returns true. The result is always a slice, even for zero or one
// match (see DESIGN.md's resolution of the Open Question on Get's return
// shape).
func (r *IndexReader) GetWhere(pred func(Record) bool) ([]Record, error) {
	n := r.Len()
	var matches []Record
	for i := 0; i < n; i++ {
		rec, err := r.Get(i)
		if err != nil {
			return nil, err
		}
		if pred(rec) {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}
