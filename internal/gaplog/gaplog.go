// Package gaplog persists detected gaps to an append-only JSONL file for
// later retrospective mining. One JSON object per line; records are never
// rewritten or deleted.
package gaplog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aetherlight/readygate/internal/engine"
)

// Logger is an append-only gap log backed by a single file. Safe for
// concurrent use; writes are serialized by a mutex.
type Logger struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// Open creates or opens the gap log at path, creating parent directories
// as needed. The file is opened append-only with 0600 permissions.
func Open(path string) (*Logger, error) {
	if path == "" {
		return nil, fmt.Errorf("gap log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create gap log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open gap log: %w", err)
	}
	return &Logger{f: f, path: path}, nil
}

// Append writes one record as a JSON line. Missing ID and Timestamp fields
// are filled in.
func (l *Logger) Append(_ context.Context, rec engine.GapRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode gap record: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return fmt.Errorf("gap log is closed")
	}
	if _, err := l.f.Write(line); err != nil {
		return fmt.Errorf("failed to append gap record: %w", err)
	}
	return nil
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Close closes the underlying file. Further appends fail.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// Tail reads up to n most recent records from the log file. Used by the CLI
// and HTTP surfaces; the engine itself never reads the log. Malformed lines
// are skipped.
func Tail(path string, n int) ([]engine.GapRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open gap log: %w", err)
	}
	defer f.Close()

	var records []engine.GapRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec engine.GapRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read gap log: %w", err)
	}

	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}
