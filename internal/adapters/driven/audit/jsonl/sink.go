// Package jsonl appends audit records to a JSON-lines file. Each
// record is marshalled once and written with a single Write call under
// a mutex, so concurrent requests never interleave lines.
package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/core/ports/driven"
)

var _ driven.AuditSink = (*Sink)(nil)

// Sink is a file-backed append-only audit log.
type Sink struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// NewSink opens (or creates) the audit log at path. If path is empty,
// defaults to ~/.eldin/logs/audit.jsonl. A file left with a partial
// trailing line by a crashed process is repaired by terminating it, so
// the next record starts on a fresh line.
func NewSink(path string) (*Sink, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".eldin", "logs", "audit.jsonl")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}

	s := &Sink{f: f, path: path}
	if err := s.repairTrailingLine(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the audit log file path.
func (s *Sink) Path() string {
	return s.path
}

// Append writes one record as a single JSON line.
func (s *Sink) Append(ctx context.Context, rec domain.AuditRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding audit record: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return fmt.Errorf("audit log closed")
	}
	if _, err := s.f.Write(data); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}

// Close flushes and closes the log file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// repairTrailingLine terminates a dangling last line so appends never
// glue onto a half-written record.
func (s *Sink) repairTrailingLine() error {
	info, err := s.f.Stat()
	if err != nil {
		return fmt.Errorf("stat audit log: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}

	r, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("reading audit log tail: %w", err)
	}
	defer r.Close()

	last := make([]byte, 1)
	if _, err := r.ReadAt(last, info.Size()-1); err != nil {
		return fmt.Errorf("reading audit log tail: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}

	if _, err := s.f.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("repairing audit log: %w", err)
	}
	return nil
}
