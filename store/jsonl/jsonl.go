/*
Package jsonl provides a durable, append-only audit ledger backed by a
JSONL file.

PURPOSE:
  Implements procure.Ledger with one self-contained JSON object per
  line. Because every line parses on its own, a reader can recover all
  valid records even if the process died mid-write: a corrupt trailing
  line is dropped, earlier records remain valid.

CONCURRENCY:
  A mutex serializes appends (single writer at a time). Each append is
  a pure append; there is no read-modify-write race to protect against.

SEE ALSO:
  - procure/audit.go: Ledger contract and invariants
*/
package jsonl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/warp/procurement-engine/procure"
)

// Ledger appends audit entries to a JSONL file.
type Ledger struct {
	path string
	mu   sync.Mutex
	f    *os.File
}

// Open creates or opens the JSONL file at path, creating parent
// directories as needed.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	return &Ledger{path: path, f: f}, nil
}

// Append writes one entry as a single JSON line.
func (l *Ledger) Append(_ context.Context, entry procure.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}
	data = append(data, '\n')
	if _, err := l.f.Write(data); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ReadAll returns every valid entry in append order. Lines that fail
// to parse (a partially written tail after a crash) are skipped;
// earlier records remain valid since each line is self-contained.
func (l *Ledger) ReadAll(_ context.Context) ([]procure.AuditEntry, error) {
	l.mu.Lock()
	_ = l.f.Sync()
	l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	var entries []procure.AuditEntry
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e procure.AuditEntry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Clear truncates the ledger file. Operational reset only; never used
// on the decision path.
func (l *Ledger) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.f.Truncate(0); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}
	if _, err := l.f.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind ledger: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
