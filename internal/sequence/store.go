// Package sequence owns the persisted ticket-number cursor, centralizing
// the file-plus-in-memory duality the source spread across two places
// into a single Store with Next/Commit/Rollback, per SPEC_FULL.md §4.1.
package sequence

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/siantika/dispenserd/internal/domain"
)

const wrapAt = 10_000_000

// Store owns the SequenceCursor file and the in-flight tentative value.
// Next returns a tentative candidate without persisting it; only Commit
// (called after a confirmed print) performs the atomic rename-over write.
// This closes the double-emission window the source's decrement-only-in-
// memory rollback left open across a reboot between a failed print and the
// next successful one.
type Store struct {
	mu        sync.Mutex
	path      string
	persisted uint64 // cursor base: last committed value, or max(file, serverLast) after Open
	tentative uint64 // last value handed out by Next, not yet committed
	hasNext   bool   // true once Next has been called at least once
}

// Open loads the persisted cursor (0 if the file is missing or corrupt)
// and folds in the server-reported last sequence, per the boot invariant:
// effective next sequence is max(persisted, serverLast) + 1.
func Open(path string, serverLast uint64) (*Store, error) {
	persisted := load(path)
	base := persisted
	if serverLast > base {
		base = serverLast
	}
	return &Store{path: path, persisted: base, tentative: base}, nil
}

func load(path string) uint64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Next returns the next tentative sequence number without persisting it.
// Calling Next repeatedly without an intervening Commit re-issues the same
// tentative value, so a failed print can simply be retried with the
// identical ticket number.
func (s *Store) Next() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasNext {
		s.tentative = s.persisted + 1
		s.hasNext = true
	}
	if s.tentative >= wrapAt {
		return 0, domain.New("sequence.Next", domain.ErrCodeInvalidTicketNumber,
			fmt.Sprintf("sequence %d overflows 7-digit width", s.tentative))
	}
	return s.tentative, nil
}

// Commit durably persists n as the new cursor via atomic rename-over, and
// clears the pending tentative marker so the next Next() advances past n.
func (s *Store) Commit(n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := persist(s.path, n); err != nil {
		return domain.Wrap("sequence.Commit", domain.ErrCodeInvalidConfig, err)
	}
	s.persisted = n
	s.hasNext = false
	return nil
}

// Rollback discards the tentative value without touching the persisted
// cursor, so the identical ticket number is reissued by the next Next().
func (s *Store) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasNext = false
}

// Persisted returns the cursor base, for tests and diagnostics: the last
// committed value, or right after Open the larger of the file's value and
// the server-reported last sequence (which is not written to disk until
// the next Commit).
func (s *Store) Persisted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

func persist(path string, n uint64) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".seq-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(strconv.FormatUint(n, 10)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
