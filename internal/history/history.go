// Package history implements the shell's history entry store and its
// bang-expansion syntax, persisted through pkg/storage so a configured
// shell can mirror .alsh_history to S3.
package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/AlanLuu/alsh/pkg/shellerr"
	"github.com/AlanLuu/alsh/pkg/storage"
)

const name = "alsh"

// FileName is the history file's path relative to the storage root:
// "$HOME/.alsh_history".
const FileName = ".alsh_history"

// Store is an ordered, bounded-growth list of previously entered command
// strings. Consecutive duplicates of the literal word "history" collapse
// to a single entry.
type Store struct {
	mu       sync.RWMutex
	entries  []string
	capacity int
	backend  storage.Storage
	mirror   storage.Storage // optional secondary (e.g. S3), best-effort
}

func New(backend storage.Storage, capacity int) *Store {
	return &Store{backend: backend, capacity: capacity}
}

// WithMirror attaches a secondary storage backend that every Write also
// writes to, best-effort (mirror failures are ignored and never abort the
// primary write). Append does not touch either backend.
func (s *Store) WithMirror(mirror storage.Storage) *Store {
	s.mirror = mirror
	return s
}

// Append adds an entry, applying the consecutive-"history"-collapses
// invariant and the geometric-growth capacity ceiling (oldest entries are
// dropped once the ceiling is exceeded).
func (s *Store) Append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if line == "history" && len(s.entries) > 0 && s.entries[len(s.entries)-1] == "history" {
		return
	}
	s.entries = append(s.entries, line)
	if s.capacity > 0 && len(s.entries) > s.capacity {
		overflow := len(s.entries) - s.capacity
		s.entries = s.entries[overflow:]
	}
}

// All returns a snapshot of entries in insertion order, 1-indexed by
// position for the `history` builtin's numbered listing.
func (s *Store) All() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear empties the in-memory history (`history -c`).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Nth returns the 1-based N-th entry.
func (s *Store) Nth(n int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 1 || n > len(s.entries) {
		return "", false
	}
	return s.entries[n-1], true
}

// FromEnd returns the N-th most recent entry (1 = last).
func (s *Store) FromEnd(n int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := len(s.entries) - n
	if idx < 0 || idx >= len(s.entries) {
		return "", false
	}
	return s.entries[idx], true
}

// Load populates the store from the history file, ignoring a missing file.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.backend.Read(ctx, FileName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load history file: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := strings.Split(string(data), "\n")
	s.entries = s.entries[:0]
	for _, l := range lines {
		if l == "" {
			continue
		}
		s.entries = append(s.entries, l)
	}
	return nil
}

// Write persists the history file (`history -w`, and clean shell exit).
func (s *Store) Write(ctx context.Context) error {
	s.mu.RLock()
	data := []byte(strings.Join(s.entries, "\n"))
	if len(s.entries) > 0 {
		data = append(data, '\n')
	}
	s.mu.RUnlock()

	if err := s.backend.Write(ctx, FileName, data); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if s.mirror != nil {
		_ = s.mirror.Write(ctx, FileName, data)
	}
	return nil
}

// Expand rewrites !!, !N, !-N bang references in line against the store.
// A lone trailing '!' is left literal; any other '!X' is a syntax error
// ("event not found"). Expansion is purely textual: the matched token is
// replaced by the recalled entry's full text in place.
func Expand(line string, s *Store) (string, error) {
	if !strings.ContainsRune(line, '!') {
		return line, nil
	}
	var out strings.Builder
	i := 0
	for i < len(line) {
		c := line[i]
		if c != '!' {
			out.WriteByte(c)
			i++
			continue
		}
		if i == len(line)-1 {
			out.WriteByte('!')
			i++
			continue
		}
		rest := line[i+1:]
		switch {
		case rest[0] == '!':
			recalled, ok := s.FromEnd(1)
			if !ok {
				return "", shellerr.New(shellerr.Syntax, name, "!!", "event not found")
			}
			out.WriteString(recalled)
			i += 2
		case rest[0] == '-' && startsWithDigit(rest[1:]):
			j := 1
			for j < len(rest) && isDigit(rest[j]) {
				j++
			}
			n, _ := strconv.Atoi(rest[1:j])
			recalled, ok := s.FromEnd(n)
			if !ok {
				return "", shellerr.New(shellerr.Syntax, name, line[i:i+1+j], "event not found")
			}
			out.WriteString(recalled)
			i += 1 + j
		case isDigit(rest[0]):
			j := 0
			for j < len(rest) && isDigit(rest[j]) {
				j++
			}
			n, _ := strconv.Atoi(rest[:j])
			recalled, ok := s.Nth(n)
			if !ok {
				return "", shellerr.New(shellerr.Syntax, name, line[i:i+1+j], "event not found")
			}
			out.WriteString(recalled)
			i += 1 + j
		default:
			return "", shellerr.New(shellerr.Syntax, name, line[i:], "event not found")
		}
	}
	return out.String(), nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func startsWithDigit(s string) bool {
	return len(s) > 0 && isDigit(s[0])
}
