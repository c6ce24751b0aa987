// Package alias implements the shell's alias store and its non-recursive
// first-word expansion.
package alias

import (
	"sort"
	"strings"
	"sync"

	"github.com/AlanLuu/alsh/internal/lexer"
	"github.com/AlanLuu/alsh/internal/token"
)

// Store maps alias names to their (possibly multi-word) replacement text.
type Store struct {
	mu    sync.RWMutex
	table map[string]string
}

func New() *Store {
	return &Store{table: make(map[string]string)}
}

func (s *Store) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[name] = value
}

func (s *Store) Unset(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.table[name]; !ok {
		return false
	}
	delete(s.table, name)
	return true
}

func (s *Store) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.table[name]
	return v, ok
}

type Pair struct {
	Name  string
	Value string
}

func (s *Store) All() []Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Pair, 0, len(s.table))
	for k, v := range s.table {
		out = append(out, Pair{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ExpandResult reports the outcome of expanding the first token of a
// command against the alias table.
type ExpandResult struct {
	Tokens      token.List
	NoOp        bool // true when the alias replacement was empty
	WasExpanded bool
}

// Expand applies alias substitution to the first token of toks only,
// never recursively. If the replacement contains whitespace it is
// tokenized and splices in as multiple tokens; a single-word replacement
// swaps in as one token. An empty replacement makes the whole command a
// no-op (the caller should treat it as exiting with status 1).
func (s *Store) Expand(toks token.List) (ExpandResult, error) {
	first, ok := toks.Head()
	if !ok {
		return ExpandResult{Tokens: toks}, nil
	}
	repl, ok := s.Get(string(first))
	if !ok {
		return ExpandResult{Tokens: toks}, nil
	}
	rest := toks.Tail()
	if repl == "" {
		return ExpandResult{Tokens: token.List{}, NoOp: true, WasExpanded: true}, nil
	}
	if strings.ContainsAny(repl, " \t") {
		replToks, err := lexer.Split(repl, " ")
		if err != nil {
			return ExpandResult{}, err
		}
		merged := make(token.List, 0, len(replToks)+len(rest))
		merged = append(merged, replToks...)
		merged = append(merged, rest...)
		return ExpandResult{Tokens: merged, WasExpanded: true}, nil
	}
	merged := make(token.List, 0, 1+len(rest))
	merged = append(merged, token.Token(repl))
	merged = append(merged, rest...)
	return ExpandResult{Tokens: merged, WasExpanded: true}, nil
}
