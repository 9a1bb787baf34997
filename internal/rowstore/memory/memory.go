// Package memory provides an in-process row store used as the default
// backend and as the test double for everything that consumes the contract.
package memory

import (
	"context"
	"fmt"
	"sync"

	"splitbot/internal/rowstore"
)

type Store struct {
	mu     sync.Mutex
	tables map[string][][]string
}

var _ rowstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{tables: make(map[string][][]string)}
}

func (s *Store) AppendRows(_ context.Context, table string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[table] = append(s.tables[table], append([]string(nil), r...))
	}
	return nil
}

func (s *Store) ReadAllRows(_ context.Context, table string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.tables[table]
	out := make([][]string, len(src))
	for i, r := range src {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (s *Store) UpdateRow(_ context.Context, table string, index int, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("update %s row %d: out of range", table, index)
	}
	rows[index] = append([]string(nil), row...)
	return nil
}

func (s *Store) DeleteRow(_ context.Context, table string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("delete %s row %d: out of range", table, index)
	}
	s.tables[table] = append(rows[:index], rows[index+1:]...)
	return nil
}
