// Package memory holds todo records in process memory. It backs the test
// suites and the STORE=memory development mode; nothing survives a restart.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"todoapp/internal/domain"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	order  []int64
	todos  map[int64]domain.Todo
}

func New() *Store {
	return &Store{
		nextID: 1,
		todos:  make(map[int64]domain.Todo),
	}
}

func (s *Store) List(ctx context.Context) ([]domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]domain.Todo, 0, len(s.order))
	for _, id := range s.order {
		res = append(res, s.todos[id])
	}
	return res, nil
}

func (s *Store) Create(ctx context.Context, text, detail string) (domain.Todo, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Todo{}, domain.ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := domain.Todo{
		ID:        s.nextID,
		Text:      text,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.todos[t.ID] = t
	s.order = append(s.order, t.ID)
	return t, nil
}

func (s *Store) Get(ctx context.Context, id int64) (domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return domain.Todo{}, domain.ErrNotFound
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, id int64, changes domain.Changes) (domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return domain.Todo{}, domain.ErrNotFound
	}
	t = t.Apply(changes)
	s.todos[id] = t
	return t, nil
}

func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.todos[id]; !ok {
		return 0, domain.ErrNotFound
	}
	delete(s.todos, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return id, nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() {}
