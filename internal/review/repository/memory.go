package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cmdbreizh/site-backend/internal/review"
)

// MemoryRepo is a simple in-memory repository used in unit tests. It mirrors
// the row-count semantics of the Postgres implementation, including the
// "publish matches on id alone" behavior.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*review.Review
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*review.Review)}
}

func (m *MemoryRepo) Create(_ context.Context, nr *review.NewReview) (*review.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv := &review.Review{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Name:      nr.Name,
		Email:     nr.Email,
		Comment:   nr.Comment,
		Rating:    nr.Rating,
		Published: false,
	}
	m.store[rv.ID] = rv
	return copyOf(rv), nil
}

func (m *MemoryRepo) GetByToken(_ context.Context, token string) (*review.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rv, ok := m.store[token]; ok {
		return copyOf(rv), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) Publish(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv, ok := m.store[id]
	if !ok {
		return false, nil
	}
	rv.Published = true
	return true, nil
}

func (m *MemoryRepo) Remove(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return false, nil
	}
	delete(m.store, id)
	return true, nil
}

func (m *MemoryRepo) UpdateNonContent(_ context.Context, id, name, email string, rating float64) (*review.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	rv.Name = name
	rv.Email = email
	rv.Rating = rating
	return copyOf(rv), nil
}

func (m *MemoryRepo) UpdateContent(_ context.Context, id string, nr *review.NewReview) (*review.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	rv.Name = nr.Name
	rv.Email = nr.Email
	rv.Comment = nr.Comment
	rv.Rating = nr.Rating
	rv.Published = false
	return copyOf(rv), nil
}

func (m *MemoryRepo) ListPublished(_ context.Context) ([]*review.Review, error) {
	return m.list(true), nil
}

func (m *MemoryRepo) ListAll(_ context.Context) ([]*review.Review, error) {
	return m.list(false), nil
}

func (m *MemoryRepo) list(publishedOnly bool) []*review.Review {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*review.Review, 0, len(m.store))
	for _, rv := range m.store {
		if publishedOnly && !rv.Published {
			continue
		}
		out = append(out, copyOf(rv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func copyOf(rv *review.Review) *review.Review {
	c := *rv
	return &c
}
