package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"farm-livestock-registry/internal/domain/pens"
)

type pensRepo struct {
	mu   sync.RWMutex
	byID map[string]pens.Pen
}

func NewPensRepo() pens.Repository {
	return &pensRepo{
		byID: make(map[string]pens.Pen),
	}
}

func (r *pensRepo) Create(ctx context.Context, p pens.Pen) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pen id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pen already exists")
	}
	for _, other := range r.byID {
		if other.Name == p.Name {
			return errors.New("pen name already in use")
		}
	}
	r.byID[p.ID] = p
	return nil
}

func (r *pensRepo) Update(ctx context.Context, p pens.Pen) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return pens.ErrNotFound
	}
	for _, other := range r.byID {
		if other.ID != p.ID && other.Name == p.Name {
			return errors.New("pen name already in use")
		}
	}
	r.byID[p.ID] = p
	return nil
}

func (r *pensRepo) GetByID(ctx context.Context, id string) (pens.Pen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return pens.Pen{}, pens.ErrNotFound
	}
	return p, nil
}

func (r *pensRepo) List(ctx context.Context) ([]pens.Pen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pens.Pen, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
