package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"farm-livestock-registry/internal/domain/assignments"
)

type assignmentsRepo struct {
	mu   sync.RWMutex
	byID map[string]assignments.PenAssignment
}

func NewAssignmentsRepo() assignments.Repository {
	return &assignmentsRepo{
		byID: make(map[string]assignments.PenAssignment),
	}
}

func (r *assignmentsRepo) Create(ctx context.Context, a assignments.PenAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("assignment id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("assignment already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *assignmentsRepo) Update(ctx context.Context, a assignments.PenAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return assignments.ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *assignmentsRepo) GetByID(ctx context.Context, id string) (assignments.PenAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return assignments.PenAssignment{}, assignments.ErrNotFound
	}
	return a, nil
}

func (r *assignmentsRepo) ListByPen(ctx context.Context, penID string) ([]assignments.PenAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]assignments.PenAssignment, 0)
	for _, a := range r.byID {
		if a.PenID == penID {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *assignmentsRepo) HasActiveAssignment(ctx context.Context, penID, attendantID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.PenID != penID || !a.IsActive {
			continue
		}
		if a.AttendantID != nil && *a.AttendantID == attendantID {
			return true, nil
		}
	}
	return false, nil
}
