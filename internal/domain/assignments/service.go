package assignments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("assignment not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	PenID        string
	AttendantID  string // opcional
	SupervisorID string // opcional
	Notes        string
}

// Create registra la asignación como activa. Al menos uno de attendant o
// supervisor tiene que venir; una asignación sin personal no scopea nada.
func (s *Service) Create(ctx context.Context, in CreateInput) (PenAssignment, error) {
	penID := strings.TrimSpace(in.PenID)
	attendantID := strings.TrimSpace(in.AttendantID)
	supervisorID := strings.TrimSpace(in.SupervisorID)

	if penID == "" || (attendantID == "" && supervisorID == "") {
		return PenAssignment{}, ErrInvalidInput
	}

	now := s.now()
	a := PenAssignment{
		ID:        uuid.NewString(),
		PenID:     penID,
		IsActive:  true,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if attendantID != "" {
		a.AttendantID = &attendantID
	}
	if supervisorID != "" {
		a.SupervisorID = &supervisorID
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return PenAssignment{}, err
	}
	return a, nil
}

// Deactivate apaga la asignación. Idempotente: desactivar una ya inactiva
// la devuelve tal cual. La fila se conserva para auditoría.
func (s *Service) Deactivate(ctx context.Context, id string) (PenAssignment, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return PenAssignment{}, err
	}
	if !a.IsActive {
		return a, nil
	}

	a.IsActive = false
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return PenAssignment{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (PenAssignment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return PenAssignment{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPen(ctx context.Context, penID string) ([]PenAssignment, error) {
	penID = strings.TrimSpace(penID)
	if penID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPen(ctx, penID)
}
