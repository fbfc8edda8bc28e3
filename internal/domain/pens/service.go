package pens

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"farm-livestock-registry/internal/domain/animals"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pen not found")
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
	Name     string
	Capacity int
	Species  string
	Location string
	Notes    string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pen, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Capacity <= 0 {
		return Pen{}, ErrInvalidInput
	}
	species, ok := animals.ParseSpecies(strings.TrimSpace(in.Species))
	if !ok {
		return Pen{}, ErrInvalidInput
	}

	now := s.now()
	p := Pen{
		ID:        uuid.NewString(),
		Name:      name,
		Capacity:  in.Capacity,
		Species:   species,
		Location:  strings.TrimSpace(in.Location),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pen{}, err
	}
	return p, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar. La especie no se puede
	// cambiar una vez creado el corral.
	Name     *string
	Capacity *int
	Location *string
	Notes    *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Pen, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pen{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pen{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 {
			return Pen{}, ErrInvalidInput
		}
		p.Capacity = *in.Capacity
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pen{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pen, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pen{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Pen, error) {
	return s.repo.List(ctx)
}
