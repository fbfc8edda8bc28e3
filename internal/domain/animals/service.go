package animals

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// maxAdmissionAttempts acota los reintentos ante ErrConflict antes de
// rendirse con ErrConflictExhausted.
const maxAdmissionAttempts = 3

type Service struct {
	repo Repository
	now  func() time.Time

	retryInitial time.Duration
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:         repo,
		now:          time.Now,
		retryInitial: 50 * time.Millisecond,
	}
}

type CreateInput struct {
	Tag         string // opcional; si viene vacío se genera por secuencia
	Species     string
	Gender      string
	DateOfBirth *time.Time
	DamID       string // opcional
	SireID      string // opcional
	PenID       string // opcional
	Notes       string
}

// Create valida el input y delega la admisión atómica (corral + tag) al
// repositorio, con reintento acotado ante contención transitoria.
func (s *Service) Create(ctx context.Context, in CreateInput) (Animal, error) {
	species, ok := ParseSpecies(strings.TrimSpace(in.Species))
	if !ok {
		return Animal{}, ErrInvalidInput
	}

	gender := GenderUnknown
	if g := strings.TrimSpace(in.Gender); g != "" {
		gender, ok = ParseGender(g)
		if !ok {
			return Animal{}, ErrInvalidInput
		}
	}

	now := s.now()
	a := Animal{
		ID:           uuid.NewString(),
		Tag:          strings.TrimSpace(in.Tag),
		Species:      species,
		Gender:       gender,
		DateOfBirth:  in.DateOfBirth,
		HealthStatus: HealthHealthy,
		Status:       StatusActive,
		Notes:        strings.TrimSpace(in.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if penID := strings.TrimSpace(in.PenID); penID != "" {
		a.PenID = &penID
	}

	// Referencias débiles a padres: deben existir al momento de escribir,
	// y un animal no puede ser su propio padre. Que el padre luego pase a
	// deceased/deleted no rompe el vínculo.
	var err error
	if a.DamID, err = s.resolveParent(ctx, in.DamID, a.ID); err != nil {
		return Animal{}, err
	}
	if a.SireID, err = s.resolveParent(ctx, in.SireID, a.ID); err != nil {
		return Animal{}, err
	}

	return s.withAdmissionRetry(ctx, func() (Animal, error) {
		return s.repo.Admit(ctx, a)
	})
}

// Transfer mueve el animal al corral destino. Mismo corral = identidad.
func (s *Service) Transfer(ctx context.Context, animalID, newPenID string) (Animal, error) {
	animalID = strings.TrimSpace(animalID)
	newPenID = strings.TrimSpace(newPenID)
	if animalID == "" || newPenID == "" {
		return Animal{}, ErrInvalidInput
	}

	return s.withAdmissionRetry(ctx, func() (Animal, error) {
		return s.repo.Transfer(ctx, animalID, newPenID, s.now())
	})
}

// Get devuelve el animal; los borrados lógicos se reportan como not found.
func (s *Service) Get(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrAnimalNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}
	if a.Status == StatusDeleted {
		return Animal{}, ErrAnimalNotFound
	}
	return a, nil
}

// Occupancy es el conteo de animales activos en el corral.
func (s *Service) Occupancy(ctx context.Context, penID string) (int, error) {
	penID = strings.TrimSpace(penID)
	if penID == "" {
		return 0, ErrPenNotFound
	}
	return s.repo.CountActiveInPen(ctx, penID)
}

func (s *Service) resolveParent(ctx context.Context, raw, selfID string) (*string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return nil, nil
	}
	if id == selfID {
		return nil, ErrInvalidInput
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrAnimalNotFound) {
			return nil, ErrAnimalNotFound
		}
		return nil, err
	}
	return &id, nil
}

// withAdmissionRetry reintenta op mientras el store reporte ErrConflict,
// hasta maxAdmissionAttempts intentos con backoff exponencial. Cualquier
// otro error corta de inmediato.
func (s *Service) withAdmissionRetry(ctx context.Context, op func() (Animal, error)) (Animal, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryInitial
	bo.MaxInterval = 500 * time.Millisecond

	var out Animal
	err := backoff.Retry(func() error {
		a, err := op()
		if err != nil {
			if errors.Is(err, ErrConflict) {
				return err
			}
			return backoff.Permanent(err)
		}
		out = a
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, maxAdmissionAttempts-1), ctx))

	if err != nil {
		if errors.Is(err, ErrConflict) {
			return Animal{}, ErrConflictExhausted
		}
		return Animal{}, err
	}
	return out, nil
}
