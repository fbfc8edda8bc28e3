package animals

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UpdateHealthStatus cambia el estado sanitario de un animal activo.
// Es puramente informativo: no tiene más efecto que la fila actualizada.
// "deceased" no se setea por acá; eso es MarkDeceased.
func (s *Service) UpdateHealthStatus(ctx context.Context, animalID, status string, notes *string) (Animal, error) {
	hs, ok := ParseHealthStatus(strings.TrimSpace(status))
	if !ok || hs == HealthDeceased {
		return Animal{}, ErrInvalidInput
	}

	a, err := s.Get(ctx, animalID)
	if err != nil {
		return Animal{}, err
	}
	if a.Status != StatusActive {
		return Animal{}, ErrAnimalNotActive
	}

	a.HealthStatus = hs
	if notes != nil {
		a.Notes = strings.TrimSpace(*notes)
	}
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// MarkDeceased es la transición terminal: status=deceased,
// health_status=deceased y el MortalityRecord se escriben juntos o no se
// escribe nada. Sobre un animal ya fallecido devuelve ErrAlreadyDeceased
// sin duplicar el registro.
func (s *Service) MarkDeceased(ctx context.Context, animalID, cause string, dateOfDeath time.Time, reportedBy string) (Animal, error) {
	animalID = strings.TrimSpace(animalID)
	cause = strings.TrimSpace(cause)
	reportedBy = strings.TrimSpace(reportedBy)

	if animalID == "" || cause == "" || reportedBy == "" || dateOfDeath.IsZero() {
		return Animal{}, ErrInvalidInput
	}

	rec := MortalityRecord{
		ID:           uuid.NewString(),
		AnimalID:     animalID,
		CauseOfDeath: cause,
		DateOfDeath:  dateOfDeath,
		ReportedBy:   reportedBy,
		CreatedAt:    s.now(),
	}

	return s.repo.MarkDeceased(ctx, animalID, rec, s.now())
}

// MortalityRecordOf devuelve el registro de mortalidad del animal.
func (s *Service) MortalityRecordOf(ctx context.Context, animalID string) (MortalityRecord, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return MortalityRecord{}, ErrAnimalNotFound
	}
	return s.repo.MortalityByAnimal(ctx, animalID)
}

// Delete es borrado lógico: la fila queda con status=deleted y deja de ser
// visible (y de contar ocupación), pero nunca se elimina físicamente.
func (s *Service) Delete(ctx context.Context, animalID string) error {
	a, err := s.Get(ctx, animalID)
	if err != nil {
		return err
	}

	a.Status = StatusDeleted
	a.UpdatedAt = s.now()
	return s.repo.Update(ctx, a)
}
