package animals

import (
	"context"
	"errors"
	"strings"
)

// Offspring devuelve los no-borrados que referencian a parentID como dam o
// sire, más recientes primero.
func (s *Service) Offspring(ctx context.Context, parentID string, role ParentRole) ([]Animal, error) {
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return nil, ErrAnimalNotFound
	}
	if role != RoleDam && role != RoleSire {
		return nil, ErrInvalidInput
	}

	if _, err := s.repo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.repo.ListByParent(ctx, parentID, role)
}

// Parents resuelve las referencias dam/sire del animal. Cualquiera de las
// dos puede ser nil (nunca son obligatorias). Un padre deceased o borrado
// se devuelve igual: el vínculo genealógico es registro histórico, no una
// relación de propiedad viva.
func (s *Service) Parents(ctx context.Context, animalID string) (dam *Animal, sire *Animal, err error) {
	a, err := s.Get(ctx, animalID)
	if err != nil {
		return nil, nil, err
	}

	if a.DamID != nil {
		if d, err := s.repo.GetByID(ctx, *a.DamID); err == nil {
			dam = &d
		} else if !errors.Is(err, ErrAnimalNotFound) {
			return nil, nil, err
		}
	}
	if a.SireID != nil {
		if sr, err := s.repo.GetByID(ctx, *a.SireID); err == nil {
			sire = &sr
		} else if !errors.Is(err, ErrAnimalNotFound) {
			return nil, nil, err
		}
	}
	return dam, sire, nil
}
