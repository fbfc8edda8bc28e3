package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"farm-livestock-registry/internal/domain/animals"
	"farm-livestock-registry/internal/domain/pens"
)

var (
	ErrNotFound = errors.New("not found")
)

// animalsRepo guarda todo bajo un solo mutex: acá el repo ES el store, así
// que su lock es el control de concurrencia que exige la admisión atómica
// (chequeo de capacidad + insert como unidad indivisible).
type animalsRepo struct {
	mu        sync.Mutex
	byID      map[string]animals.Animal
	byTag     map[string]string // tag -> animal id
	mortality map[string]animals.MortalityRecord
	tagSeq    map[animals.Species]int

	pens pens.Repository
}

func NewAnimalsRepo(pensRepo pens.Repository) animals.Repository {
	return &animalsRepo{
		byID:      make(map[string]animals.Animal),
		byTag:     make(map[string]string),
		mortality: make(map[string]animals.MortalityRecord),
		tagSeq:    make(map[animals.Species]int),
		pens:      pensRepo,
	}
}

func (r *animalsRepo) Admit(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	if strings.TrimSpace(a.ID) == "" {
		return animals.Animal{}, errors.New("animal id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if a.PenID != nil {
		if err := r.checkPenLocked(ctx, *a.PenID, a.Species); err != nil {
			return animals.Animal{}, err
		}
	}

	if a.Tag == "" {
		// La secuencia salta los números que un tag explícito ya ocupó:
		// un tag generado jamás puede pisar uno existente.
		for {
			r.tagSeq[a.Species]++
			tag := fmt.Sprintf("%s-%d", a.Species.TagPrefix(), r.tagSeq[a.Species])
			if _, taken := r.byTag[tag]; !taken {
				a.Tag = tag
				break
			}
		}
	} else if _, taken := r.byTag[a.Tag]; taken {
		return animals.Animal{}, animals.ErrDuplicateTag
	}

	if _, exists := r.byID[a.ID]; exists {
		return animals.Animal{}, errors.New("animal already exists")
	}

	r.byID[a.ID] = a
	r.byTag[a.Tag] = a.ID
	return a, nil
}

func (r *animalsRepo) Transfer(ctx context.Context, animalID, penID string, at time.Time) (animals.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[animalID]
	if !ok || a.Status == animals.StatusDeleted {
		return animals.Animal{}, animals.ErrAnimalNotFound
	}
	if a.Status != animals.StatusActive {
		return animals.Animal{}, animals.ErrAnimalNotActive
	}

	// Mismo corral: operación identidad, exitosa.
	if a.PenID != nil && *a.PenID == penID {
		return a, nil
	}

	if err := r.checkPenLocked(ctx, penID, a.Species); err != nil {
		return animals.Animal{}, err
	}

	a.PenID = &penID
	a.UpdatedAt = at
	r.byID[animalID] = a
	return a, nil
}

// checkPenLocked valida existencia, especie y capacidad del corral destino.
// Se llama con r.mu tomado: la ocupación no puede cambiar entre el conteo
// y la escritura del caller.
func (r *animalsRepo) checkPenLocked(ctx context.Context, penID string, species animals.Species) error {
	p, err := r.pens.GetByID(ctx, penID)
	if err != nil {
		return animals.ErrPenNotFound
	}
	if p.Species != species {
		return animals.ErrSpeciesMismatch
	}
	if r.countActiveLocked(penID) >= p.Capacity {
		return animals.ErrCapacityExceeded
	}
	return nil
}

func (r *animalsRepo) countActiveLocked(penID string) int {
	n := 0
	for _, a := range r.byID {
		if a.PenID != nil && *a.PenID == penID && a.Status == animals.StatusActive {
			n++
		}
	}
	return n
}

func (r *animalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, animals.ErrAnimalNotFound
	}
	return a, nil
}

func (r *animalsRepo) Update(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return animals.ErrAnimalNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalsRepo) MarkDeceased(ctx context.Context, animalID string, rec animals.MortalityRecord, at time.Time) (animals.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[animalID]
	if !ok || a.Status == animals.StatusDeleted {
		return animals.Animal{}, animals.ErrAnimalNotFound
	}
	if a.Status == animals.StatusDeceased {
		return animals.Animal{}, animals.ErrAlreadyDeceased
	}

	// Bajo el mismo lock: o se aplican las dos escrituras o ninguna.
	a.Status = animals.StatusDeceased
	a.HealthStatus = animals.HealthDeceased
	a.UpdatedAt = at
	r.byID[animalID] = a
	r.mortality[animalID] = rec

	return a, nil
}

func (r *animalsRepo) MortalityByAnimal(ctx context.Context, animalID string) (animals.MortalityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.mortality[animalID]
	if !ok {
		return animals.MortalityRecord{}, animals.ErrAnimalNotFound
	}
	return rec, nil
}

func (r *animalsRepo) ListByParent(ctx context.Context, parentID string, role animals.ParentRole) ([]animals.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.Status == animals.StatusDeleted {
			continue
		}
		var ref *string
		if role == animals.RoleDam {
			ref = a.DamID
		} else {
			ref = a.SireID
		}
		if ref != nil && *ref == parentID {
			out = append(out, a)
		}
	}

	// date_of_birth desc; sin fecha al final
	sort.Slice(out, func(i, j int) bool {
		bi, bj := out[i].DateOfBirth, out[j].DateOfBirth
		switch {
		case bi == nil:
			return false
		case bj == nil:
			return true
		default:
			return bi.After(*bj)
		}
	})

	return out, nil
}

func (r *animalsRepo) CountActiveInPen(ctx context.Context, penID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countActiveLocked(penID), nil
}

func (r *animalsRepo) Search(ctx context.Context, f animals.SearchFilter, offset, limit int) ([]animals.Animal, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if matchesFilter(a, f) {
			matches = append(matches, a)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	if offset >= total {
		return []animals.Animal{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matches[offset:end], total, nil
}

// matchesFilter es el único predicado de búsqueda: lo comparten la página
// y el total, así nunca divergen.
func matchesFilter(a animals.Animal, f animals.SearchFilter) bool {
	if a.Status == animals.StatusDeleted {
		return false
	}
	if f.Species != nil && a.Species != *f.Species {
		return false
	}
	if f.HealthStatus != nil && a.HealthStatus != *f.HealthStatus {
		return false
	}
	if f.PenID != nil && (a.PenID == nil || *a.PenID != *f.PenID) {
		return false
	}
	if f.FreeText != "" {
		q := strings.ToLower(f.FreeText)
		if !strings.Contains(strings.ToLower(a.Tag), q) &&
			!strings.Contains(strings.ToLower(a.Notes), q) {
			return false
		}
	}
	return true
}
