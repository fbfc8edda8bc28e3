package animals

import (
	"context"
	"time"
)

// SearchFilter combina filtros de igualdad con búsqueda por substring.
// Los punteros nil significan "sin filtrar". FreeText matchea tag y notes
// case-insensitive. Los borrados lógicos quedan siempre fuera.
type SearchFilter struct {
	Species      *Species
	HealthStatus *HealthStatus
	PenID        *string
	FreeText     string
}

// Repository es el contrato contra el store. Las operaciones que afectan
// capacidad (Admit, Transfer) son atómicas dentro del store: la verificación
// de especie/capacidad y la escritura ocurren bajo el control de concurrencia
// del propio store (transacción/lock de fila), nunca como check-then-act
// separado en capas superiores.
type Repository interface {
	// Admit inserta el animal. Si a.PenID != nil valida existencia del
	// corral, especie y capacidad; si a.Tag == "" asigna el siguiente tag
	// de la secuencia de su especie. Todo en una sola operación indivisible.
	// Puede devolver ErrConflict bajo contención; el servicio reintenta.
	Admit(ctx context.Context, a Animal) (Animal, error)

	// Transfer mueve el animal al corral destino con la misma disciplina
	// atómica. Transferir al mismo corral es un no-op exitoso.
	Transfer(ctx context.Context, animalID, penID string, at time.Time) (Animal, error)

	GetByID(ctx context.Context, id string) (Animal, error)
	Update(ctx context.Context, a Animal) error

	// MarkDeceased aplica status=deceased + health_status=deceased e inserta
	// el MortalityRecord como unidad atómica: o ambas escrituras o ninguna.
	MarkDeceased(ctx context.Context, animalID string, rec MortalityRecord, at time.Time) (Animal, error)
	MortalityByAnimal(ctx context.Context, animalID string) (MortalityRecord, error)

	// ListByParent devuelve los no-borrados cuyo dam_id o sire_id (según
	// role) es parentID, ordenados por date_of_birth descendente.
	ListByParent(ctx context.Context, parentID string, role ParentRole) ([]Animal, error)

	// CountActiveInPen es la ocupación actual del corral.
	CountActiveInPen(ctx context.Context, penID string) (int, error)

	// Search devuelve la página pedida y el total bajo el mismo predicado.
	Search(ctx context.Context, f SearchFilter, offset, limit int) ([]Animal, int, error)
}
