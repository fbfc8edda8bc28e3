package pens

import (
	"time"

	"farm-livestock-registry/internal/domain/animals"
)

// Pen es data de referencia administrada por administradores: cambia mucho
// menos que los animales que contiene. La especie queda fija al crearlo.
//
// Invariante central del sistema: la cantidad de animales activos con
// pen_id = este corral nunca supera Capacity. El corral no lo verifica por
// sí mismo; lo hace la admisión atómica del store de animales.
type Pen struct {
	ID       string
	Name     string // único
	Capacity int    // > 0
	Species  animals.Species
	Location string
	Notes    string

	CreatedAt time.Time
	UpdatedAt time.Time
}
