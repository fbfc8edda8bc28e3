package animals

import "time"

// Species define las especies soportadas por el registro.
// @Enum cattle, goat, sheep, pig, chicken
type Species string

const (
	SpeciesCattle  Species = "cattle"
	SpeciesGoat    Species = "goat"
	SpeciesSheep   Species = "sheep"
	SpeciesPig     Species = "pig"
	SpeciesChicken Species = "chicken"
)

// tagPrefixes: prefijo del tag generado por especie ("CTL-12").
var tagPrefixes = map[Species]string{
	SpeciesCattle:  "CTL",
	SpeciesGoat:    "GOT",
	SpeciesSheep:   "SHP",
	SpeciesPig:     "PIG",
	SpeciesChicken: "CHK",
}

func ParseSpecies(s string) (Species, bool) {
	sp := Species(s)
	_, ok := tagPrefixes[sp]
	return sp, ok
}

// TagPrefix devuelve el prefijo de secuencia de la especie.
func (s Species) TagPrefix() string { return tagPrefixes[s] }

// Gender define el sexo del animal.
// @Enum male, female, unknown
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

func ParseGender(s string) (Gender, bool) {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderUnknown:
		return Gender(s), true
	}
	return "", false
}

// HealthStatus es el estado sanitario del animal.
// @Enum healthy, sick, quarantine, critical, deceased
type HealthStatus string

const (
	HealthHealthy    HealthStatus = "healthy"
	HealthSick       HealthStatus = "sick"
	HealthQuarantine HealthStatus = "quarantine"
	HealthCritical   HealthStatus = "critical"
	HealthDeceased   HealthStatus = "deceased"
)

func ParseHealthStatus(s string) (HealthStatus, bool) {
	switch HealthStatus(s) {
	case HealthHealthy, HealthSick, HealthQuarantine, HealthCritical, HealthDeceased:
		return HealthStatus(s), true
	}
	return "", false
}

// Status es el estado de registro. "deleted" es borrado lógico: la fila
// nunca se elimina físicamente.
// @Enum active, deceased, deleted
type Status string

const (
	StatusActive   Status = "active"
	StatusDeceased Status = "deceased"
	StatusDeleted  Status = "deleted"
)

// Animal representa un animal registrado en la granja.
//
// DamID/SireID son referencias débiles: apuntan a otros Animal pero no son
// vínculos de propiedad. Sobreviven aunque el padre/madre pase a deceased
// o deleted (son registro histórico).
type Animal struct {
	ID  string
	Tag string // único, legible; se genera por secuencia de especie si no viene

	Species Species
	Gender  Gender

	DateOfBirth *time.Time
	DamID       *string
	SireID      *string

	PenID *string // corral actual; nil = sin asignar

	HealthStatus HealthStatus
	Status       Status

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MortalityRecord documenta la muerte de un animal. Se crea exactamente una
// vez junto con la transición a deceased y no se muta después (audit).
type MortalityRecord struct {
	ID           string
	AnimalID     string
	CauseOfDeath string
	DateOfDeath  time.Time
	ReportedBy   string
	CreatedAt    time.Time
}

// ParentRole indica por cuál de los dos padres se consulta la descendencia.
type ParentRole string

const (
	RoleDam  ParentRole = "dam"
	RoleSire ParentRole = "sire"
)

func ParseParentRole(s string) (ParentRole, bool) {
	switch ParentRole(s) {
	case RoleDam, RoleSire:
		return ParentRole(s), true
	}
	return "", false
}
