package assignments

import "time"

// PenAssignment vincula un corral con su personal. Para el scoping de
// acceso solo cuentan las asignaciones con IsActive=true; las inactivas se
// conservan para auditoría pero no otorgan acceso.
type PenAssignment struct {
	ID    string
	PenID string

	AttendantID  *string
	SupervisorID *string

	IsActive bool
	Notes    string

	CreatedAt time.Time
	UpdatedAt time.Time
}
