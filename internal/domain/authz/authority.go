package authz

import (
	"context"
	"errors"
	"strings"
)

// ErrDenied es terminal y deliberadamente opaco: no dice si el recurso
// existe, solo que el caller no puede verlo/tocarlo.
var ErrDenied = errors.New("access denied")

// AssignmentLookup es el puerto de scoping: responde si un attendant tiene
// asignación activa sobre un corral. Lo satisfacen los repos de assignments
// de cada adapter; declararlo acá evita que authz dependa de ese paquete.
type AssignmentLookup interface {
	HasActiveAssignment(ctx context.Context, penID, attendantID string) (bool, error)
}

// Authority decide accesos contra (rol, caller, recurso). No guarda estado:
// la asignación de corral se consulta fresca en cada chequeo, porque el
// corral de un animal puede cambiar entre requests.
type Authority struct {
	assignments AssignmentLookup
}

func NewAuthority(lookup AssignmentLookup) *Authority {
	return &Authority{assignments: lookup}
}

// HasBlanketAccess responde si el rol tiene la acción permitida sin scoping
// (Admin/FarmManager sobre todo; Vet sobre lectura/salud; etc.).
func (a *Authority) HasBlanketAccess(role Role, action Action) bool {
	return policy[role][action]
}

// CheckAnimal autoriza una acción sobre un animal dado el corral actual del
// animal (penID nil = sin corral). FarmAttendant solo pasa si el corral
// tiene una asignación activa con attendant_id = caller; sin corral o sin
// asignación activa es deny.
func (a *Authority) CheckAnimal(ctx context.Context, role Role, callerID string, action Action, penID *string) error {
	if a.HasBlanketAccess(role, action) {
		return nil
	}

	if role != RoleFarmAttendant || !attendantScoped[action] {
		return ErrDenied
	}
	if penID == nil || strings.TrimSpace(*penID) == "" {
		return ErrDenied
	}
	if strings.TrimSpace(callerID) == "" {
		return ErrDenied
	}

	ok, err := a.assignments.HasActiveAssignment(ctx, *penID, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDenied
	}
	return nil
}

// CheckPen autoriza una acción sobre un corral. Un attendant puede leer el
// corral que tiene asignado activo.
func (a *Authority) CheckPen(ctx context.Context, role Role, callerID string, action Action, penID string) error {
	if a.HasBlanketAccess(role, action) {
		return nil
	}

	if role != RoleFarmAttendant || action != ActionPenRead {
		return ErrDenied
	}
	penID = strings.TrimSpace(penID)
	if penID == "" || strings.TrimSpace(callerID) == "" {
		return ErrDenied
	}

	ok, err := a.assignments.HasActiveAssignment(ctx, penID, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDenied
	}
	return nil
}
