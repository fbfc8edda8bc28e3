package authz

// Role es el rol autenticado del caller. Viene como string desde la capa de
// auth y se rechaza en el borde si no es uno de estos valores.
// @Enum admin, farm_manager, veterinary_doctor, pasture_officer, farm_attendant
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleFarmManager      Role = "farm_manager"
	RoleVeterinaryDoctor Role = "veterinary_doctor"
	RolePastureOfficer   Role = "pasture_officer"
	RoleFarmAttendant    Role = "farm_attendant"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleFarmManager, RoleVeterinaryDoctor, RolePastureOfficer, RoleFarmAttendant:
		return Role(s), true
	}
	return "", false
}

// Action identifica recurso+verbo para la tabla de políticas.
type Action string

const (
	ActionAnimalRead         Action = "animal:read"
	ActionAnimalCreate       Action = "animal:create"
	ActionAnimalTransfer     Action = "animal:transfer"
	ActionAnimalUpdateHealth Action = "animal:update_health"
	ActionAnimalMarkDeceased Action = "animal:mark_deceased"
	ActionAnimalDelete       Action = "animal:delete"
	ActionAnimalSearch       Action = "animal:search"

	ActionPenRead  Action = "pen:read"
	ActionPenWrite Action = "pen:write"

	ActionAssignmentRead  Action = "assignment:read"
	ActionAssignmentWrite Action = "assignment:write"
)

// policy es mundo cerrado: cada par rol/acción permitido está listado
// explícitamente; la ausencia de regla es deny, nunca un allow implícito.
// FarmAttendant no aparece acá porque su acceso a animales va scoped por
// asignación activa de corral (ver Authority), no por blanket.
var policy = map[Role]map[Action]bool{
	RoleAdmin: {
		ActionAnimalRead: true, ActionAnimalCreate: true, ActionAnimalTransfer: true,
		ActionAnimalUpdateHealth: true, ActionAnimalMarkDeceased: true,
		ActionAnimalDelete: true, ActionAnimalSearch: true,
		ActionPenRead: true, ActionPenWrite: true,
		ActionAssignmentRead: true, ActionAssignmentWrite: true,
	},
	RoleFarmManager: {
		ActionAnimalRead: true, ActionAnimalCreate: true, ActionAnimalTransfer: true,
		ActionAnimalUpdateHealth: true, ActionAnimalMarkDeceased: true,
		ActionAnimalDelete: true, ActionAnimalSearch: true,
		ActionPenRead: true, ActionPenWrite: true,
		ActionAssignmentRead: true, ActionAssignmentWrite: true,
	},
	RoleVeterinaryDoctor: {
		ActionAnimalRead: true, ActionAnimalUpdateHealth: true,
		ActionAnimalMarkDeceased: true, ActionAnimalSearch: true,
		ActionPenRead: true,
	},
	RolePastureOfficer: {
		ActionPenRead: true,
	},
}

// attendantScoped: acciones que un FarmAttendant puede ejercer sobre los
// animales de un corral con asignación activa a su nombre.
var attendantScoped = map[Action]bool{
	ActionAnimalRead:         true,
	ActionAnimalUpdateHealth: true,
}
