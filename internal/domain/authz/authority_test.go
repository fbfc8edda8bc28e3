package authz_test

import (
	"context"
	"errors"
	"testing"

	mem "farm-livestock-registry/internal/adapters/storage/memory"
	"farm-livestock-registry/internal/domain/assignments"
	"farm-livestock-registry/internal/domain/authz"
)

// El repo de assignments debe satisfacer el puerto de scoping que declara
// authz sin que los paquetes de dominio se importen entre sí.
var _ authz.AssignmentLookup = mem.NewAssignmentsRepo()

type authzFixture struct {
	authority *authz.Authority
	svc       *assignments.Service
}

func newAuthzFixture() authzFixture {
	repo := mem.NewAssignmentsRepo()
	return authzFixture{
		authority: authz.NewAuthority(repo),
		svc:       assignments.NewService(repo),
	}
}

func (f authzFixture) assign(t *testing.T, penID, attendantID string) assignments.PenAssignment {
	t.Helper()
	a, err := f.svc.Create(context.Background(), assignments.CreateInput{
		PenID:       penID,
		AttendantID: attendantID,
	})
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	return a
}

func strPtr(s string) *string { return &s }

func TestBlanketAccess_ClosedWorld(t *testing.T) {
	f := newAuthzFixture()

	cases := []struct {
		role   authz.Role
		action authz.Action
		want   bool
	}{
		{authz.RoleAdmin, authz.ActionAnimalDelete, true},
		{authz.RoleFarmManager, authz.ActionAssignmentWrite, true},
		{authz.RoleVeterinaryDoctor, authz.ActionAnimalUpdateHealth, true},
		{authz.RoleVeterinaryDoctor, authz.ActionAnimalMarkDeceased, true},
		{authz.RoleVeterinaryDoctor, authz.ActionAnimalCreate, false},
		{authz.RoleVeterinaryDoctor, authz.ActionAnimalTransfer, false},
		{authz.RolePastureOfficer, authz.ActionPenRead, true},
		{authz.RolePastureOfficer, authz.ActionAnimalRead, false},
		// FarmAttendant nunca tiene blanket: todo su acceso es scoped
		{authz.RoleFarmAttendant, authz.ActionAnimalRead, false},
		{authz.RoleFarmAttendant, authz.ActionAnimalUpdateHealth, false},
	}

	for _, tc := range cases {
		if got := f.authority.HasBlanketAccess(tc.role, tc.action); got != tc.want {
			t.Errorf("HasBlanketAccess(%s, %s) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestCheckAnimal_AttendantScopedByActiveAssignment(t *testing.T) {
	f := newAuthzFixture()
	ctx := context.Background()

	f.assign(t, "pen-x", "attendant-1")

	// corral asignado: read y update_health pasan
	if err := f.authority.CheckAnimal(ctx, authz.RoleFarmAttendant, "attendant-1", authz.ActionAnimalRead, strPtr("pen-x")); err != nil {
		t.Fatalf("expected allow on assigned pen, got %v", err)
	}
	if err := f.authority.CheckAnimal(ctx, authz.RoleFarmAttendant, "attendant-1", authz.ActionAnimalUpdateHealth, strPtr("pen-x")); err != nil {
		t.Fatalf("expected allow on assigned pen, got %v", err)
	}

	// otro corral: deny
	if err := f.authority.CheckAnimal(ctx, authz.RoleFarmAttendant, "attendant-1", authz.ActionAnimalRead, strPtr("pen-y")); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("expected ErrDenied on other pen, got %v", err)
	}

	// otro attendant sobre el mismo corral: deny
	if err := f.authority.CheckAnimal(ctx, authz.RoleFarmAttendant, "attendant-2", authz.ActionAnimalRead, strPtr("pen-x")); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("expected ErrDenied for unassigned attendant, got %v", err)
	}

	// acción fuera del set scoped: deny aunque el corral esté asignado
	if err := f.authority.CheckAnimal(ctx, authz.RoleFarmAttendant, "attendant-1", authz.ActionAnimalMarkDeceased, strPtr("pen-x")); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("expected ErrDenied for unscoped action, got %v", err)
	}

	// animal sin corral: no hay contra qué scopear, deny
	if err := f.authority.CheckAnimal(ctx, authz.RoleFarmAttendant, "attendant-1", authz.ActionAnimalRead, nil); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("expected ErrDenied for penless animal, got %v", err)
	}
}

func TestCheckAnimal_DeactivationTakesEffectOnNextCheck(t *testing.T) {
	f := newAuthzFixture()
	ctx := context.Background()

	a := f.assign(t, "pen-x", "attendant-1")

	if err := f.authority.CheckAnimal(ctx, authz.RoleFarmAttendant, "attendant-1", authz.ActionAnimalRead, strPtr("pen-x")); err != nil {
		t.Fatalf("expected allow before deactivation, got %v", err)
	}

	if _, err := f.svc.Deactivate(ctx, a.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// sin cache: el siguiente chequeo ya ve la asignación apagada
	if err := f.authority.CheckAnimal(ctx, authz.RoleFarmAttendant, "attendant-1", authz.ActionAnimalRead, strPtr("pen-x")); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("expected ErrDenied after deactivation, got %v", err)
	}
}

func TestCheckAnimal_BlanketRolesIgnoreAssignments(t *testing.T) {
	f := newAuthzFixture()
	ctx := context.Background()

	// sin ninguna asignación: los roles blanket pasan igual
	if err := f.authority.CheckAnimal(ctx, authz.RoleAdmin, "admin-1", authz.ActionAnimalDelete, nil); err != nil {
		t.Fatalf("expected admin allow, got %v", err)
	}
	if err := f.authority.CheckAnimal(ctx, authz.RoleVeterinaryDoctor, "vet-1", authz.ActionAnimalUpdateHealth, strPtr("pen-x")); err != nil {
		t.Fatalf("expected vet allow, got %v", err)
	}
	if err := f.authority.CheckAnimal(ctx, authz.RolePastureOfficer, "officer-1", authz.ActionAnimalRead, strPtr("pen-x")); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("expected pasture officer deny, got %v", err)
	}
}

func TestCheckPen_AttendantReadsOnlyAssignedPen(t *testing.T) {
	f := newAuthzFixture()
	ctx := context.Background()

	f.assign(t, "pen-x", "attendant-1")

	if err := f.authority.CheckPen(ctx, authz.RoleFarmAttendant, "attendant-1", authz.ActionPenRead, "pen-x"); err != nil {
		t.Fatalf("expected allow on assigned pen, got %v", err)
	}
	if err := f.authority.CheckPen(ctx, authz.RoleFarmAttendant, "attendant-1", authz.ActionPenRead, "pen-y"); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("expected ErrDenied on other pen, got %v", err)
	}
	if err := f.authority.CheckPen(ctx, authz.RoleFarmAttendant, "attendant-1", authz.ActionPenWrite, "pen-x"); !errors.Is(err, authz.ErrDenied) {
		t.Fatalf("expected ErrDenied on pen write, got %v", err)
	}
}

func TestParseRole_RejectsUnknown(t *testing.T) {
	if _, ok := authz.ParseRole("superuser"); ok {
		t.Fatal("expected unknown role to be rejected")
	}
	if _, ok := authz.ParseRole(""); ok {
		t.Fatal("expected empty role to be rejected")
	}
	if r, ok := authz.ParseRole("farm_attendant"); !ok || r != authz.RoleFarmAttendant {
		t.Fatalf("expected farm_attendant, got %q ok=%v", r, ok)
	}
}
