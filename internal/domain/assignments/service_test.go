package assignments_test

import (
	"context"
	"errors"
	"testing"

	mem "farm-livestock-registry/internal/adapters/storage/memory"
	"farm-livestock-registry/internal/domain/assignments"
)

func newSvc() *assignments.Service {
	return assignments.NewService(mem.NewAssignmentsRepo())
}

func TestCreate_RequiresPenAndSomeone(t *testing.T) {
	svc := newSvc()
	ctx := context.Background()

	if _, err := svc.Create(ctx, assignments.CreateInput{AttendantID: "att-1"}); !errors.Is(err, assignments.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without pen, got %v", err)
	}
	if _, err := svc.Create(ctx, assignments.CreateInput{PenID: "pen-1"}); !errors.Is(err, assignments.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without attendant/supervisor, got %v", err)
	}

	a, err := svc.Create(ctx, assignments.CreateInput{PenID: "pen-1", SupervisorID: "sup-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !a.IsActive {
		t.Fatal("expected new assignment to be active")
	}
	if a.AttendantID != nil || a.SupervisorID == nil || *a.SupervisorID != "sup-1" {
		t.Fatalf("unexpected people on assignment: %+v", a)
	}
}

func TestDeactivate_Idempotent(t *testing.T) {
	svc := newSvc()
	ctx := context.Background()

	a, err := svc.Create(ctx, assignments.CreateInput{PenID: "pen-1", AttendantID: "att-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.Deactivate(ctx, a.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if first.IsActive {
		t.Fatal("expected inactive after deactivate")
	}

	// repetir no es error y no cambia nada
	second, err := svc.Deactivate(ctx, a.ID)
	if err != nil {
		t.Fatalf("second deactivate: %v", err)
	}
	if second.IsActive || second.UpdatedAt != first.UpdatedAt {
		t.Fatalf("expected no-op on repeat, got %+v vs %+v", second, first)
	}

	// la fila sigue existiendo para auditoría
	got, err := svc.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get after deactivate: %v", err)
	}
	if got.IsActive {
		t.Fatal("expected stored row inactive")
	}
}

func TestDeactivate_UnknownID(t *testing.T) {
	svc := newSvc()

	if _, err := svc.Deactivate(context.Background(), "ghost"); !errors.Is(err, assignments.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByPen_FiltersByPen(t *testing.T) {
	svc := newSvc()
	ctx := context.Background()

	if _, err := svc.Create(ctx, assignments.CreateInput{PenID: "pen-1", AttendantID: "att-1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, assignments.CreateInput{PenID: "pen-2", AttendantID: "att-2"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, err := svc.ListByPen(ctx, "pen-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].PenID != "pen-1" {
		t.Fatalf("expected single pen-1 assignment, got %+v", items)
	}
}
