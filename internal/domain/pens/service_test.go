package pens_test

import (
	"context"
	"errors"
	"testing"

	mem "farm-livestock-registry/internal/adapters/storage/memory"
	"farm-livestock-registry/internal/domain/animals"
	"farm-livestock-registry/internal/domain/pens"
)

func newSvc() *pens.Service {
	return pens.NewService(mem.NewPensRepo())
}

func TestCreate_Validation(t *testing.T) {
	svc := newSvc()
	ctx := context.Background()

	cases := []struct {
		name string
		in   pens.CreateInput
	}{
		{"empty name", pens.CreateInput{Capacity: 5, Species: "cattle"}},
		{"zero capacity", pens.CreateInput{Name: "A1", Capacity: 0, Species: "cattle"}},
		{"negative capacity", pens.CreateInput{Name: "A1", Capacity: -3, Species: "cattle"}},
		{"unknown species", pens.CreateInput{Name: "A1", Capacity: 5, Species: "unicorn"}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.in); !errors.Is(err, pens.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}

	p, err := svc.Create(ctx, pens.CreateInput{Name: "  A1  ", Capacity: 5, Species: "cattle", Location: "norte"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "A1" || p.Species != animals.SpeciesCattle || p.Capacity != 5 {
		t.Fatalf("unexpected pen: %+v", p)
	}
}

func TestUpdate_PatchSemantics(t *testing.T) {
	svc := newSvc()
	ctx := context.Background()

	p, err := svc.Create(ctx, pens.CreateInput{Name: "A1", Capacity: 5, Species: "goat", Notes: "viejo"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newCap := 8
	updated, err := svc.Update(ctx, p.ID, pens.UpdateInput{Capacity: &newCap})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	// solo cambia lo que vino; especie no es actualizable
	if updated.Capacity != 8 || updated.Name != "A1" || updated.Notes != "viejo" || updated.Species != animals.SpeciesGoat {
		t.Fatalf("unexpected pen after patch: %+v", updated)
	}

	badCap := 0
	if _, err := svc.Update(ctx, p.ID, pens.UpdateInput{Capacity: &badCap}); !errors.Is(err, pens.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero capacity, got %v", err)
	}

	if _, err := svc.Update(ctx, "ghost", pens.UpdateInput{}); !errors.Is(err, pens.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
