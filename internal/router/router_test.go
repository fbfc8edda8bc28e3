package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"farm-livestock-registry/internal/router"
)

// doReq arma el request con la identidad dev (X-Debug-*) y devuelve el
// recorder. body nil = sin cuerpo.
func doReq(t *testing.T, h http.Handler, method, path, userID, role string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-Debug-Role", role)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

type penDTO struct {
	ID       string `json:"id"`
	Capacity int    `json:"capacity"`
	Species  string `json:"species"`
}

type animalDTO struct {
	ID           string  `json:"id"`
	Tag          string  `json:"tag"`
	PenID        *string `json:"pen_id"`
	HealthStatus string  `json:"health_status"`
	Status       string  `json:"status"`
}

type assignmentDTO struct {
	ID       string `json:"id"`
	IsActive bool   `json:"is_active"`
}

func mustCreatePen(t *testing.T, h http.Handler, name, species string, capacity int) penDTO {
	t.Helper()
	rec := doReq(t, h, http.MethodPost, "/pens", "admin-1", "admin", map[string]any{
		"name": name, "species": species, "capacity": capacity,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create pen: status %d body %s", rec.Code, rec.Body.String())
	}
	var p penDTO
	decode(t, rec, &p)
	return p
}

func mustCreateAnimal(t *testing.T, h http.Handler, species, penID string) animalDTO {
	t.Helper()
	rec := doReq(t, h, http.MethodPost, "/animals", "admin-1", "admin", map[string]any{
		"species": species, "pen_id": penID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create animal: status %d body %s", rec.Code, rec.Body.String())
	}
	var a animalDTO
	decode(t, rec, &a)
	return a
}

func TestCapacityScenarioOverHTTP(t *testing.T) {
	h := router.NewRouter(router.Options{})

	penA := mustCreatePen(t, h, "A1", "cattle", 2)
	penB := mustCreatePen(t, h, "A2", "cattle", 10)

	first := mustCreateAnimal(t, h, "cattle", penA.ID)
	mustCreateAnimal(t, h, "cattle", penA.ID)

	// corral lleno: la admisión rechaza con 409
	rec := doReq(t, h, http.MethodPost, "/animals", "admin-1", "admin", map[string]any{
		"species": "cattle", "pen_id": penA.ID,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on full pen, got %d: %s", rec.Code, rec.Body.String())
	}

	// especie equivocada también es 409
	rec = doReq(t, h, http.MethodPost, "/animals", "admin-1", "admin", map[string]any{
		"species": "goat", "pen_id": penB.ID,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on species mismatch, got %d: %s", rec.Code, rec.Body.String())
	}

	// transferir una afuera libera el cupo
	rec = doReq(t, h, http.MethodPost, "/animals/"+first.ID+"/transfer", "admin-1", "admin", map[string]any{
		"pen_id": penB.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer: status %d body %s", rec.Code, rec.Body.String())
	}

	mustCreateAnimal(t, h, "cattle", penA.ID)

	rec = doReq(t, h, http.MethodGet, "/pens/"+penA.ID+"/occupancy", "admin-1", "admin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("occupancy: status %d", rec.Code)
	}
	var occ struct {
		Capacity int `json:"capacity"`
		Occupied int `json:"occupied"`
	}
	decode(t, rec, &occ)
	if occ.Capacity != 2 || occ.Occupied != 2 {
		t.Fatalf("expected 2/2, got %d/%d", occ.Occupied, occ.Capacity)
	}
}

func TestAttendantScopingOverHTTP(t *testing.T) {
	h := router.NewRouter(router.Options{})

	penX := mustCreatePen(t, h, "X", "goat", 5)
	penY := mustCreatePen(t, h, "Y", "goat", 5)
	inX := mustCreateAnimal(t, h, "goat", penX.ID)
	inY := mustCreateAnimal(t, h, "goat", penY.ID)

	rec := doReq(t, h, http.MethodPost, "/pen-assignments", "admin-1", "admin", map[string]any{
		"pen_id": penX.ID, "attendant_id": "att-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create assignment: status %d body %s", rec.Code, rec.Body.String())
	}
	var asg assignmentDTO
	decode(t, rec, &asg)

	// corral asignado: lectura y cambio de salud pasan
	if rec = doReq(t, h, http.MethodGet, "/animals/"+inX.ID, "att-1", "farm_attendant", nil); rec.Code != http.StatusOK {
		t.Fatalf("attendant read assigned pen: status %d", rec.Code)
	}
	rec = doReq(t, h, http.MethodPatch, "/animals/"+inX.ID+"/health", "att-1", "farm_attendant", map[string]any{
		"health_status": "sick",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("attendant update health: status %d body %s", rec.Code, rec.Body.String())
	}

	// corral ajeno: 403, igual que un animal inexistente (sin filtrar
	// existencia)
	if rec = doReq(t, h, http.MethodGet, "/animals/"+inY.ID, "att-1", "farm_attendant", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("attendant read other pen: expected 403, got %d", rec.Code)
	}
	if rec = doReq(t, h, http.MethodGet, "/animals/no-such-id", "att-1", "farm_attendant", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("attendant read missing animal: expected 403, got %d", rec.Code)
	}
	// un rol blanket sí ve el 404 real
	if rec = doReq(t, h, http.MethodGet, "/animals/no-such-id", "admin-1", "admin", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("admin read missing animal: expected 404, got %d", rec.Code)
	}

	// acciones fuera del scope del attendant: deny aunque el corral sea suyo
	rec = doReq(t, h, http.MethodPost, "/animals/"+inX.ID+"/transfer", "att-1", "farm_attendant", map[string]any{
		"pen_id": penY.ID,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("attendant transfer: expected 403, got %d", rec.Code)
	}

	// al desactivar la asignación, el siguiente request ya no pasa
	if rec = doReq(t, h, http.MethodPost, "/pen-assignments/"+asg.ID+"/deactivate", "admin-1", "admin", nil); rec.Code != http.StatusOK {
		t.Fatalf("deactivate: status %d", rec.Code)
	}
	if rec = doReq(t, h, http.MethodGet, "/animals/"+inX.ID, "att-1", "farm_attendant", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("attendant read after deactivation: expected 403, got %d", rec.Code)
	}
}

func TestRoleGates(t *testing.T) {
	h := router.NewRouter(router.Options{})

	pen := mustCreatePen(t, h, "G", "pig", 5)
	a := mustCreateAnimal(t, h, "pig", pen.ID)

	// sin identidad: 401
	if rec := doReq(t, h, http.MethodGet, "/animals/"+a.ID, "", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}
	// rol desconocido: mundo cerrado, 403
	if rec := doReq(t, h, http.MethodGet, "/animals/"+a.ID, "u-1", "superuser", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("unknown role: expected 403, got %d", rec.Code)
	}

	// vet: lee y cura, pero no crea ni transfiere
	if rec := doReq(t, h, http.MethodGet, "/animals/"+a.ID, "vet-1", "veterinary_doctor", nil); rec.Code != http.StatusOK {
		t.Fatalf("vet read: expected 200, got %d", rec.Code)
	}
	rec := doReq(t, h, http.MethodPatch, "/animals/"+a.ID+"/health", "vet-1", "veterinary_doctor", map[string]any{
		"health_status": "quarantine",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("vet health update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doReq(t, h, http.MethodPost, "/animals", "vet-1", "veterinary_doctor", map[string]any{
		"species": "pig",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("vet create: expected 403, got %d", rec.Code)
	}

	// pasture officer: corrales sí, animales no
	if rec := doReq(t, h, http.MethodGet, "/pens/"+pen.ID, "off-1", "pasture_officer", nil); rec.Code != http.StatusOK {
		t.Fatalf("officer pen read: expected 200, got %d", rec.Code)
	}
	if rec := doReq(t, h, http.MethodGet, "/animals/"+a.ID, "off-1", "pasture_officer", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("officer animal read: expected 403, got %d", rec.Code)
	}
	rec = doReq(t, h, http.MethodPost, "/pens", "off-1", "pasture_officer", map[string]any{
		"name": "Z", "species": "pig", "capacity": 3,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("officer pen create: expected 403, got %d", rec.Code)
	}
}

func TestDeathFlowOverHTTP(t *testing.T) {
	h := router.NewRouter(router.Options{})

	a := mustCreateAnimal(t, h, "sheep", "")

	rec := doReq(t, h, http.MethodPost, "/animals/"+a.ID+"/death", "vet-1", "veterinary_doctor", map[string]any{
		"cause_of_death": "exposure", "date_of_death": "2026-02-01",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("mark deceased: status %d body %s", rec.Code, rec.Body.String())
	}
	var dead animalDTO
	decode(t, rec, &dead)
	if dead.Status != "deceased" || dead.HealthStatus != "deceased" {
		t.Fatalf("expected deceased/deceased, got %s/%s", dead.Status, dead.HealthStatus)
	}

	// repetir es 409, no un segundo registro
	rec = doReq(t, h, http.MethodPost, "/animals/"+a.ID+"/death", "vet-1", "veterinary_doctor", map[string]any{
		"cause_of_death": "again", "date_of_death": "2026-02-02",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second death: expected 409, got %d", rec.Code)
	}

	rec = doReq(t, h, http.MethodGet, "/animals/"+a.ID+"/mortality", "vet-1", "veterinary_doctor", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mortality read: status %d", rec.Code)
	}
	var mort struct {
		AnimalID     string `json:"animal_id"`
		CauseOfDeath string `json:"cause_of_death"`
		ReportedBy   string `json:"reported_by"`
	}
	decode(t, rec, &mort)
	if mort.AnimalID != a.ID || mort.CauseOfDeath != "exposure" || mort.ReportedBy != "vet-1" {
		t.Fatalf("unexpected mortality record: %+v", mort)
	}
}

func TestGenealogyOverHTTP(t *testing.T) {
	h := router.NewRouter(router.Options{})

	dam := mustCreateAnimal(t, h, "cattle", "")
	rec := doReq(t, h, http.MethodPost, "/animals", "admin-1", "admin", map[string]any{
		"species": "cattle", "dam_id": dam.ID, "date_of_birth": "2025-06-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create calf: status %d body %s", rec.Code, rec.Body.String())
	}
	var calf animalDTO
	decode(t, rec, &calf)

	rec = doReq(t, h, http.MethodGet, "/animals/"+dam.ID+"/offspring?role=dam", "admin-1", "admin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("offspring: status %d", rec.Code)
	}
	var kids []animalDTO
	decode(t, rec, &kids)
	if len(kids) != 1 || kids[0].ID != calf.ID {
		t.Fatalf("expected calf in offspring, got %+v", kids)
	}

	// role inválido es 400
	if rec = doReq(t, h, http.MethodGet, "/animals/"+dam.ID+"/offspring?role=uncle", "admin-1", "admin", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad role: expected 400, got %d", rec.Code)
	}

	rec = doReq(t, h, http.MethodGet, "/animals/"+calf.ID+"/parents", "admin-1", "admin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("parents: status %d", rec.Code)
	}
	var parents struct {
		Dam  *animalDTO `json:"dam"`
		Sire *animalDTO `json:"sire"`
	}
	decode(t, rec, &parents)
	if parents.Dam == nil || parents.Dam.ID != dam.ID || parents.Sire != nil {
		t.Fatalf("unexpected parents: %+v", parents)
	}
}

func TestSearchOverHTTP(t *testing.T) {
	h := router.NewRouter(router.Options{})

	for i := 0; i < 7; i++ {
		rec := doReq(t, h, http.MethodPost, "/animals", "admin-1", "admin", map[string]any{
			"species": "chicken", "notes": fmt.Sprintf("camada %d", i),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed %d: status %d", i, rec.Code)
		}
	}
	mustCreateAnimal(t, h, "pig", "")

	rec := doReq(t, h, http.MethodGet, "/animals?species=chicken&limit=5&page=2", "admin-1", "admin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: status %d body %s", rec.Code, rec.Body.String())
	}
	var page struct {
		Items []animalDTO `json:"items"`
		Total int         `json:"total"`
		Page  int         `json:"page"`
		Limit int         `json:"limit"`
	}
	decode(t, rec, &page)
	if page.Total != 7 || len(page.Items) != 2 || page.Limit != 5 {
		t.Fatalf("expected total=7 items=2 limit=5, got total=%d items=%d limit=%d", page.Total, len(page.Items), page.Limit)
	}

	// el límite se recorta al máximo
	rec = doReq(t, h, http.MethodGet, "/animals?limit=5000", "admin-1", "admin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search big limit: status %d", rec.Code)
	}
	decode(t, rec, &page)
	if page.Limit != 100 {
		t.Fatalf("expected limit clamped to 100, got %d", page.Limit)
	}

	// page/limit fuera de rango se ecoan con los valores efectivos de la
	// consulta, no con lo que mandó el cliente
	rec = doReq(t, h, http.MethodGet, "/animals?page=0&limit=-3", "admin-1", "admin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search bad paging: status %d", rec.Code)
	}
	decode(t, rec, &page)
	if page.Page != 1 || page.Limit != 20 {
		t.Fatalf("expected effective page=1 limit=20 echoed, got page=%d limit=%d", page.Page, page.Limit)
	}

	// filtro con enum desconocido: 400, no página vacía
	if rec = doReq(t, h, http.MethodGet, "/animals?species=dragon", "admin-1", "admin", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad species filter: expected 400, got %d", rec.Code)
	}

	// search es blanket-only: attendant no lista el rebaño completo
	if rec = doReq(t, h, http.MethodGet, "/animals", "att-1", "farm_attendant", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("attendant search: expected 403, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := router.NewRouter(router.Options{})

	rec := doReq(t, h, http.MethodGet, "/health", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status %d", rec.Code)
	}
}
