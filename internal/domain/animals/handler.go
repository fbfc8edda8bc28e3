package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"farm-livestock-registry/internal/domain/authz"
	"farm-livestock-registry/internal/middleware"
	"farm-livestock-registry/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service, authority *authz.Authority) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", createAnimalHandler(svc, authority))
		ar.Get("/", searchAnimalsHandler(svc, authority))

		ar.Route("/{animalID}", func(sr chi.Router) {
			sr.Get("/", getAnimalHandler(svc, authority))
			sr.Delete("/", deleteAnimalHandler(svc, authority))
			sr.Patch("/health", updateHealthHandler(svc, authority))
			sr.Post("/transfer", transferAnimalHandler(svc, authority))
			sr.Post("/death", markDeceasedHandler(svc, authority))
			sr.Get("/offspring", offspringHandler(svc, authority))
			sr.Get("/parents", parentsHandler(svc, authority))
			sr.Get("/mortality", mortalityHandler(svc, authority))
		})
	})
}

type createAnimalRequest struct {
	Tag         string `json:"tag"`
	Species     string `json:"species"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD opcional
	DamID       string `json:"dam_id"`
	SireID      string `json:"sire_id"`
	PenID       string `json:"pen_id"`
	Notes       string `json:"notes"`
}

type transferRequest struct {
	PenID string `json:"pen_id"`
}

type healthRequest struct {
	HealthStatus string  `json:"health_status"`
	Notes        *string `json:"notes"`
}

type deathRequest struct {
	CauseOfDeath string `json:"cause_of_death"`
	DateOfDeath  string `json:"date_of_death"` // YYYY-MM-DD
}

type animalResponse struct {
	ID           string     `json:"id"`
	Tag          string     `json:"tag"`
	Species      string     `json:"species"`
	Gender       string     `json:"gender"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	DamID        *string    `json:"dam_id,omitempty"`
	SireID       *string    `json:"sire_id,omitempty"`
	PenID        *string    `json:"pen_id,omitempty"`
	HealthStatus string     `json:"health_status"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type searchResponse struct {
	Items []animalResponse `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type parentsResponse struct {
	Dam  *animalResponse `json:"dam"`
	Sire *animalResponse `json:"sire"`
}

type mortalityResponse struct {
	ID           string    `json:"id"`
	AnimalID     string    `json:"animal_id"`
	CauseOfDeath string    `json:"cause_of_death"`
	DateOfDeath  time.Time `json:"date_of_death"`
	ReportedBy   string    `json:"reported_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func createAnimalHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, role, ok := callerRole(w, r)
		if !ok {
			return
		}
		if !authority.HasBlanketAccess(role, authz.ActionAnimalCreate) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var dob *time.Time
		if strings.TrimSpace(req.DateOfBirth) != "" {
			t, err := time.Parse("2006-01-02", req.DateOfBirth)
			if err != nil {
				http.Error(w, "date_of_birth must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			dob = &t
		}

		a, err := svc.Create(r.Context(), CreateInput{
			Tag:         req.Tag,
			Species:     req.Species,
			Gender:      req.Gender,
			DateOfBirth: dob,
			DamID:       req.DamID,
			SireID:      req.SireID,
			PenID:       req.PenID,
			Notes:       req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

func searchAnimalsHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, role, ok := callerRole(w, r)
		if !ok {
			return
		}
		if !authority.HasBlanketAccess(role, authz.ActionAnimalSearch) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		items, total, err := svc.Search(r.Context(), SearchInput{
			Species:      q.Get("species"),
			HealthStatus: q.Get("health_status"),
			PenID:        q.Get("pen_id"),
			FreeText:     q.Get("q"),
			Page:         page,
			Limit:        limit,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}

		page, limit = clampPage(page, limit)

		writeJSON(w, http.StatusOK, searchResponse{
			Items: out,
			Total: total,
			Page:  page,
			Limit: limit,
		})
	}
}

func getAnimalHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := authorizedAnimal(w, r, svc, authority, authz.ActionAnimalRead)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func deleteAnimalHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := authorizedAnimal(w, r, svc, authority, authz.ActionAnimalDelete)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), a.ID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func updateHealthHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := authorizedAnimal(w, r, svc, authority, authz.ActionAnimalUpdateHealth)
		if !ok {
			return
		}

		var req healthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdateHealthStatus(r.Context(), a.ID, req.HealthStatus, req.Notes)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

func transferAnimalHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := authorizedAnimal(w, r, svc, authority, authz.ActionAnimalTransfer)
		if !ok {
			return
		}

		var req transferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.Transfer(r.Context(), a.ID, req.PenID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

func markDeceasedHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		a, ok := authorizedAnimal(w, r, svc, authority, authz.ActionAnimalMarkDeceased)
		if !ok {
			return
		}

		var req deathRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		dod, err := time.Parse("2006-01-02", strings.TrimSpace(req.DateOfDeath))
		if err != nil {
			http.Error(w, "date_of_death must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		updated, err := svc.MarkDeceased(r.Context(), a.ID, req.CauseOfDeath, dod, claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

func offspringHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := authorizedAnimal(w, r, svc, authority, authz.ActionAnimalRead)
		if !ok {
			return
		}

		role, valid := ParseParentRole(strings.TrimSpace(r.URL.Query().Get("role")))
		if !valid {
			http.Error(w, "role must be dam or sire", http.StatusBadRequest)
			return
		}

		items, err := svc.Offspring(r.Context(), a.ID, role)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, child := range items {
			out = append(out, toAnimalResponse(child))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func parentsHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := authorizedAnimal(w, r, svc, authority, authz.ActionAnimalRead)
		if !ok {
			return
		}

		dam, sire, err := svc.Parents(r.Context(), a.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		var resp parentsResponse
		if dam != nil {
			d := toAnimalResponse(*dam)
			resp.Dam = &d
		}
		if sire != nil {
			s := toAnimalResponse(*sire)
			resp.Sire = &s
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func mortalityHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := authorizedAnimal(w, r, svc, authority, authz.ActionAnimalRead)
		if !ok {
			return
		}

		rec, err := svc.MortalityRecordOf(r.Context(), a.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mortalityResponse{
			ID:           rec.ID,
			AnimalID:     rec.AnimalID,
			CauseOfDeath: rec.CauseOfDeath,
			DateOfDeath:  rec.DateOfDeath,
			ReportedBy:   rec.ReportedBy,
			CreatedAt:    rec.CreatedAt,
		})
	}
}

// authorizedAnimal resuelve el animal del path y corre el chequeo de acceso
// fresco (el corral puede haber cambiado desde el último request). Para
// callers sin blanket access, "no existe" y "no autorizado" responden igual
// (403): no filtramos existencia a quien no puede ver el recurso.
func authorizedAnimal(w http.ResponseWriter, r *http.Request, svc *Service, authority *authz.Authority, action authz.Action) (Animal, bool) {
	claims, role, ok := callerRole(w, r)
	if !ok {
		return Animal{}, false
	}

	animalID := chi.URLParam(r, "animalID")
	a, err := svc.Get(r.Context(), animalID)
	if err != nil {
		if errors.Is(err, ErrAnimalNotFound) {
			if authority.HasBlanketAccess(role, action) {
				http.Error(w, "animal not found", http.StatusNotFound)
			} else {
				http.Error(w, "forbidden", http.StatusForbidden)
			}
			return Animal{}, false
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return Animal{}, false
	}

	if err := authority.CheckAnimal(r.Context(), role, claims.UserID, action, a.PenID); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return Animal{}, false
	}
	return a, true
}

// callerRole corta con 401 si no hay identidad y 403 si el rol no es uno de
// los conocidos (mundo cerrado: rol desconocido = deny).
func callerRole(w http.ResponseWriter, r *http.Request) (auth.Claims, authz.Role, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, "", false
	}
	role, ok := authz.ParseRole(strings.TrimSpace(claims.Role))
	if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return claims, "", false
	}
	return claims, role, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrAnimalNotFound), errors.Is(err, ErrPenNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrSpeciesMismatch),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrAlreadyDeceased),
		errors.Is(err, ErrAnimalNotActive),
		errors.Is(err, ErrDuplicateTag):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrConflictExhausted):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:           a.ID,
		Tag:          a.Tag,
		Species:      string(a.Species),
		Gender:       string(a.Gender),
		DateOfBirth:  a.DateOfBirth,
		DamID:        a.DamID,
		SireID:       a.SireID,
		PenID:        a.PenID,
		HealthStatus: string(a.HealthStatus),
		Status:       string(a.Status),
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// (animals/pens) para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
