package pens

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"farm-livestock-registry/internal/domain/animals"
	"farm-livestock-registry/internal/domain/authz"
	"farm-livestock-registry/internal/middleware"
	"farm-livestock-registry/internal/ports/auth"
)

// RegisterRoutes recibe también el servicio de animales: la ocupación de un
// corral es una vista sobre los animales activos, no estado propio del Pen.
func RegisterRoutes(r chi.Router, svc *Service, animalsSvc *animals.Service, authority *authz.Authority) {
	r.Route("/pens", func(pr chi.Router) {
		pr.Post("/", createPenHandler(svc, authority))
		pr.Get("/", listPensHandler(svc, authority))
		pr.Get("/{penID}", getPenHandler(svc, authority))
		pr.Patch("/{penID}", updatePenHandler(svc, authority))
		pr.Get("/{penID}/occupancy", occupancyHandler(svc, animalsSvc, authority))
	})
}

type createPenRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Species  string `json:"species"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

type updatePenRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
	Location *string `json:"location"`
	Notes    *string `json:"notes"`
}

type penResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Species   string    `json:"species"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type occupancyResponse struct {
	PenID    string `json:"pen_id"`
	Capacity int    `json:"capacity"`
	Occupied int    `json:"occupied"`
}

func createPenHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, role, ok := penCaller(w, r)
		if !ok {
			return
		}
		if !authority.HasBlanketAccess(role, authz.ActionPenWrite) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createPenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			Name:     req.Name,
			Capacity: req.Capacity,
			Species:  req.Species,
			Location: req.Location,
			Notes:    req.Notes,
		})
		if err != nil {
			writePenError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPenResponse(p))
	}
}

func listPensHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, role, ok := penCaller(w, r)
		if !ok {
			return
		}
		if !authority.HasBlanketAccess(role, authz.ActionPenRead) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]penResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPenResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPenHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, role, ok := penCaller(w, r)
		if !ok {
			return
		}

		penID := chi.URLParam(r, "penID")
		if err := authority.CheckPen(r.Context(), role, claims.UserID, authz.ActionPenRead, penID); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		p, err := svc.GetByID(r.Context(), penID)
		if err != nil {
			writePenError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPenResponse(p))
	}
}

func updatePenHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, role, ok := penCaller(w, r)
		if !ok {
			return
		}
		if !authority.HasBlanketAccess(role, authz.ActionPenWrite) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req updatePenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "penID"), UpdateInput{
			Name:     req.Name,
			Capacity: req.Capacity,
			Location: req.Location,
			Notes:    req.Notes,
		})
		if err != nil {
			writePenError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPenResponse(p))
	}
}

func occupancyHandler(svc *Service, animalsSvc *animals.Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, role, ok := penCaller(w, r)
		if !ok {
			return
		}

		penID := chi.URLParam(r, "penID")
		if err := authority.CheckPen(r.Context(), role, claims.UserID, authz.ActionPenRead, penID); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		p, err := svc.GetByID(r.Context(), penID)
		if err != nil {
			writePenError(w, err)
			return
		}

		occupied, err := animalsSvc.Occupancy(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, occupancyResponse{
			PenID:    p.ID,
			Capacity: p.Capacity,
			Occupied: occupied,
		})
	}
}

func penCaller(w http.ResponseWriter, r *http.Request) (auth.Claims, authz.Role, bool) {
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

func writePenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toPenResponse(p Pen) penResponse {
	return penResponse{
		ID:        p.ID,
		Name:      p.Name,
		Capacity:  p.Capacity,
		Species:   string(p.Species),
		Location:  p.Location,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
