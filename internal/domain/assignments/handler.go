package assignments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"farm-livestock-registry/internal/domain/authz"
	"farm-livestock-registry/internal/middleware"
)

// Las asignaciones son data administrada: solo roles con assignment:write
// (Admin/FarmManager) las tocan.
func RegisterRoutes(r chi.Router, svc *Service, authority *authz.Authority) {
	r.Route("/pen-assignments", func(ar chi.Router) {
		ar.Post("/", createAssignmentHandler(svc, authority))
		ar.Get("/", listAssignmentsHandler(svc, authority))
		ar.Post("/{assignmentID}/deactivate", deactivateAssignmentHandler(svc, authority))
	})
}

type createAssignmentRequest struct {
	PenID        string `json:"pen_id"`
	AttendantID  string `json:"attendant_id"`
	SupervisorID string `json:"supervisor_id"`
	Notes        string `json:"notes"`
}

type assignmentResponse struct {
	ID           string    `json:"id"`
	PenID        string    `json:"pen_id"`
	AttendantID  *string   `json:"attendant_id,omitempty"`
	SupervisorID *string   `json:"supervisor_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func createAssignmentHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireBlanket(w, r, authority, authz.ActionAssignmentWrite) {
			return
		}

		var req createAssignmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), CreateInput{
			PenID:        req.PenID,
			AttendantID:  req.AttendantID,
			SupervisorID: req.SupervisorID,
			Notes:        req.Notes,
		})
		if err != nil {
			writeAssignmentError(w, err)
			return
		}
		writeAssignmentJSON(w, http.StatusCreated, toAssignmentResponse(a))
	}
}

func listAssignmentsHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireBlanket(w, r, authority, authz.ActionAssignmentRead) {
			return
		}

		items, err := svc.ListByPen(r.Context(), r.URL.Query().Get("pen_id"))
		if err != nil {
			writeAssignmentError(w, err)
			return
		}

		out := make([]assignmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAssignmentResponse(a))
		}
		writeAssignmentJSON(w, http.StatusOK, out)
	}
}

func deactivateAssignmentHandler(svc *Service, authority *authz.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireBlanket(w, r, authority, authz.ActionAssignmentWrite) {
			return
		}

		a, err := svc.Deactivate(r.Context(), chi.URLParam(r, "assignmentID"))
		if err != nil {
			writeAssignmentError(w, err)
			return
		}
		writeAssignmentJSON(w, http.StatusOK, toAssignmentResponse(a))
	}
}

func requireBlanket(w http.ResponseWriter, r *http.Request, authority *authz.Authority, action authz.Action) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	role, ok := authz.ParseRole(strings.TrimSpace(claims.Role))
	if !ok || !authority.HasBlanketAccess(role, action) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func writeAssignmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAssignmentResponse(a PenAssignment) assignmentResponse {
	return assignmentResponse{
		ID:           a.ID,
		PenID:        a.PenID,
		AttendantID:  a.AttendantID,
		SupervisorID: a.SupervisorID,
		IsActive:     a.IsActive,
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func writeAssignmentJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
