package animals

import (
	"context"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SearchInput llega como strings desde la capa HTTP; acá se valida contra
// los enums cerrados. Un valor desconocido es filtro inválido, no un
// resultado vacío silencioso.
type SearchInput struct {
	Species      string
	HealthStatus string
	PenID        string
	FreeText     string
	Page         int
	Limit        int
}

// Search compone la vista filtrada y paginada. El total se calcula con el
// mismo predicado que la página, así "total" y el slice no divergen.
func (s *Service) Search(ctx context.Context, in SearchInput) ([]Animal, int, error) {
	var f SearchFilter

	if v := strings.TrimSpace(in.Species); v != "" {
		sp, ok := ParseSpecies(v)
		if !ok {
			return nil, 0, ErrInvalidInput
		}
		f.Species = &sp
	}
	if v := strings.TrimSpace(in.HealthStatus); v != "" {
		hs, ok := ParseHealthStatus(v)
		if !ok {
			return nil, 0, ErrInvalidInput
		}
		f.HealthStatus = &hs
	}
	if v := strings.TrimSpace(in.PenID); v != "" {
		f.PenID = &v
	}
	f.FreeText = strings.TrimSpace(in.FreeText)

	page, limit := clampPage(in.Page, in.Limit)
	return s.repo.Search(ctx, f, (page-1)*limit, limit)
}

// clampPage normaliza la paginación. Lo usan el servicio y el handler que
// ecoa page/limit: un solo lugar decide los valores efectivos.
func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
