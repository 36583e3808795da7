package sessions

import (
	"context"

	"gardiens/internal/app/dto"
	"gardiens/internal/app/queries"
)

type GetHandler struct{ Deps }

func (h *GetHandler) Handle(ctx context.Context, q GetQuery) (dto.SessionView, error) {
	s, err := h.load(ctx, q.SessionKey())
	if err != nil {
		return dto.SessionView{}, err
	}
	return dto.MapSession(s, h.refreshState(s.ID)), nil
}

// ResultsHandler recomputes the visible listings from the stored snapshot and criteria.
type ResultsHandler struct{ Deps }

func (h *ResultsHandler) Handle(ctx context.Context, q ResultsQuery) (dto.SearchResult, error) {
	s, err := h.load(ctx, q.SessionKey())
	if err != nil {
		return dto.SearchResult{}, err
	}
	return dto.MapSearchResult(s.Results(h.location()), len(s.Listings), s.Criteria), nil
}

var (
	_ queries.Handler[GetQuery, dto.SessionView]      = (*GetHandler)(nil)
	_ queries.Handler[ResultsQuery, dto.SearchResult] = (*ResultsHandler)(nil)
)
