package dto

import (
	"time"

	domainsession "gardiens/internal/domain/session"
)

type SessionView struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Page         string       `json:"page"`
	Pages        []string     `json:"pages"`
	CanGoBack    bool         `json:"can_go_back"`
	Criteria     CriteriaView `json:"criteria"`
	ListingCount int          `json:"listing_count"`
	Favorites    []string     `json:"favorites"`
	RefreshState string       `json:"refresh_state"`
	RefreshedAt  *time.Time   `json:"refreshed_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Version      int64        `json:"version"`
}

// MapSession never exposes the credential.
func MapSession(s *domainsession.Session, refreshState string) SessionView {
	pages := s.Nav.Pages()
	view := SessionView{
		ID:           string(s.ID),
		Status:       string(s.Status),
		Page:         string(s.Nav.Current()),
		Pages:        make([]string, 0, len(pages)),
		CanGoBack:    s.Nav.Depth() > 1,
		Criteria:     MapCriteria(s.Criteria),
		ListingCount: len(s.Listings),
		Favorites:    []string{},
		RefreshState: refreshState,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Version:      s.Version,
	}
	for _, p := range pages {
		view.Pages = append(view.Pages, string(p))
	}
	for _, l := range s.Favorites() {
		view.Favorites = append(view.Favorites, string(l.ID))
	}
	if !s.RefreshedAt.IsZero() {
		at := s.RefreshedAt
		view.RefreshedAt = &at
	}
	return view
}

type RefreshResult struct {
	Outcome string      `json:"outcome"`
	Session SessionView `json:"session"`
}

type FavoriteResult struct {
	ListingID  string `json:"listing_id"`
	Favorite   bool   `json:"favorite"`
	InSnapshot bool   `json:"in_snapshot"`
}
