package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"gardiens/internal/domain/listings"
	"gardiens/internal/domain/navigation"
	"gardiens/internal/domain/shared/events"
)

var (
	ErrIDRequired         = errors.New("session: id is required")
	ErrCredentialRequired = errors.New("session: credential is required")
	ErrNotFound           = errors.New("session: not found")
)

type ID string

// Session is the single source of truth for one client: who it is, where it
// is and what it searches for. Filtered results are derived, never stored.
type Session struct {
	ID          ID
	Credential  string
	Status      listings.Status
	Nav         navigation.Stack
	Criteria    listings.Criteria
	Listings    []*listings.Listing
	RefreshedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id ID) error
}

type OpenParams struct {
	ID         ID
	Credential string
	Status     listings.Status
	Now        time.Time
}

func Open(params OpenParams) (*Session, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	credential := strings.TrimSpace(params.Credential)
	if credential == "" {
		return nil, ErrCredentialRequired
	}
	status := params.Status
	if status == "" {
		status = listings.StatusPublished
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	s := &Session{
		ID:         params.ID,
		Credential: credential,
		Status:     status,
		Nav:        navigation.NewStack(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.Record(OpenedEvent{SessionID: s.ID, At: now})
	return s, nil
}

func (s *Session) Navigate(p navigation.Page, now time.Time) {
	s.Nav.Push(p)
	s.touch(now)
}

func (s *Session) Back(now time.Time) bool {
	if !s.Nav.Back() {
		return false
	}
	s.touch(now)
	return true
}

// GoHome clears the navigation history back to the home page.
func (s *Session) GoHome(now time.Time) {
	s.Nav.Reset()
	s.touch(now)
}

// UpdateCriteria replaces the search inputs. The location is a server concern and is not kept.
func (s *Session) UpdateCriteria(c listings.Criteria, now time.Time) {
	c.Location = nil
	c.CareTypes = append([]string(nil), c.CareTypes...)
	if c.Dates != nil {
		dates := *c.Dates
		c.Dates = &dates
	}
	s.Criteria = c
	s.touch(now)
	ev := CriteriaChangedEvent{
		SessionID: s.ID,
		Query:     c.Query,
		CareTypes: append([]string(nil), c.CareTypes...),
		At:        s.UpdatedAt,
	}
	if c.Dates != nil {
		ev.Start, ev.End = c.Dates.Start, c.Dates.End
	}
	s.Record(ev)
}

// RotateCredential swaps the bearer token, e.g. after a token refresh.
func (s *Session) RotateCredential(credential string, now time.Time) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ErrCredentialRequired
	}
	s.Credential = credential
	s.touch(now)
	return nil
}

// ApplySnapshot replaces the listing collection with a freshly fetched one.
func (s *Session) ApplySnapshot(items []*listings.Listing, now time.Time) {
	s.Listings = listings.CloneAll(items)
	s.RefreshedAt = now.UTC()
	s.touch(now)
	s.Record(SnapshotRefreshedEvent{SessionID: s.ID, Count: len(items), At: s.RefreshedAt})
}

// MarkFavorite patches the favorite flag of a listing in the snapshot.
// It reports false when the listing is not part of the snapshot.
func (s *Session) MarkFavorite(id listings.ListingID, favorite bool, now time.Time) bool {
	patched, found := listings.WithFavorite(s.Listings, id, favorite)
	s.Listings = patched
	s.touch(now)
	s.Record(FavoriteToggledEvent{SessionID: s.ID, ListingID: id, Favorite: favorite, At: s.UpdatedAt})
	return found
}

// Results recomputes the visible listings from the snapshot and criteria.
func (s *Session) Results(loc *time.Location) []*listings.Listing {
	c := s.Criteria
	c.Location = loc
	return listings.Filter(s.Listings, c)
}

// Favorites returns the snapshot listings flagged as favorite.
func (s *Session) Favorites() []*listings.Listing {
	out := make([]*listings.Listing, 0)
	for _, item := range s.Listings {
		if item != nil && item.Favorite {
			out = append(out, item)
		}
	}
	return out
}

func (s *Session) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	s.UpdatedAt = now.UTC()
}

// Clone copies the session state without pending events. Listings are shared:
// they are replaced, never modified in place.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{
		ID:          s.ID,
		Credential:  s.Credential,
		Status:      s.Status,
		Nav:         navigation.FromPages(s.Nav.Pages()),
		Criteria:    s.Criteria,
		Listings:    append([]*listings.Listing(nil), s.Listings...),
		RefreshedAt: s.RefreshedAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		Version:     s.Version,
	}
	out.Criteria.CareTypes = append([]string(nil), s.Criteria.CareTypes...)
	if s.Criteria.Dates != nil {
		dates := *s.Criteria.Dates
		out.Criteria.Dates = &dates
	}
	return out
}
