package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"gardiens/internal/app/dto"
	"gardiens/internal/app/middleware"
	"gardiens/internal/app/outbox"
	"gardiens/internal/app/policies"
	"gardiens/internal/app/queries"
	domainlistings "gardiens/internal/domain/listings"
)

const (
	searchKey    = "listings.search"
	careTypesKey = "catalog.care_types"
)

var ErrSourceMissing = errors.New("listings: source not configured")

// SearchQuery fetches the caller's announcements and filters them in one go, without a session.
type SearchQuery struct {
	Credential string
	Query      string
	CareTypes  []string
	Start      string
	End        string
	Status     string
}

func (SearchQuery) Key() string { return searchKey }

func (q SearchQuery) Validate() error {
	if _, ok := domainlistings.ParseStatus(q.Status); !ok {
		return errors.New("unknown status " + q.Status)
	}
	return nil
}

type SearchHandler struct {
	Source      policies.ListingSource
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Location    *time.Location
	IDGenerator func() string
	Now         func() time.Time
}

func (h *SearchHandler) Handle(ctx context.Context, q SearchQuery) (dto.SearchResult, error) {
	if h.Source == nil {
		return dto.SearchResult{}, ErrSourceMissing
	}
	credential := strings.TrimSpace(q.Credential)
	if credential == "" {
		return dto.SearchResult{}, policies.ErrUnauthorized
	}
	status, ok := domainlistings.ParseStatus(q.Status)
	if !ok {
		return dto.SearchResult{}, middleware.Invalid(q.Validate())
	}
	loc := h.location()
	dates, err := domainlistings.ParseDateRange(q.Start, q.End, loc)
	if err != nil {
		return dto.SearchResult{}, middleware.Invalid(err)
	}
	criteria := domainlistings.Criteria{Query: q.Query, CareTypes: q.CareTypes, Dates: dates, Location: loc}

	items, err := h.Source.ListAnnouncements(ctx, credential, status)
	if err != nil {
		return dto.SearchResult{}, err
	}
	matched := domainlistings.Filter(items, criteria)

	ev := domainlistings.NewSearchPerformedEvent(h.id(), "", criteria, len(items), len(matched), h.now())
	if err := h.publish(ctx, ev); err != nil {
		return dto.SearchResult{}, err
	}
	return dto.MapSearchResult(matched, len(items), criteria), nil
}

// publish records the event and flushes at once, since queries skip the command pipeline.
func (h *SearchHandler) publish(ctx context.Context, ev domainlistings.SearchPerformedEvent) error {
	if h.Outbox == nil {
		return nil
	}
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	rec, err := encoder.Encode(ev)
	if err != nil {
		return err
	}
	if err := h.Outbox.Add(ctx, rec); err != nil {
		return err
	}
	return h.Outbox.Flush(ctx)
}

func (h *SearchHandler) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.Local
}

func (h *SearchHandler) id() string {
	if h.IDGenerator != nil {
		return h.IDGenerator()
	}
	return uuid.NewString()
}

func (h *SearchHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

type CareTypesQuery struct {
	Credential string
}

func (CareTypesQuery) Key() string { return careTypesKey }

type CareTypesHandler struct {
	Source policies.ListingSource
}

func (h *CareTypesHandler) Handle(ctx context.Context, q CareTypesQuery) (dto.CareTypes, error) {
	if h.Source == nil {
		return dto.CareTypes{}, ErrSourceMissing
	}
	credential := strings.TrimSpace(q.Credential)
	if credential == "" {
		return dto.CareTypes{}, policies.ErrUnauthorized
	}
	items, err := h.Source.CareTypes(ctx, credential)
	if err != nil {
		return dto.CareTypes{}, err
	}
	if items == nil {
		items = []string{}
	}
	return dto.CareTypes{Items: items}, nil
}

var (
	_ queries.Handler[SearchQuery, dto.SearchResult] = (*SearchHandler)(nil)
	_ queries.Handler[CareTypesQuery, dto.CareTypes] = (*CareTypesHandler)(nil)
)
