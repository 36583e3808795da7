package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gardiens/internal/app/policies"
	domainlistings "gardiens/internal/domain/listings"
	"gardiens/internal/domain/refresh"
	domainsession "gardiens/internal/domain/session"
)

var ErrSourceMissing = errors.New("feed: listing source not configured")

type Outcome string

const (
	OutcomeRefreshed   Outcome = "refreshed"
	OutcomeInFlight    Outcome = "in_flight"
	OutcomeCoolingDown Outcome = "cooling_down"
	OutcomeDiscarded   Outcome = "discarded"
)

// ApplyFunc stores a fetched snapshot. It reports false when the session moved
// on (e.g. its credential changed) and the snapshot no longer belongs to it.
type ApplyFunc func(ctx context.Context, items []*domainlistings.Listing, ticket refresh.Ticket) (bool, error)

// Feed fetches listing snapshots for sessions, at most one fetch per session
// at a time and none within the cooldown after a successful one.
type Feed struct {
	Source   policies.ListingSource
	Cooldown time.Duration
	Now      func() time.Time
	Logger   *slog.Logger

	mu     sync.Mutex
	guards map[domainsession.ID]*refresh.Guard
}

// Request identifies the collection to fetch.
type Request struct {
	SessionID  domainsession.ID
	Credential string
	Status     domainlistings.Status
}

func (f *Feed) Refresh(ctx context.Context, req Request, apply ApplyFunc) (Outcome, error) {
	if f.Source == nil {
		return "", ErrSourceMissing
	}
	guard := f.guard(req.SessionID)
	ticket, err := guard.Begin(req.Credential)
	switch {
	case errors.Is(err, refresh.ErrInFlight):
		return OutcomeInFlight, nil
	case errors.Is(err, refresh.ErrCoolingDown):
		return OutcomeCoolingDown, nil
	case err != nil:
		return "", err
	}

	items, err := f.Source.ListAnnouncements(ctx, req.Credential, req.Status)
	if err != nil {
		if ctx.Err() != nil {
			guard.Cancel(ticket)
		} else {
			guard.Fail(ticket)
		}
		f.log().WarnContext(ctx, "listing fetch failed", "session_id", req.SessionID, "error", err)
		return "", err
	}
	if !guard.Complete(ticket) {
		f.log().DebugContext(ctx, "listing fetch superseded", "session_id", req.SessionID, "generation", ticket.Generation)
		return OutcomeDiscarded, nil
	}
	applied, err := apply(ctx, items, ticket)
	if err != nil {
		guard.Reset()
		return "", err
	}
	if !applied {
		return OutcomeDiscarded, nil
	}
	return OutcomeRefreshed, nil
}

// State reports the fetch state of a session; sessions never refreshed are idle.
func (f *Feed) State(id domainsession.ID) refresh.State {
	f.mu.Lock()
	guard, ok := f.guards[id]
	f.mu.Unlock()
	if !ok {
		return refresh.Idle
	}
	return guard.State()
}

// Invalidate clears the cooldown so the next refresh fetches again.
func (f *Feed) Invalidate(id domainsession.ID) {
	f.mu.Lock()
	guard, ok := f.guards[id]
	f.mu.Unlock()
	if ok {
		guard.Reset()
	}
}

// Forget drops the session's guard once the session is gone.
func (f *Feed) Forget(id domainsession.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.guards, id)
}

func (f *Feed) guard(id domainsession.ID) *refresh.Guard {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.guards == nil {
		f.guards = make(map[domainsession.ID]*refresh.Guard)
	}
	guard, ok := f.guards[id]
	if !ok {
		opts := []refresh.Option{refresh.WithClock(f.Now)}
		if f.Cooldown > 0 {
			opts = append(opts, refresh.WithCooldown(f.Cooldown))
		}
		guard = refresh.NewGuard(opts...)
		f.guards[id] = guard
	}
	return guard
}

func (f *Feed) log() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
