package sessions

import (
	"context"
	"errors"

	"gardiens/internal/app/commands"
	"gardiens/internal/app/dto"
	"gardiens/internal/app/feed"
	"gardiens/internal/app/uow"
	domainlistings "gardiens/internal/domain/listings"
	"gardiens/internal/domain/refresh"
	domainsession "gardiens/internal/domain/session"
)

var (
	ErrFeedMissing   = errors.New("sessions: feed not configured")
	ErrSourceMissing = errors.New("sessions: listing source not configured")
)

// RefreshHandler replaces the session snapshot with a fresh upstream fetch.
// The fetch runs without holding the session lock so navigation stays responsive.
type RefreshHandler struct{ Deps }

func (h *RefreshHandler) Handle(ctx context.Context, cmd RefreshCommand) (dto.RefreshResult, error) {
	if h.Feed == nil {
		return dto.RefreshResult{}, ErrFeedMissing
	}
	id := cmd.SessionKey()
	current, err := h.load(ctx, id)
	if err != nil {
		return dto.RefreshResult{}, err
	}
	req := feed.Request{SessionID: id, Credential: current.Credential, Status: current.Status}
	outcome, err := h.Feed.Refresh(ctx, req, func(ctx context.Context, items []*domainlistings.Listing, ticket refresh.Ticket) (bool, error) {
		return h.apply(ctx, id, items, ticket)
	})
	if err != nil {
		return dto.RefreshResult{}, err
	}
	latest, err := h.load(ctx, id)
	if err != nil {
		return dto.RefreshResult{}, err
	}
	return dto.RefreshResult{Outcome: string(outcome), Session: dto.MapSession(latest, h.refreshState(id))}, nil
}

// apply stores items unless the credential changed while they were fetched.
func (h *RefreshHandler) apply(ctx context.Context, id domainsession.ID, items []*domainlistings.Listing, ticket refresh.Ticket) (bool, error) {
	applied := false
	lock := scoped{SessionID: string(id)}.LockKey()
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{Lock: lock}, func(ctx context.Context, unit uow.UnitOfWork) error {
		s, err := unit.Sessions().ByID(ctx, id)
		if err != nil {
			return err
		}
		if s.Credential != ticket.Credential {
			return nil
		}
		s.ApplySnapshot(items, h.now())
		if err := h.save(ctx, unit, s); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func (d Deps) load(ctx context.Context, id domainsession.ID) (*domainsession.Session, error) {
	unit, ctx, cleanup, err := uow.Current(ctx, d.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return unit.Sessions().ByID(ctx, id)
}

var _ commands.Handler[RefreshCommand, dto.RefreshResult] = (*RefreshHandler)(nil)
