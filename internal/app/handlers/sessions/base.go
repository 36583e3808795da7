package sessions

import (
	"context"
	"log/slog"
	"time"

	"gardiens/internal/app/feed"
	"gardiens/internal/app/outbox"
	"gardiens/internal/app/uow"
	domainsession "gardiens/internal/domain/session"
)

// Deps is shared by the session handlers.
type Deps struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Feed       *feed.Feed
	Location   *time.Location
	Now        func() time.Time
	Logger     *slog.Logger
}

// inUnit runs fn in the unit carried by ctx, or in a fresh one when there is none.
func (d Deps) inUnit(ctx context.Context, opts uow.TxOptions, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	if unit, ok := uow.FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	return uow.Run(ctx, d.UoWFactory, opts, fn)
}

// save stores s and moves its pending events to the outbox.
func (d Deps) save(ctx context.Context, unit uow.UnitOfWork, s *domainsession.Session) error {
	if err := unit.Sessions().Save(ctx, s); err != nil {
		return err
	}
	return outbox.RecordDomainEvents(ctx, d.Outbox, d.encoder(), s.PullEvents())
}

func (d Deps) refreshState(id domainsession.ID) string {
	if d.Feed == nil {
		return "idle"
	}
	return d.Feed.State(id).String()
}

func (d Deps) encoder() outbox.EventEncoder {
	if d.Encoder != nil {
		return d.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (d Deps) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) log() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
