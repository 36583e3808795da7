package sessions

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"gardiens/internal/app/commands"
	"gardiens/internal/app/dto"
	"gardiens/internal/app/middleware"
	"gardiens/internal/app/policies"
	"gardiens/internal/app/uow"
	domainlistings "gardiens/internal/domain/listings"
	"gardiens/internal/domain/navigation"
	domainsession "gardiens/internal/domain/session"
)

type OpenHandler struct {
	Deps
	IDGenerator func() string
}

func (h *OpenHandler) Handle(ctx context.Context, cmd OpenCommand) (dto.SessionView, error) {
	status, ok := domainlistings.ParseStatus(cmd.Status)
	if !ok {
		return dto.SessionView{}, middleware.Invalid(cmd.Validate())
	}
	idGen := h.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	s, err := domainsession.Open(domainsession.OpenParams{
		ID:         domainsession.ID(idGen()),
		Credential: cmd.Credential,
		Status:     status,
		Now:        h.now(),
	})
	if err != nil {
		return dto.SessionView{}, middleware.Invalid(err)
	}
	err = h.inUnit(ctx, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		return h.save(ctx, unit, s)
	})
	if err != nil {
		return dto.SessionView{}, err
	}
	return dto.MapSession(s, h.refreshState(s.ID)), nil
}

// mutate loads a session under its lock, applies fn and saves it.
func (d Deps) mutate(ctx context.Context, target scoped, fn func(s *domainsession.Session) error) (*domainsession.Session, error) {
	var out *domainsession.Session
	err := d.inUnit(ctx, uow.TxOptions{Lock: target.LockKey()}, func(ctx context.Context, unit uow.UnitOfWork) error {
		s, err := unit.Sessions().ByID(ctx, target.SessionKey())
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		if err := d.save(ctx, unit, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

type NavigateHandler struct{ Deps }

func (h *NavigateHandler) Handle(ctx context.Context, cmd NavigateCommand) (dto.SessionView, error) {
	page, err := navigation.ParsePage(cmd.Page)
	if err != nil {
		return dto.SessionView{}, middleware.Invalid(err)
	}
	s, err := h.mutate(ctx, cmd.scoped, func(s *domainsession.Session) error {
		s.Navigate(page, h.now())
		return nil
	})
	if err != nil {
		return dto.SessionView{}, err
	}
	return dto.MapSession(s, h.refreshState(s.ID)), nil
}

// BackHandler pops one page; at the root it leaves the stack as is.
type BackHandler struct{ Deps }

func (h *BackHandler) Handle(ctx context.Context, cmd BackCommand) (dto.SessionView, error) {
	s, err := h.mutate(ctx, cmd.scoped, func(s *domainsession.Session) error {
		s.Back(h.now())
		return nil
	})
	if err != nil {
		return dto.SessionView{}, err
	}
	return dto.MapSession(s, h.refreshState(s.ID)), nil
}

// HomeHandler drops the navigation history, e.g. when the home tab is tapped.
type HomeHandler struct{ Deps }

func (h *HomeHandler) Handle(ctx context.Context, cmd HomeCommand) (dto.SessionView, error) {
	s, err := h.mutate(ctx, cmd.scoped, func(s *domainsession.Session) error {
		s.GoHome(h.now())
		return nil
	})
	if err != nil {
		return dto.SessionView{}, err
	}
	return dto.MapSession(s, h.refreshState(s.ID)), nil
}

type UpdateCriteriaHandler struct {
	Deps
	IDGenerator func() string
}

func (h *UpdateCriteriaHandler) Handle(ctx context.Context, cmd UpdateCriteriaCommand) (dto.SearchResult, error) {
	dates, err := domainlistings.ParseDateRange(cmd.Start, cmd.End, h.location())
	if err != nil {
		return dto.SearchResult{}, middleware.Invalid(err)
	}
	criteria := domainlistings.Criteria{
		Query:     cmd.Query,
		CareTypes: cmd.CareTypes,
		Dates:     dates,
	}
	var result dto.SearchResult
	_, err = h.mutate(ctx, cmd.scoped, func(s *domainsession.Session) error {
		now := h.now()
		s.UpdateCriteria(criteria, now)
		matched := s.Results(h.location())
		s.Record(domainlistings.NewSearchPerformedEvent(h.searchID(), string(s.ID), s.Criteria, len(s.Listings), len(matched), now))
		result = dto.MapSearchResult(matched, len(s.Listings), s.Criteria)
		return nil
	})
	if err != nil {
		return dto.SearchResult{}, err
	}
	return result, nil
}

func (h *UpdateCriteriaHandler) searchID() string {
	if h.IDGenerator != nil {
		return h.IDGenerator()
	}
	return uuid.NewString()
}

// RotateCredentialHandler swaps the session credential. The next refresh
// fetches with the new one even during a cooldown.
type RotateCredentialHandler struct{ Deps }

func (h *RotateCredentialHandler) Handle(ctx context.Context, cmd RotateCredentialCommand) (dto.SessionView, error) {
	s, err := h.mutate(ctx, cmd.scoped, func(s *domainsession.Session) error {
		if err := s.RotateCredential(cmd.Credential, h.now()); err != nil {
			return middleware.Invalid(err)
		}
		return nil
	})
	if err != nil {
		return dto.SessionView{}, err
	}
	return dto.MapSession(s, h.refreshState(s.ID)), nil
}

type ToggleFavoriteHandler struct {
	Deps
	Source policies.ListingSource
}

// Handle toggles upstream first, then mirrors the answer into the snapshot.
// Upstream owns the flag: when the snapshot cannot be patched (listing not in
// it, or the save failed) the feed cooldown is cleared so the next refresh
// resyncs instead of a retry flipping the flag back.
func (h *ToggleFavoriteHandler) Handle(ctx context.Context, cmd ToggleFavoriteCommand) (dto.FavoriteResult, error) {
	if h.Source == nil {
		return dto.FavoriteResult{}, ErrSourceMissing
	}
	sessionID := cmd.SessionKey()
	id := domainlistings.ListingID(strings.TrimSpace(cmd.ListingID))
	current, err := h.load(ctx, sessionID)
	if err != nil {
		return dto.FavoriteResult{}, err
	}
	favorite, err := h.Source.ToggleFavorite(ctx, current.Credential, id)
	if err != nil {
		return dto.FavoriteResult{}, err
	}

	found := false
	lock := scoped{SessionID: string(sessionID)}.LockKey()
	err = uow.Run(ctx, h.UoWFactory, uow.TxOptions{Lock: lock}, func(ctx context.Context, unit uow.UnitOfWork) error {
		s, err := unit.Sessions().ByID(ctx, sessionID)
		if err != nil {
			return err
		}
		found = s.MarkFavorite(id, favorite, h.now())
		return h.save(ctx, unit, s)
	})
	if err != nil {
		found = false
		h.log().WarnContext(ctx, "favorite snapshot patch failed", "session_id", sessionID, "listing_id", id, "error", err)
	}
	if !found && h.Feed != nil {
		h.Feed.Invalidate(sessionID)
	}
	return dto.FavoriteResult{ListingID: string(id), Favorite: favorite, InSnapshot: found}, nil
}

type CloseHandler struct{ Deps }

func (h *CloseHandler) Handle(ctx context.Context, cmd CloseCommand) (struct{}, error) {
	err := h.inUnit(ctx, uow.TxOptions{Lock: cmd.LockKey()}, func(ctx context.Context, unit uow.UnitOfWork) error {
		return unit.Sessions().Delete(ctx, cmd.SessionKey())
	})
	if err != nil {
		return struct{}{}, err
	}
	if h.Feed != nil {
		h.Feed.Forget(cmd.SessionKey())
	}
	return struct{}{}, nil
}

var (
	_ commands.Handler[OpenCommand, dto.SessionView]              = (*OpenHandler)(nil)
	_ commands.Handler[NavigateCommand, dto.SessionView]          = (*NavigateHandler)(nil)
	_ commands.Handler[BackCommand, dto.SessionView]              = (*BackHandler)(nil)
	_ commands.Handler[HomeCommand, dto.SessionView]              = (*HomeHandler)(nil)
	_ commands.Handler[UpdateCriteriaCommand, dto.SearchResult]   = (*UpdateCriteriaHandler)(nil)
	_ commands.Handler[RotateCredentialCommand, dto.SessionView]  = (*RotateCredentialHandler)(nil)
	_ commands.Handler[ToggleFavoriteCommand, dto.FavoriteResult] = (*ToggleFavoriteHandler)(nil)
	_ commands.Handler[CloseCommand, struct{}]                    = (*CloseHandler)(nil)
)
