package sessions

import (
	"errors"
	"strings"

	domainlistings "gardiens/internal/domain/listings"
	"gardiens/internal/domain/navigation"
	domainsession "gardiens/internal/domain/session"
)

const (
	openKey       = "sessions.open"
	navigateKey   = "sessions.navigate"
	backKey       = "sessions.back"
	homeKey       = "sessions.home"
	criteriaKey   = "sessions.criteria"
	credentialKey = "sessions.credential"
	refreshKey    = "sessions.refresh"
	favoriteKey   = "sessions.favorite"
	closeKey      = "sessions.close"
	getKey        = "sessions.get"
	resultsKey    = "sessions.results"
)

var errSessionIDRequired = errors.New("session id is required")

// scoped is the part shared by every message that targets one session.
type scoped struct {
	SessionID string
}

func (s scoped) SessionKey() domainsession.ID { return domainsession.ID(s.SessionID) }

// LockKey serializes writes of one session.
func (s scoped) LockKey() string { return "session:" + s.SessionID }

func (s scoped) Validate() error {
	if strings.TrimSpace(s.SessionID) == "" {
		return errSessionIDRequired
	}
	return nil
}

type OpenCommand struct {
	Credential string
	Status     string
}

func (OpenCommand) Key() string { return openKey }

func (c OpenCommand) Validate() error {
	if strings.TrimSpace(c.Credential) == "" {
		return domainsession.ErrCredentialRequired
	}
	if _, ok := domainlistings.ParseStatus(c.Status); !ok {
		return errors.New("unknown status " + c.Status)
	}
	return nil
}

type NavigateCommand struct {
	scoped
	Page string
}

func NewNavigateCommand(sessionID, page string) NavigateCommand {
	return NavigateCommand{scoped: scoped{SessionID: sessionID}, Page: page}
}

func (NavigateCommand) Key() string { return navigateKey }

func (c NavigateCommand) Validate() error {
	if err := c.scoped.Validate(); err != nil {
		return err
	}
	_, err := navigation.ParsePage(c.Page)
	return err
}

type BackCommand struct{ scoped }

func NewBackCommand(sessionID string) BackCommand {
	return BackCommand{scoped{SessionID: sessionID}}
}

func (BackCommand) Key() string { return backKey }

type HomeCommand struct{ scoped }

func NewHomeCommand(sessionID string) HomeCommand {
	return HomeCommand{scoped{SessionID: sessionID}}
}

func (HomeCommand) Key() string { return homeKey }

// UpdateCriteriaCommand replaces the search inputs. Dates are validated by the handler, which knows the location.
type UpdateCriteriaCommand struct {
	scoped
	Query     string
	CareTypes []string
	Start     string
	End       string
}

func NewUpdateCriteriaCommand(sessionID, query string, careTypes []string, start, end string) UpdateCriteriaCommand {
	return UpdateCriteriaCommand{scoped: scoped{SessionID: sessionID}, Query: query, CareTypes: careTypes, Start: start, End: end}
}

func (UpdateCriteriaCommand) Key() string { return criteriaKey }

type RotateCredentialCommand struct {
	scoped
	Credential string
}

func NewRotateCredentialCommand(sessionID, credential string) RotateCredentialCommand {
	return RotateCredentialCommand{scoped: scoped{SessionID: sessionID}, Credential: credential}
}

func (RotateCredentialCommand) Key() string { return credentialKey }

func (c RotateCredentialCommand) Validate() error {
	if err := c.scoped.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Credential) == "" {
		return domainsession.ErrCredentialRequired
	}
	return nil
}

// RefreshCommand fetches outside the session lock; it takes the lock only to apply.
type RefreshCommand struct {
	SessionID string
}

func (RefreshCommand) Key() string { return refreshKey }

func (c RefreshCommand) SessionKey() domainsession.ID { return domainsession.ID(c.SessionID) }

func (c RefreshCommand) Validate() error { return scoped{SessionID: c.SessionID}.Validate() }

// ToggleFavoriteCommand calls upstream without the session lock, like
// RefreshCommand, and locks only to patch the snapshot.
type ToggleFavoriteCommand struct {
	SessionID string
	ListingID string
}

func NewToggleFavoriteCommand(sessionID, listingID string) ToggleFavoriteCommand {
	return ToggleFavoriteCommand{SessionID: sessionID, ListingID: listingID}
}

func (ToggleFavoriteCommand) Key() string { return favoriteKey }

func (c ToggleFavoriteCommand) SessionKey() domainsession.ID { return domainsession.ID(c.SessionID) }

func (c ToggleFavoriteCommand) Validate() error {
	if err := (scoped{SessionID: c.SessionID}).Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ListingID) == "" {
		return errors.New("listing id is required")
	}
	return nil
}

type CloseCommand struct{ scoped }

func NewCloseCommand(sessionID string) CloseCommand {
	return CloseCommand{scoped{SessionID: sessionID}}
}

func (CloseCommand) Key() string { return closeKey }

type GetQuery struct{ scoped }

func NewGetQuery(sessionID string) GetQuery { return GetQuery{scoped{SessionID: sessionID}} }

func (GetQuery) Key() string { return getKey }

type ResultsQuery struct{ scoped }

func NewResultsQuery(sessionID string) ResultsQuery { return ResultsQuery{scoped{SessionID: sessionID}} }

func (ResultsQuery) Key() string { return resultsKey }
