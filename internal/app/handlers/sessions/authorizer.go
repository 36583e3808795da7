package sessions

import (
	"context"
	"crypto/subtle"

	"gardiens/internal/app/middleware"
	"gardiens/internal/app/policies"
	"gardiens/internal/app/uow"
	domainsession "gardiens/internal/domain/session"
)

// Authorizer admits a message targeting a session only when the caller
// presents the credential the session holds.
type Authorizer struct {
	UoWFactory uow.UoWFactory
}

func (a Authorizer) Authorize(ctx context.Context, message any) error {
	target, ok := message.(interface{ SessionKey() domainsession.ID })
	if !ok {
		return nil
	}
	credential, ok := policies.CredentialFromContext(ctx)
	if !ok {
		return policies.ErrUnauthorized
	}
	s, err := Deps{UoWFactory: a.UoWFactory}.load(ctx, target.SessionKey())
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(s.Credential), []byte(credential)) != 1 {
		return policies.ErrForbidden
	}
	return nil
}

var _ middleware.Authorizer = Authorizer{}
