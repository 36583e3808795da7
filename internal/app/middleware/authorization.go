package middleware

import (
	"context"
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

func authorization(a Authorizer) around {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(ctx context.Context, msg message, next func(context.Context) (any, error)) (any, error) {
		if err := a.Authorize(ctx, msg); err != nil {
			return nil, err
		}
		return next(ctx)
	}
}

func Authorization(a Authorizer) CommandMiddleware {
	return authorization(a).commands()
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	return authorization(a).queries()
}
