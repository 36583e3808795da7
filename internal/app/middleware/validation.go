package middleware

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalid marks input rejected before any handler ran.
var ErrInvalid = errors.New("invalid request")

// Invalid wraps err so callers can match it with errors.Is(err, ErrInvalid).
func Invalid(err error) error {
	if err == nil || errors.Is(err, ErrInvalid) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalid, err)
}

type Validator interface {
	Validate(ctx context.Context, message any) error
}

// SelfValidator validates messages exposing a Validate() error method.
type SelfValidator struct{}

func (SelfValidator) Validate(_ context.Context, message any) error {
	if v, ok := message.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}

func validation(v Validator) around {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(ctx context.Context, msg message, next func(context.Context) (any, error)) (any, error) {
		if err := v.Validate(ctx, msg); err != nil {
			return nil, Invalid(err)
		}
		return next(ctx)
	}
}

func Validation(v Validator) CommandMiddleware {
	return validation(v).commands()
}

func QueryValidation(v Validator) QueryMiddleware {
	return validation(v).queries()
}
