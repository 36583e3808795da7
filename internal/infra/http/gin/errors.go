package ginserver

import (
	"context"
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gardiens/internal/app/middleware"
	"gardiens/internal/app/policies"
	domainlistings "gardiens/internal/domain/listings"
	"gardiens/internal/domain/navigation"
	domainsession "gardiens/internal/domain/session"
	"gardiens/internal/infra/upstream"
)

func statusFor(err error) int {
	var upstreamErr *upstream.StatusError
	switch {
	case errors.Is(err, middleware.ErrInvalid),
		errors.Is(err, domainlistings.ErrInvalidDateRange),
		errors.Is(err, navigation.ErrUnknownPage),
		errors.Is(err, domainsession.ErrCredentialRequired):
		return http.StatusBadRequest
	case errors.Is(err, policies.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, policies.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domainsession.ErrNotFound),
		errors.Is(err, policies.ErrListingNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, policies.ErrUpstreamUnavailable),
		errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with {"error": ...}. Internal and upstream details stay in the access log.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	msg := err.Error()
	var upstreamErr *upstream.StatusError
	if errors.As(err, &upstreamErr) {
		msg = "upstream answered " + http.StatusText(upstreamErr.Code)
	}
	switch status {
	case http.StatusInternalServerError:
		msg = http.StatusText(status)
	case http.StatusBadGateway:
		msg = "upstream service unavailable"
	case http.StatusGatewayTimeout:
		msg = "request timed out"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
