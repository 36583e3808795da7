package policies

import (
	"context"
	"errors"

	domainlistings "gardiens/internal/domain/listings"
)

var (
	ErrUnauthorized        = errors.New("policies: credential rejected by upstream")
	ErrForbidden           = errors.New("policies: credential does not own this session")
	ErrUpstreamUnavailable = errors.New("policies: upstream unavailable")
	ErrListingNotFound     = errors.New("policies: listing not found upstream")
)

// ListingSource is the remote marketplace backend the client projects listings from.
type ListingSource interface {
	ListAnnouncements(ctx context.Context, credential string, status domainlistings.Status) ([]*domainlistings.Listing, error)
	ToggleFavorite(ctx context.Context, credential string, id domainlistings.ListingID) (bool, error)
	CareTypes(ctx context.Context, credential string) ([]string, error)
}
