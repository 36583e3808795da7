package dto

import (
	domainlistings "gardiens/internal/domain/listings"
)

// ListingCard is what the client renders in result lists.
type ListingCard struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"owner_id,omitempty"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	CareType    string   `json:"care_type"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	PriceCents  int64    `json:"price_cents"`
	Images      []string `json:"images"`
	Favorite    bool     `json:"favorite"`
	Status      string   `json:"status"`
}

// CriteriaView echoes the applied search inputs.
type CriteriaView struct {
	Query     string   `json:"query"`
	CareTypes []string `json:"care_types"`
	Start     string   `json:"start,omitempty"`
	End       string   `json:"end,omitempty"`
}

// SearchResult is a filtered listing collection. Total counts the listings the filter scanned.
type SearchResult struct {
	Items    []ListingCard `json:"items"`
	Count    int           `json:"count"`
	Total    int           `json:"total"`
	Criteria CriteriaView  `json:"criteria"`
}

type CareTypes struct {
	Items []string `json:"items"`
}

func MapListingCard(l *domainlistings.Listing) ListingCard {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return ListingCard{
		ID:          string(l.ID),
		OwnerID:     string(l.Owner),
		Title:       l.Title,
		Location:    l.Location,
		Description: l.Description,
		CareType:    l.CareType,
		StartDate:   l.StartDate,
		EndDate:     l.EndDate,
		PriceCents:  l.PriceCents,
		Images:      append([]string{}, images...),
		Favorite:    l.Favorite,
		Status:      string(l.Status),
	}
}

func MapCriteria(c domainlistings.Criteria) CriteriaView {
	view := CriteriaView{Query: c.Query, CareTypes: append([]string{}, c.CareTypes...)}
	if c.Dates != nil {
		view.Start, view.End = c.Dates.Start, c.Dates.End
	}
	return view
}

// MapSearchResult builds the response for matched listings out of scanned ones.
func MapSearchResult(matched []*domainlistings.Listing, scanned int, c domainlistings.Criteria) SearchResult {
	items := make([]ListingCard, 0, len(matched))
	for _, l := range matched {
		if l == nil {
			continue
		}
		items = append(items, MapListingCard(l))
	}
	return SearchResult{Items: items, Count: len(items), Total: scanned, Criteria: MapCriteria(c)}
}
