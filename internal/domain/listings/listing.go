package listings

import (
	"strings"
	"time"
)

type ListingID string
type OwnerID string

// Status is the publication state the upstream filters announcements by.
type Status string

const (
	StatusPublished Status = "published"
	StatusAssigned  Status = "assigned"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return StatusPublished, true
	case StatusPublished:
		return StatusPublished, true
	case StatusAssigned:
		return StatusAssigned, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusArchived:
		return StatusArchived, true
	default:
		return "", false
	}
}

// Listing is the read-only projection of an announcement owned by the backend.
// StartDate and EndDate keep the raw ISO strings sent by the backend; empty means absent.
type Listing struct {
	ID          ListingID
	Owner       OwnerID
	Title       string
	Location    string
	Description string
	CareType    string
	StartDate   string
	EndDate     string
	PriceCents  int64
	Images      []string
	Favorite    bool
	Status      Status
	UpdatedAt   time.Time
}

// Clone returns a deep copy so snapshots can be patched without touching shared data.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	out := *l
	out.Images = append([]string(nil), l.Images...)
	return &out
}

// CloneAll copies a snapshot, keeping order.
func CloneAll(items []*Listing) []*Listing {
	out := make([]*Listing, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out
}

// WithFavorite returns a copy of items where the listing id carries the given favorite flag.
func WithFavorite(items []*Listing, id ListingID, favorite bool) ([]*Listing, bool) {
	out := make([]*Listing, 0, len(items))
	found := false
	for _, item := range items {
		if item != nil && item.ID == id {
			patched := item.Clone()
			patched.Favorite = favorite
			out = append(out, patched)
			found = true
			continue
		}
		out = append(out, item)
	}
	return out, found
}
