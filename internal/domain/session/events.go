package session

import (
	"time"

	"gardiens/internal/domain/listings"
)

type OpenedEvent struct {
	SessionID ID        `json:"session_id"`
	At        time.Time `json:"at"`
}

func (e OpenedEvent) EventName() string     { return "session.opened" }
func (e OpenedEvent) AggregateID() string   { return string(e.SessionID) }
func (e OpenedEvent) OccurredAt() time.Time { return e.At }

type CriteriaChangedEvent struct {
	SessionID ID        `json:"session_id"`
	Query     string    `json:"query"`
	CareTypes []string  `json:"care_types"`
	Start     string    `json:"start,omitempty"`
	End       string    `json:"end,omitempty"`
	At        time.Time `json:"at"`
}

func (e CriteriaChangedEvent) EventName() string     { return "session.criteria_changed" }
func (e CriteriaChangedEvent) AggregateID() string   { return string(e.SessionID) }
func (e CriteriaChangedEvent) OccurredAt() time.Time { return e.At }

type FavoriteToggledEvent struct {
	SessionID ID                 `json:"session_id"`
	ListingID listings.ListingID `json:"listing_id"`
	Favorite  bool               `json:"favorite"`
	At        time.Time          `json:"at"`
}

func (e FavoriteToggledEvent) EventName() string     { return "listing.favorite_toggled" }
func (e FavoriteToggledEvent) AggregateID() string   { return string(e.ListingID) }
func (e FavoriteToggledEvent) OccurredAt() time.Time { return e.At }

type SnapshotRefreshedEvent struct {
	SessionID ID        `json:"session_id"`
	Count     int       `json:"count"`
	At        time.Time `json:"at"`
}

func (e SnapshotRefreshedEvent) EventName() string     { return "session.snapshot_refreshed" }
func (e SnapshotRefreshedEvent) AggregateID() string   { return string(e.SessionID) }
func (e SnapshotRefreshedEvent) OccurredAt() time.Time { return e.At }
