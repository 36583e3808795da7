package listings

import (
	"time"
)

// SearchPerformedEvent records one evaluated search. Origin is the session id, or empty for stateless searches.
type SearchPerformedEvent struct {
	SearchID  string    `json:"search_id"`
	Origin    string    `json:"origin,omitempty"`
	Query     string    `json:"query"`
	CareTypes []string  `json:"care_types"`
	Start     string    `json:"start,omitempty"`
	End       string    `json:"end,omitempty"`
	Matched   int       `json:"matched"`
	Scanned   int       `json:"scanned"`
	At        time.Time `json:"at"`
}

// NewSearchPerformedEvent describes the outcome of Filter for criteria.
func NewSearchPerformedEvent(id, origin string, criteria Criteria, scanned, matched int, at time.Time) SearchPerformedEvent {
	ev := SearchPerformedEvent{
		SearchID:  id,
		Origin:    origin,
		Query:     criteria.Query,
		CareTypes: append([]string{}, criteria.CareTypes...),
		Matched:   matched,
		Scanned:   scanned,
		At:        at.UTC(),
	}
	if criteria.Dates != nil {
		ev.Start, ev.End = criteria.Dates.Start, criteria.Dates.End
	}
	return ev
}

func (e SearchPerformedEvent) EventName() string { return "search.performed" }

func (e SearchPerformedEvent) AggregateID() string {
	if e.Origin != "" {
		return e.Origin
	}
	return e.SearchID
}

func (e SearchPerformedEvent) OccurredAt() time.Time { return e.At }
