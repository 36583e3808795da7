package listings

import (
	"testing"
	"time"
)

func TestSearchPerformedEventKeying(t *testing.T) {
	at := time.Date(2024, 7, 1, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	criteria := Criteria{Query: "chat", CareTypes: []string{"Animaux"}, Dates: &DateRange{Start: "2024-07-01"}}

	stateless := NewSearchPerformedEvent("q-1", "", criteria, 10, 2, at)
	if stateless.AggregateID() != "q-1" {
		t.Fatalf("stateless search should be keyed by its id, got %q", stateless.AggregateID())
	}
	if !stateless.OccurredAt().Equal(at) || stateless.OccurredAt().Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", stateless.OccurredAt())
	}
	if stateless.Start != "2024-07-01" || stateless.End != "" {
		t.Fatalf("unexpected bounds %q..%q", stateless.Start, stateless.End)
	}

	criteria.CareTypes[0] = "Plantes"
	if stateless.CareTypes[0] != "Animaux" {
		t.Fatalf("event aliased criteria care types")
	}

	session := NewSearchPerformedEvent("q-2", "s-1", Criteria{}, 0, 0, at)
	if session.AggregateID() != "s-1" || session.CareTypes == nil {
		t.Fatalf("unexpected session search event %+v", session)
	}
}
