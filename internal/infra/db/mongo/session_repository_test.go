package mongo

import (
	"reflect"
	"testing"
	"time"

	domainlistings "gardiens/internal/domain/listings"
	"gardiens/internal/domain/navigation"
	domainsession "gardiens/internal/domain/session"
)

func TestSessionDocumentKeepsAggregateState(t *testing.T) {
	at := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	s, err := domainsession.Open(domainsession.OpenParams{ID: "s-1", Credential: "tok", Now: at})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.Navigate(navigation.PageSearch, at)
	s.UpdateCriteria(domainlistings.Criteria{
		Query:     "chat",
		CareTypes: []string{"Animaux"},
		Dates:     &domainlistings.DateRange{Start: "2024-07-01"},
	}, at)
	s.ApplySnapshot([]*domainlistings.Listing{
		{ID: "a", Title: "Garde", CareType: "Animaux", StartDate: "2024-07-02", Images: []string{"x.png"}, Favorite: true},
	}, at)
	s.Version = 3

	got := newSessionDocument(s).toAggregate()
	if got.ID != s.ID || got.Credential != "tok" || got.Status != domainlistings.StatusPublished {
		t.Fatalf("identity lost: %+v", got)
	}
	if !reflect.DeepEqual(got.Nav.Pages(), s.Nav.Pages()) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", s.Nav.Pages(), got.Nav.Pages())
	}
	if got.Criteria.Dates == nil || got.Criteria.Dates.Start != "2024-07-01" || got.Criteria.Query != "chat" {
		t.Fatalf("criteria lost: %+v", got.Criteria)
	}
	if len(got.Listings) != 1 || !got.Listings[0].Favorite || got.Listings[0].Images[0] != "x.png" {
		t.Fatalf("listings lost: %+v", got.Listings)
	}
	if got.Version != 0 {
		t.Fatalf("version is assigned by Save, got %d", got.Version)
	}
	if res := got.Results(time.UTC); len(res) != 1 {
		t.Fatalf("restored session should still match its own criteria")
	}
}

func TestSessionDocumentWithoutDates(t *testing.T) {
	s, _ := domainsession.Open(domainsession.OpenParams{ID: "s-2", Credential: "tok"})
	got := newSessionDocument(s).toAggregate()
	if got.Criteria.Dates != nil {
		t.Fatalf("expected no date criteria, got %+v", got.Criteria.Dates)
	}
	if got.Nav.Current() != navigation.PageHome {
		t.Fatalf("expected home page, got %s", got.Nav.Current())
	}
}
