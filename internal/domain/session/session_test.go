package session

import (
	"errors"
	"testing"
	"time"

	"gardiens/internal/domain/listings"
	"gardiens/internal/domain/navigation"
)

var testNow = time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

func openTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := Open(OpenParams{ID: "s-1", Credential: " tok ", Now: testNow})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestOpen(t *testing.T) {
	s := openTestSession(t)
	if s.Credential != "tok" {
		t.Fatalf("credential should be trimmed, got %q", s.Credential)
	}
	if s.Status != listings.StatusPublished {
		t.Fatalf("unexpected default status %q", s.Status)
	}
	if s.Nav.Current() != navigation.PageHome {
		t.Fatalf("new session should start home")
	}
	evs := s.PullEvents()
	if len(evs) != 1 || evs[0].EventName() != "session.opened" {
		t.Fatalf("expected session.opened event, got %v", evs)
	}
	if len(s.PendingEvents()) != 0 {
		t.Fatalf("PullEvents should clear the buffer")
	}

	if _, err := Open(OpenParams{ID: "", Credential: "tok"}); !errors.Is(err, ErrIDRequired) {
		t.Fatalf("expected ErrIDRequired, got %v", err)
	}
	if _, err := Open(OpenParams{ID: "x", Credential: "  "}); !errors.Is(err, ErrCredentialRequired) {
		t.Fatalf("expected ErrCredentialRequired, got %v", err)
	}
}

func TestResultsAreDerivedFromCriteria(t *testing.T) {
	s := openTestSession(t)
	s.ApplySnapshot([]*listings.Listing{
		{ID: "a", Title: "Garde de chat", CareType: "Animaux", StartDate: "2024-07-01", EndDate: "2024-07-10"},
		{ID: "b", Title: "Arrosage", CareType: "Plantes", StartDate: "2024-08-01"},
	}, testNow)

	if got := s.Results(time.UTC); len(got) != 2 {
		t.Fatalf("expected all listings without criteria, got %d", len(got))
	}

	s.UpdateCriteria(listings.Criteria{CareTypes: []string{"plantes"}}, testNow.Add(time.Minute))
	got := s.Results(time.UTC)
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected only b, got %v", got)
	}

	s.UpdateCriteria(listings.Criteria{Dates: &listings.DateRange{Start: "2024-07-05", End: "2024-07-06"}}, testNow)
	got = s.Results(time.UTC)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only a, got %v", got)
	}
	if s.Criteria.Location != nil {
		t.Fatalf("criteria must not keep a location")
	}
}

func TestUpdateCriteriaCopiesInput(t *testing.T) {
	s := openTestSession(t)
	care := []string{"Animaux"}
	dates := &listings.DateRange{Start: "2024-07-01"}
	s.UpdateCriteria(listings.Criteria{CareTypes: care, Dates: dates}, testNow)
	care[0] = "Plantes"
	dates.Start = "2030-01-01"
	if s.Criteria.CareTypes[0] != "Animaux" || s.Criteria.Dates.Start != "2024-07-01" {
		t.Fatalf("session criteria aliased caller data: %+v", s.Criteria)
	}
}

func TestMarkFavorite(t *testing.T) {
	s := openTestSession(t)
	original := []*listings.Listing{{ID: "a"}, {ID: "b"}}
	s.ApplySnapshot(original, testNow)
	s.PullEvents()

	if !s.MarkFavorite("b", true, testNow) {
		t.Fatalf("expected listing to be found")
	}
	if original[1].Favorite {
		t.Fatalf("snapshot must be isolated from the fetched slice")
	}
	favs := s.Favorites()
	if len(favs) != 1 || favs[0].ID != "b" {
		t.Fatalf("unexpected favorites %v", favs)
	}
	evs := s.PullEvents()
	if len(evs) != 1 || evs[0].AggregateID() != "b" {
		t.Fatalf("expected favorite event for b, got %v", evs)
	}
	if s.MarkFavorite("zzz", true, testNow) {
		t.Fatalf("unknown listing reported as found")
	}
}

func TestNavigation(t *testing.T) {
	s := openTestSession(t)
	s.Navigate(navigation.PageSearch, testNow)
	s.Navigate(navigation.PageListing, testNow)
	if !s.Back(testNow) || s.Nav.Current() != navigation.PageSearch {
		t.Fatalf("expected to be back on search")
	}
	s.Back(testNow)
	if s.Back(testNow) {
		t.Fatalf("should not go back past home")
	}
}

func TestGoHomeClearsHistory(t *testing.T) {
	s := openTestSession(t)
	s.Navigate(navigation.PageSearch, testNow)
	s.Navigate(navigation.PageListing, testNow)
	s.GoHome(testNow.Add(time.Minute))
	if s.Nav.Current() != navigation.PageHome || s.Nav.Depth() != 1 {
		t.Fatalf("expected a bare home stack, got %v", s.Nav.Pages())
	}
	if s.Back(testNow) {
		t.Fatalf("nothing should be left to go back to")
	}
	if !s.UpdatedAt.Equal(testNow.Add(time.Minute)) {
		t.Fatalf("GoHome should touch the session")
	}
}

func TestRotateCredential(t *testing.T) {
	s := openTestSession(t)
	if err := s.RotateCredential("", testNow); !errors.Is(err, ErrCredentialRequired) {
		t.Fatalf("expected ErrCredentialRequired, got %v", err)
	}
	if err := s.RotateCredential("next", testNow.Add(time.Hour)); err != nil {
		t.Fatalf("RotateCredential() error = %v", err)
	}
	if s.Credential != "next" || !s.UpdatedAt.Equal(testNow.Add(time.Hour)) {
		t.Fatalf("unexpected session state %+v", s)
	}
}
