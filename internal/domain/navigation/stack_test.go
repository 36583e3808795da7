package navigation

import (
	"errors"
	"reflect"
	"testing"
)

func TestStackPushBack(t *testing.T) {
	s := NewStack()
	s.Push(PageSearch)
	s.Push(PageSearch)
	s.Push(PageListing)

	if want := []Page{PageHome, PageSearch, PageListing}; !reflect.DeepEqual(s.Pages(), want) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, s.Pages())
	}
	if !s.Back() || s.Current() != PageSearch {
		t.Fatalf("expected to return to search, at %s", s.Current())
	}
	if !s.Back() || s.Current() != PageHome {
		t.Fatalf("expected to return home, at %s", s.Current())
	}
	if s.Back() {
		t.Fatalf("root must never be popped")
	}
	if s.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", s.Depth())
	}
}

func TestStackZeroValue(t *testing.T) {
	var s Stack
	if s.Current() != PageHome || s.Depth() != 1 {
		t.Fatalf("zero stack should behave as a fresh one")
	}
	s.Push(PageProfile)
	if want := []Page{PageHome, PageProfile}; !reflect.DeepEqual(s.Pages(), want) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, s.Pages())
	}
	s.Reset()
	if s.Current() != PageHome || s.Depth() != 1 {
		t.Fatalf("reset should return home")
	}
}

func TestStackPagesIsACopy(t *testing.T) {
	s := NewStack()
	s.Push(PageFavorites)
	pages := s.Pages()
	pages[1] = PageMessages
	if s.Current() != PageFavorites {
		t.Fatalf("Pages() leaked internal state")
	}
}

func TestFromPages(t *testing.T) {
	s := FromPages([]Page{PageHome, PageSearch})
	if s.Current() != PageSearch {
		t.Fatalf("unexpected current page %s", s.Current())
	}
	if s := FromPages([]Page{"nowhere"}); s.Depth() != 1 || s.Current() != PageHome {
		t.Fatalf("invalid history should reset the stack")
	}
}

func TestParsePage(t *testing.T) {
	p, err := ParsePage(" Search ")
	if err != nil || p != PageSearch {
		t.Fatalf("ParsePage() = %q, %v", p, err)
	}
	if _, err := ParsePage("settings"); !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
}
