package navigation

import (
	"errors"
	"strings"
)

var ErrUnknownPage = errors.New("navigation: unknown page")

type Page string

const (
	PageHome         Page = "home"
	PageSearch       Page = "search"
	PageListing      Page = "listing"
	PageFavorites    Page = "favorites"
	PageMessages     Page = "messages"
	PageProfile      Page = "profile"
	PageApplications Page = "applications"
	PageSubscription Page = "subscription"
)

var knownPages = map[Page]struct{}{
	PageHome:         {},
	PageSearch:       {},
	PageListing:      {},
	PageFavorites:    {},
	PageMessages:     {},
	PageProfile:      {},
	PageApplications: {},
	PageSubscription: {},
}

func ParsePage(raw string) (Page, error) {
	p := Page(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownPages[p]; !ok {
		return "", ErrUnknownPage
	}
	return p, nil
}

// Stack is the ordered history of visited pages. The root is never popped.
type Stack struct {
	pages []Page
}

func NewStack() Stack {
	return Stack{pages: []Page{PageHome}}
}

// FromPages restores a stack; invalid or empty input yields a fresh one.
func FromPages(pages []Page) Stack {
	if len(pages) == 0 {
		return NewStack()
	}
	out := make([]Page, 0, len(pages))
	for _, p := range pages {
		if _, ok := knownPages[p]; !ok {
			return NewStack()
		}
		out = append(out, p)
	}
	return Stack{pages: out}
}

// Push navigates to p. Pushing the current page again is a no-op.
func (s *Stack) Push(p Page) {
	s.ensureRoot()
	if s.pages[len(s.pages)-1] == p {
		return
	}
	s.pages = append(s.pages, p)
}

// Back pops the current page and reports whether anything was popped.
func (s *Stack) Back() bool {
	s.ensureRoot()
	if len(s.pages) == 1 {
		return false
	}
	s.pages = s.pages[:len(s.pages)-1]
	return true
}

func (s *Stack) Reset() {
	s.pages = []Page{PageHome}
}

func (s Stack) Current() Page {
	if len(s.pages) == 0 {
		return PageHome
	}
	return s.pages[len(s.pages)-1]
}

func (s Stack) Depth() int {
	if len(s.pages) == 0 {
		return 1
	}
	return len(s.pages)
}

func (s Stack) Pages() []Page {
	if len(s.pages) == 0 {
		return []Page{PageHome}
	}
	return append([]Page(nil), s.pages...)
}

func (s *Stack) ensureRoot() {
	if len(s.pages) == 0 {
		s.pages = []Page{PageHome}
	}
}
