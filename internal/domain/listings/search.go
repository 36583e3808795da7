package listings

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gardiens/internal/domain/shared/daterange"
)

var ErrInvalidDateRange = errors.New("listings: invalid date range")

// DateRange is the requested availability interval. Either bound may be empty.
type DateRange struct {
	Start string
	End   string
}

// Empty reports whether neither bound is set.
func (r *DateRange) Empty() bool {
	return r == nil || (strings.TrimSpace(r.Start) == "" && strings.TrimSpace(r.End) == "")
}

// Criteria are the search inputs held by the client. Zero value matches everything.
type Criteria struct {
	Query     string
	CareTypes []string
	Dates     *DateRange
	// Location anchors calendar days; nil means time.Local.
	Location *time.Location
}

// Normalized returns a sanitized copy of c.
func (c Criteria) Normalized() Criteria {
	caser := cases.Lower(language.French)
	normalized := c
	normalized.Query = caser.String(strings.TrimSpace(c.Query))
	normalized.CareTypes = normalizeTokens(caser, c.CareTypes)
	if c.Dates.Empty() {
		normalized.Dates = nil
	} else {
		normalized.Dates = &DateRange{
			Start: strings.TrimSpace(c.Dates.Start),
			End:   strings.TrimSpace(c.Dates.End),
		}
	}
	if normalized.Location == nil {
		normalized.Location = time.Local
	}
	return normalized
}

// Blank entries are kept on purpose: an active care filter must exclude listings without a care type.
func normalizeTokens(caser cases.Caser, tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		token = caser.String(strings.TrimSpace(token))
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

// ParseDateRange validates raw bounds for callers that want to reject bad input
// instead of getting an empty result. It returns nil when both bounds are blank.
func ParseDateRange(start, end string, loc *time.Location) (*DateRange, error) {
	r := &DateRange{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	if r.Empty() {
		return nil, nil
	}
	var from, to time.Time
	var err error
	if r.Start != "" {
		if from, err = daterange.StartOfDay(r.Start, loc); err != nil {
			return nil, errors.Join(ErrInvalidDateRange, err)
		}
	}
	if r.End != "" {
		if to, err = daterange.EndOfDay(r.End, loc); err != nil {
			return nil, errors.Join(ErrInvalidDateRange, err)
		}
	}
	if !from.IsZero() && !to.IsZero() {
		if _, err := daterange.New(from, to); err != nil {
			return nil, errors.Join(ErrInvalidDateRange, err)
		}
	}
	return r, nil
}

// Filter returns the listings matching every active criterion, in input order.
// Inputs are not modified. A malformed date never matches.
func Filter(items []*Listing, criteria Criteria) []*Listing {
	m := newMatcher(criteria)
	out := make([]*Listing, 0, len(items))
	for _, item := range items {
		if m.match(item) {
			out = append(out, item)
		}
	}
	return out
}

type matcher struct {
	caser     cases.Caser
	query     string
	careTypes map[string]struct{}
	dates     dateFilter
}

type dateFilter struct {
	active  bool
	invalid bool
	window  daterange.Window
	loc     *time.Location
}

func newMatcher(criteria Criteria) *matcher {
	c := criteria.Normalized()
	m := &matcher{
		caser: cases.Lower(language.French),
		query: c.Query,
		dates: compileDates(c.Dates, c.Location),
	}
	if len(c.CareTypes) > 0 {
		m.careTypes = make(map[string]struct{}, len(c.CareTypes))
		for _, token := range c.CareTypes {
			m.careTypes[token] = struct{}{}
		}
	}
	return m
}

func compileDates(r *DateRange, loc *time.Location) dateFilter {
	f := dateFilter{loc: loc}
	if r.Empty() {
		return f
	}
	f.active = true
	if r.Start != "" {
		from, err := daterange.StartOfDay(r.Start, loc)
		if err != nil {
			f.invalid = true
			return f
		}
		f.window.From = from
	}
	if r.End != "" {
		to, err := daterange.EndOfDay(r.End, loc)
		if err != nil {
			f.invalid = true
			return f
		}
		f.window.To = to
	}
	return f
}

func (m *matcher) match(listing *Listing) bool {
	if listing == nil {
		listing = &Listing{}
	}
	return m.matchText(listing) && m.matchCareType(listing) && m.matchDates(listing)
}

func (m *matcher) matchText(listing *Listing) bool {
	if m.query == "" {
		return true
	}
	for _, field := range []string{listing.Title, listing.Location, listing.Description} {
		if strings.Contains(m.caser.String(field), m.query) {
			return true
		}
	}
	return false
}

func (m *matcher) matchCareType(listing *Listing) bool {
	if m.careTypes == nil {
		return true
	}
	careType := strings.TrimSpace(listing.CareType)
	if careType == "" {
		return false
	}
	_, ok := m.careTypes[m.caser.String(careType)]
	return ok
}

func (m *matcher) matchDates(listing *Listing) bool {
	f := m.dates
	if !f.active {
		return true
	}
	if f.invalid {
		return false
	}
	span, ok := listingSpan(listing, f.loc)
	if !ok {
		return false
	}
	return span.Overlaps(f.window)
}

// listingSpan resolves [start, end]; a listing without an end date lasts a single instant.
func listingSpan(listing *Listing, loc *time.Location) (daterange.Span, bool) {
	if strings.TrimSpace(listing.StartDate) == "" {
		return daterange.Span{}, false
	}
	start, err := daterange.ParseInstant(listing.StartDate, loc)
	if err != nil {
		return daterange.Span{}, false
	}
	if strings.TrimSpace(listing.EndDate) == "" {
		return daterange.Single(start), true
	}
	end, err := daterange.ParseInstant(listing.EndDate, loc)
	if err != nil {
		return daterange.Span{}, false
	}
	return daterange.Span{Start: start, End: end}, true
}
