package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: end must not be before start")
	ErrInvalidDate  = errors.New("daterange: unparseable date")
)

const dayLayout = "2006-01-02"

// Span represents a closed interval [Start, End].
type Span struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Span, error) {
	s := Span{Start: start, End: end}
	if err := s.Validate(); err != nil {
		return Span{}, err
	}
	return s, nil
}

// Single returns a span covering exactly one instant.
func Single(at time.Time) Span {
	return Span{Start: at, End: at}
}

func (s Span) Validate() error {
	if s.Start.IsZero() || s.End.IsZero() {
		return ErrInvalidRange
	}
	if s.End.Before(s.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Window is a possibly open-ended interval. A zero bound is unbounded on that side.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Unbounded() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// Overlaps reports whether s intersects w with both ends inclusive.
func (s Span) Overlaps(w Window) bool {
	if !w.To.IsZero() && s.Start.After(w.To) {
		return false
	}
	if !w.From.IsZero() && s.End.Before(w.From) {
		return false
	}
	return true
}

func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.Start) && !t.After(s.End)
}

// ParseInstant reads either a calendar day (2006-01-02) or an RFC3339 timestamp.
// Calendar days resolve to midnight in loc.
func ParseInstant(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(dayLayout, raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// StartOfDay returns the calendar day of raw at 00:00:00 in loc.
func StartOfDay(raw string, loc *time.Location) (time.Time, error) {
	t, err := ParseInstant(raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()), nil
}

// EndOfDay returns the calendar day of raw at 23:59:59 in loc.
func EndOfDay(raw string, loc *time.Location) (time.Time, error) {
	t, err := ParseInstant(raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location()), nil
}
