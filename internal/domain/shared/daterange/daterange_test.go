package daterange

import (
	"errors"
	"testing"
	"time"
)

func TestParseInstant(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	got, err := ParseInstant("2024-06-10", paris)
	if err != nil {
		t.Fatalf("ParseInstant() error = %v", err)
	}
	want := time.Date(2024, time.June, 10, 0, 0, 0, 0, paris)
	if !got.Equal(want) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, got)
	}

	got, err = ParseInstant("2024-06-10T12:00:00Z", paris)
	if err != nil {
		t.Fatalf("ParseInstant() error = %v", err)
	}
	if !got.Equal(time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected instant %v", got)
	}
	if got.Location() != paris {
		t.Fatalf("expected instant in %v, got %v", paris, got.Location())
	}

	for _, raw := range []string{"", "not-a-date", "2024-13-01", "10/06/2024"} {
		if _, err := ParseInstant(raw, paris); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseInstant(%q) error = %v, want ErrInvalidDate", raw, err)
		}
	}
}

func TestDayAnchors(t *testing.T) {
	start, err := StartOfDay("2024-06-10T18:30:00Z", time.UTC)
	if err != nil {
		t.Fatalf("StartOfDay() error = %v", err)
	}
	if !start.Equal(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", start)
	}
	end, err := EndOfDay("2024-06-10", time.UTC)
	if err != nil {
		t.Fatalf("EndOfDay() error = %v", err)
	}
	if !end.Equal(time.Date(2024, time.June, 10, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", end)
	}
}

func TestSpanOverlaps(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, time.July, d, 0, 0, 0, 0, time.UTC) }
	span := Span{Start: day(1), End: day(10)}

	tests := []struct {
		name   string
		window Window
		want   bool
	}{
		{"unbounded", Window{}, true},
		{"inside", Window{From: day(3), To: day(4)}, true},
		{"touching end", Window{From: day(10), To: day(12)}, true},
		{"touching start", Window{From: day(1).AddDate(0, 0, -3), To: day(1)}, true},
		{"after", Window{From: day(11), To: day(12)}, false},
		{"before", Window{To: day(1).Add(-time.Second)}, false},
		{"open end after start", Window{From: day(5)}, true},
		{"open end past span", Window{From: day(11)}, false},
		{"open start", Window{To: day(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := span.Overlaps(tt.window); got != tt.want {
				t.Fatalf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	s := Single(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := s.Validate(); err != nil {
		t.Fatalf("single-instant span should be valid: %v", err)
	}
	if !s.Contains(s.Start) {
		t.Fatalf("span should contain its own start")
	}
}
