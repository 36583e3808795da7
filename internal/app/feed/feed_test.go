package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainlistings "gardiens/internal/domain/listings"
	"gardiens/internal/domain/refresh"
)

type stubSource struct {
	mu      sync.Mutex
	calls   int
	err     error
	release chan struct{}
	started chan struct{}
}

func (s *stubSource) ListAnnouncements(ctx context.Context, credential string, status domainlistings.Status) ([]*domainlistings.Listing, error) {
	s.mu.Lock()
	s.calls++
	release, started := s.release, s.started
	s.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return []*domainlistings.Listing{{ID: domainlistings.ListingID("for-" + credential)}}, nil
}

func (s *stubSource) ToggleFavorite(context.Context, string, domainlistings.ListingID) (bool, error) {
	return false, nil
}

func (s *stubSource) CareTypes(context.Context, string) ([]string, error) { return nil, nil }

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func collect(into *[]*domainlistings.Listing) ApplyFunc {
	return func(ctx context.Context, items []*domainlistings.Listing, _ refresh.Ticket) (bool, error) {
		*into = items
		return true, nil
	}
}

func TestRefreshAppliesThenCoolsDown(t *testing.T) {
	clk := &clock{now: time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)}
	src := &stubSource{}
	f := &Feed{Source: src, Cooldown: time.Minute, Now: clk.Now}
	req := Request{SessionID: "s-1", Credential: "tok"}

	var got []*domainlistings.Listing
	outcome, err := f.Refresh(context.Background(), req, collect(&got))
	if err != nil || outcome != OutcomeRefreshed {
		t.Fatalf("first refresh = %s, %v", outcome, err)
	}
	if len(got) != 1 || got[0].ID != "for-tok" {
		t.Fatalf("unexpected snapshot %v", got)
	}

	outcome, _ = f.Refresh(context.Background(), req, collect(&got))
	if outcome != OutcomeCoolingDown || src.Calls() != 1 {
		t.Fatalf("\nwanted:\ncooling_down after 1 call\ngot:\n%s after %d calls", outcome, src.Calls())
	}
	if f.State("s-1") != refresh.Cooldown {
		t.Fatalf("expected cooldown state, got %s", f.State("s-1"))
	}

	clk.now = clk.now.Add(time.Minute)
	outcome, _ = f.Refresh(context.Background(), req, collect(&got))
	if outcome != OutcomeRefreshed || src.Calls() != 2 {
		t.Fatalf("expected a new fetch after cooldown, got %s", outcome)
	}
}

func TestRefreshDeduplicatesConcurrentFetches(t *testing.T) {
	src := &stubSource{release: make(chan struct{}), started: make(chan struct{}, 1)}
	f := &Feed{Source: src}
	req := Request{SessionID: "s-1", Credential: "tok"}

	done := make(chan Outcome)
	go func() {
		var got []*domainlistings.Listing
		outcome, _ := f.Refresh(context.Background(), req, collect(&got))
		done <- outcome
	}()
	<-src.started

	var got []*domainlistings.Listing
	outcome, err := f.Refresh(context.Background(), req, collect(&got))
	if err != nil || outcome != OutcomeInFlight {
		t.Fatalf("second refresh = %s, %v", outcome, err)
	}
	close(src.release)
	if first := <-done; first != OutcomeRefreshed {
		t.Fatalf("first refresh = %s", first)
	}
	if src.Calls() != 1 {
		t.Fatalf("expected one upstream call, got %d", src.Calls())
	}
}

func TestRefreshDiscardsSupersededFetch(t *testing.T) {
	src := &stubSource{release: make(chan struct{}), started: make(chan struct{}, 2)}
	f := &Feed{Source: src}

	applied := make(chan string, 2)
	apply := func(ctx context.Context, items []*domainlistings.Listing, ticket refresh.Ticket) (bool, error) {
		applied <- ticket.Credential
		return true, nil
	}
	done := make(chan Outcome)
	go func() {
		outcome, _ := f.Refresh(context.Background(), Request{SessionID: "s-1", Credential: "old"}, apply)
		done <- outcome
	}()
	<-src.started

	go func() {
		outcome, _ := f.Refresh(context.Background(), Request{SessionID: "s-1", Credential: "new"}, apply)
		done <- outcome
	}()
	<-src.started
	close(src.release)

	outcomes := map[Outcome]int{}
	outcomes[<-done]++
	outcomes[<-done]++
	if outcomes[OutcomeRefreshed] != 1 || outcomes[OutcomeDiscarded] != 1 {
		t.Fatalf("unexpected outcomes %v", outcomes)
	}
	if cred := <-applied; cred != "new" {
		t.Fatalf("\nwanted:\nnew\ngot:\n%s", cred)
	}
}

func TestRefreshFailureAllowsRetry(t *testing.T) {
	src := &stubSource{err: errors.New("boom")}
	f := &Feed{Source: src}
	req := Request{SessionID: "s-1", Credential: "tok"}
	var got []*domainlistings.Listing
	if _, err := f.Refresh(context.Background(), req, collect(&got)); err == nil {
		t.Fatalf("expected upstream error")
	}
	src.err = nil
	if outcome, err := f.Refresh(context.Background(), req, collect(&got)); err != nil || outcome != OutcomeRefreshed {
		t.Fatalf("retry = %s, %v", outcome, err)
	}
}

func TestRefreshRejectedApplyIsDiscarded(t *testing.T) {
	f := &Feed{Source: &stubSource{}}
	reject := func(context.Context, []*domainlistings.Listing, refresh.Ticket) (bool, error) { return false, nil }
	outcome, err := f.Refresh(context.Background(), Request{SessionID: "s", Credential: "tok"}, reject)
	if err != nil || outcome != OutcomeDiscarded {
		t.Fatalf("got %s, %v", outcome, err)
	}
}

func TestInvalidateAndForget(t *testing.T) {
	src := &stubSource{}
	f := &Feed{Source: src}
	req := Request{SessionID: "s-1", Credential: "tok"}
	var got []*domainlistings.Listing
	_, _ = f.Refresh(context.Background(), req, collect(&got))
	f.Invalidate("s-1")
	if outcome, _ := f.Refresh(context.Background(), req, collect(&got)); outcome != OutcomeRefreshed {
		t.Fatalf("invalidate should clear the cooldown, got %s", outcome)
	}
	f.Forget("s-1")
	if f.State("s-1") != refresh.Idle {
		t.Fatalf("forgotten session should be idle")
	}
}

func TestRefreshRequiresSource(t *testing.T) {
	if _, err := (&Feed{}).Refresh(context.Background(), Request{}, nil); !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing, got %v", err)
	}
}
