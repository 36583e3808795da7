package refresh

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrInFlight    = errors.New("refresh: fetch already in flight")
	ErrCoolingDown = errors.New("refresh: fetch repeated within cooldown")
)

// DefaultCooldown is how long a completed fetch suppresses another one for the same credential.
const DefaultCooldown = time.Minute

type State int

const (
	Idle State = iota
	InFlight
	Cooldown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in_flight"
	case Cooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// Ticket identifies one started fetch. Only the latest ticket may apply its result.
type Ticket struct {
	Credential string
	Generation uint64
	StartedAt  time.Time
}

// Guard de-duplicates fetches of one remote collection.
type Guard struct {
	mu          sync.Mutex
	cooldown    time.Duration
	now         func() time.Time
	state       State
	credential  string
	generation  uint64
	completedAt time.Time
}

type Option func(*Guard)

func WithCooldown(d time.Duration) Option {
	return func(g *Guard) {
		if d >= 0 {
			g.cooldown = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

func NewGuard(opts ...Option) *Guard {
	g := &Guard{cooldown: DefaultCooldown, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State reports the current state, expiring a finished cooldown first.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expire()
	return g.state
}

// Credential returns the credential of the last started fetch.
func (g *Guard) Credential() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.credential
}

// Begin starts a fetch for credential. A new credential always wins and
// supersedes whatever is in flight.
func (g *Guard) Begin(credential string) (Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expire()
	if credential == g.credential {
		switch g.state {
		case InFlight:
			return Ticket{}, ErrInFlight
		case Cooldown:
			return Ticket{}, ErrCoolingDown
		}
	}
	g.generation++
	g.state = InFlight
	g.credential = credential
	return Ticket{Credential: credential, Generation: g.generation, StartedAt: g.now()}, nil
}

// Complete records a successful fetch. It returns false when t was superseded
// or cancelled; the caller must then discard the result.
func (g *Guard) Complete(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.current(t) {
		return false
	}
	g.state = Cooldown
	g.completedAt = g.now()
	return true
}

// Fail records a failed fetch; the next Begin may retry immediately.
func (g *Guard) Fail(t Ticket) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.current(t) {
		return
	}
	g.state = Idle
}

// Cancel abandons t so that a late Complete is ignored.
func (g *Guard) Cancel(t Ticket) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.current(t) {
		return
	}
	g.generation++
	g.state = Idle
}

// Reset forgets the cooldown, e.g. after local data was invalidated.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Cooldown {
		g.state = Idle
	}
}

func (g *Guard) current(t Ticket) bool {
	return g.state == InFlight && t.Generation == g.generation && t.Credential == g.credential
}

func (g *Guard) expire() {
	if g.state == Cooldown && !g.now().Before(g.completedAt.Add(g.cooldown)) {
		g.state = Idle
	}
}
