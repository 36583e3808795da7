package memory

import (
	"context"
	"errors"
	"sync"

	"gardiens/internal/app/uow"
	domainsession "gardiens/internal/domain/session"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory hands out units over a session repository. Units with the same
// TxOptions.Lock are serialized in-process; nothing is rolled back.
type Factory struct {
	SessionsRepo domainsession.Repository
	locks        *keyedLocks
}

func NewFactory(sessions domainsession.Repository) *Factory {
	return &Factory{SessionsRepo: sessions, locks: newKeyedLocks()}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f == nil || f.SessionsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	unit := &Unit{sessions: f.SessionsRepo}
	if opts.Lock != "" && !opts.ReadOnly {
		if f.locks == nil {
			return nil, ErrFactoryMisconfigured
		}
		release, err := f.locks.acquire(ctx, opts.Lock)
		if err != nil {
			return nil, err
		}
		unit.release = release
	}
	return unit, nil
}

type Unit struct {
	sessions domainsession.Repository
	release  func()
	once     sync.Once
}

func (u *Unit) Sessions() domainsession.Repository {
	return u.sessions
}

func (u *Unit) Commit(ctx context.Context) error {
	u.done()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.done()
	return nil
}

func (u *Unit) done() {
	u.once.Do(func() {
		if u.release != nil {
			u.release()
		}
	})
}

// keyedLocks is a set of reference-counted binary semaphores.
type keyedLocks struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{slots: make(map[string]*lockSlot)}
}

func (l *keyedLocks) acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		return func() {
			<-slot.ch
			l.unref(key, slot)
		}, nil
	case <-ctx.Done():
		l.unref(key, slot)
		return nil, ctx.Err()
	}
}

func (l *keyedLocks) unref(key string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

var _ uow.UoWFactory = (*Factory)(nil)
