package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "gardiens/internal/app/outbox"
	infraoutbox "gardiens/internal/infra/outbox"
)

// Outbox keeps events in memory until flushed, then drops them. Used when no broker is configured.
type Outbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = nil
	return nil
}

func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

// Queue is an in-process outbox the worker can drain.
type Queue struct {
	mu   sync.Mutex
	docs []*infraoutbox.EventDocument
	now  func() time.Time
}

func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

func (q *Queue) Add(ctx context.Context, record appoutbox.EventRecord) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.docs = append(q.docs, &infraoutbox.EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     append([]byte(nil), record.Payload...),
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       infraoutbox.StateNew,
		NextAttempt: q.now(),
	})
	return nil
}

func (q *Queue) Flush(context.Context) error {
	return nil
}

func (q *Queue) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	for _, doc := range q.docs {
		if doc.State != infraoutbox.StateNew && doc.State != infraoutbox.StateFailed {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.State = infraoutbox.StateClaimed
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		copied := *doc
		return &copied, nil
	}
	return nil, nil
}

// MarkSent drops the record; sent events are not kept in memory.
func (q *Queue) MarkSent(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, doc := range q.docs {
		if doc.ID == id {
			q.docs = append(q.docs[:i], q.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (q *Queue) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, doc := range q.docs {
		if doc.ID == id {
			doc.State = infraoutbox.StateFailed
			doc.NextAttempt = next
			doc.LastError = errMsg
			doc.Attempts++
			return nil
		}
	}
	return nil
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.docs)
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ appoutbox.Outbox  = (*Queue)(nil)
	_ infraoutbox.Queue = (*Queue)(nil)
)
