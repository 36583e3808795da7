package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeQueue struct {
	docs   []*EventDocument
	sent   []string
	failed map[string]time.Time
}

func (q *fakeQueue) Claim(context.Context, string) (*EventDocument, error) {
	if len(q.docs) == 0 {
		return nil, nil
	}
	doc := q.docs[0]
	q.docs = q.docs[1:]
	return doc, nil
}

func (q *fakeQueue) MarkSent(_ context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id string, next time.Time, _ string) error {
	if q.failed == nil {
		q.failed = map[string]time.Time{}
	}
	q.failed[id] = next
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	err  error
	msgs []published
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func TestDrainPublishesCloudEvents(t *testing.T) {
	at := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	queue := &fakeQueue{docs: []*EventDocument{{
		ID:         "evt-1",
		Name:       "listing.favorite_toggled",
		Payload:    []byte(`{"listing_id":"l-1","favorite":true}`),
		OccurredAt: at,
		Aggregate:  "l-1",
		Headers:    map[string]string{"traceparent": "00-abc"},
	}}}
	producer := &fakeProducer{}
	w := &Worker{Queue: queue, Producer: producer, TopicPrefix: "dev."}

	sent, err := w.Drain(context.Background())
	if err != nil || sent != 1 {
		t.Fatalf("Drain() = %d, %v", sent, err)
	}
	if len(producer.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(producer.msgs))
	}
	msg := producer.msgs[0]
	if msg.topic != "dev.listing.events.v1" || msg.key != "l-1" {
		t.Fatalf("unexpected routing %q/%q", msg.topic, msg.key)
	}
	if msg.headers["content-type"] != "application/cloudevents+json" || msg.headers["traceparent"] != "00-abc" {
		t.Fatalf("unexpected headers %v", msg.headers)
	}
	var envelope map[string]any
	if err := json.Unmarshal(msg.payload, &envelope); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if envelope["id"] != "evt-1" || envelope["type"] != "listing.favorite_toggled.v1" || envelope["source"] != "app://gardiens" {
		t.Fatalf("unexpected envelope %v", envelope)
	}
	if envelope["time"] != "2024-07-01T08:00:00Z" {
		t.Fatalf("unexpected time %v", envelope["time"])
	}
	data, _ := envelope["data"].(map[string]any)
	if data["listing_id"] != "l-1" {
		t.Fatalf("unexpected data %v", data)
	}
	if len(queue.sent) != 1 || queue.sent[0] != "evt-1" {
		t.Fatalf("record not marked sent: %v", queue.sent)
	}
}

func TestDrainSchedulesRetryOnPublishFailure(t *testing.T) {
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	queue := &fakeQueue{docs: []*EventDocument{
		{ID: "a", Name: "search.performed", Payload: []byte(`{}`), Attempts: 1},
	}}
	w := &Worker{
		Queue:    queue,
		Producer: &fakeProducer{err: errors.New("broker down")},
		Backoff:  []time.Duration{time.Second, 5 * time.Second},
		Now:      func() time.Time { return now },
	}
	if _, err := w.Drain(context.Background()); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	next, ok := queue.failed["a"]
	if !ok || !next.Equal(now.Add(5*time.Second)) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", now.Add(5*time.Second), next)
	}
	if len(queue.sent) != 0 {
		t.Fatalf("failed record must not be marked sent")
	}
}

func TestDrainRespectsBatchSize(t *testing.T) {
	queue := &fakeQueue{}
	for _, id := range []string{"1", "2", "3"} {
		queue.docs = append(queue.docs, &EventDocument{ID: id, Name: "session.opened", Payload: []byte(`{}`)})
	}
	w := &Worker{Queue: queue, Producer: &fakeProducer{}, BatchSize: 2}
	sent, _ := w.Drain(context.Background())
	if sent != 2 || len(queue.docs) != 1 {
		t.Fatalf("expected 2 sent and 1 left, got %d sent and %d left", sent, len(queue.docs))
	}
}

func TestTopicFor(t *testing.T) {
	w := &Worker{}
	cases := map[string]string{
		"search.performed":         "search.events.v1",
		"listing.favorite_toggled": "listing.events.v1",
		"plain":                    "plain.events.v1",
	}
	for name, want := range cases {
		if got := w.topicFor(name); got != want {
			t.Fatalf("topicFor(%q)\nwanted:\n%s\ngot:\n%s", name, want, got)
		}
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	if err := (&Worker{}).Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Fatalf("expected ErrWorkerNotConfigured, got %v", err)
	}
}
