package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gardiens/internal/domain/shared/events"
)

type testEvent struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

func (e testEvent) EventName() string     { return "test.happened" }
func (e testEvent) AggregateID() string   { return e.ID }
func (e testEvent) OccurredAt() time.Time { return e.At }

type sliceOutbox struct{ records []EventRecord }

func (o *sliceOutbox) Add(_ context.Context, r EventRecord) error {
	o.records = append(o.records, r)
	return nil
}
func (o *sliceOutbox) Flush(context.Context) error { return nil }

func TestRecordDomainEvents(t *testing.T) {
	box := &sliceOutbox{}
	at := time.Date(2024, 7, 1, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	n := 0
	enc := JSONEventEncoder{IDGenerator: func() string { n++; return "evt-" + string(rune('0'+n)) }}
	err := RecordDomainEvents(context.Background(), box, enc, []events.DomainEvent{testEvent{ID: "a", At: at}, testEvent{ID: "b", At: at}})
	if err != nil {
		t.Fatalf("RecordDomainEvents() error = %v", err)
	}
	if len(box.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(box.records))
	}
	first := box.records[0]
	if first.ID != "evt-1" || first.Name != "test.happened" || first.Aggregate != "a" {
		t.Fatalf("unexpected record %+v", first)
	}
	if first.OccurredAt.Location() != time.UTC {
		t.Fatalf("occurred_at should be UTC")
	}
	var decoded testEvent
	if err := json.Unmarshal(first.Payload, &decoded); err != nil || decoded.ID != "a" {
		t.Fatalf("payload not decodable: %v", err)
	}
	if err := RecordDomainEvents(context.Background(), nil, nil, []events.DomainEvent{testEvent{}}); err != nil {
		t.Fatalf("nil outbox should be ignored: %v", err)
	}
}

func TestRecordDomainEventsStampsContextHeaders(t *testing.T) {
	box := &sliceOutbox{}
	ctx := ContextWithHeaders(context.Background(), map[string]string{"x-request-id": "req-1"})
	ctx = ContextWithHeaders(ctx, map[string]string{"traceparent": "00-abc"})
	err := RecordDomainEvents(ctx, box, JSONEventEncoder{}, []events.DomainEvent{testEvent{ID: "a"}, nil})
	if err != nil {
		t.Fatalf("RecordDomainEvents() error = %v", err)
	}
	if len(box.records) != 1 {
		t.Fatalf("nil events should be skipped, got %d records", len(box.records))
	}
	headers := box.records[0].Headers
	if headers["x-request-id"] != "req-1" || headers["traceparent"] != "00-abc" {
		t.Fatalf("\nwanted:\nrequest id and traceparent\ngot:\n%v", headers)
	}
}
