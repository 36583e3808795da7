package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"gardiens/internal/app/commands"
	"gardiens/internal/app/outbox"
	"gardiens/internal/app/queries"
)

type pingCommand struct{ Name string }

func (pingCommand) Key() string { return "test.ping" }

func (c pingCommand) Validate() error {
	if c.Name == "" {
		return errors.New("name required")
	}
	return nil
}

type pingQuery struct{}

func (pingQuery) Key() string { return "test.ping_query" }

func newCommandBus(calls *int) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.Register[pingCommand, string](bus, handlerFunc(func(ctx context.Context, cmd pingCommand) (string, error) {
		*calls++
		return "pong:" + cmd.Name, nil
	}))
	return bus
}

type handlerFunc func(ctx context.Context, cmd pingCommand) (string, error)

func (f handlerFunc) Handle(ctx context.Context, cmd pingCommand) (string, error) { return f(ctx, cmd) }

func TestChainCommandsOrder(t *testing.T) {
	var order []string
	mark := func(name string) CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	calls := 0
	bus := ChainCommands(newCommandBus(&calls), mark("outer"), mark("inner"))
	if _, err := commands.Dispatch[pingCommand, string](context.Background(), bus, pingCommand{Name: "a"}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if want := []string{"outer", "inner"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, order)
	}
}

func TestValidationStopsInvalidCommands(t *testing.T) {
	calls := 0
	bus := ChainCommands(newCommandBus(&calls), Validation(SelfValidator{}))
	if _, err := commands.Dispatch[pingCommand, string](context.Background(), bus, pingCommand{}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("handler must not run for invalid commands")
	}
	got, err := commands.Dispatch[pingCommand, string](context.Background(), bus, pingCommand{Name: "ok"})
	if err != nil || got != "pong:ok" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}
}

type denyAll struct{}

func (denyAll) Authorize(context.Context, any) error { return errors.New("denied") }

func TestQueryAuthorization(t *testing.T) {
	bus := queries.NewInMemoryBus()
	queries.Register[pingQuery, int](bus, queries.HandlerFunc[pingQuery, int](func(context.Context, pingQuery) (int, error) {
		return 1, nil
	}))
	guarded := ChainQueries(bus, QueryAuthorization(denyAll{}))
	if _, err := queries.Ask[pingQuery, int](context.Background(), guarded, pingQuery{}); err == nil || err.Error() != "denied" {
		t.Fatalf("expected denied, got %v", err)
	}
}

func TestLoggingRecordsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	calls := 0
	bus := ChainCommands(newCommandBus(&calls), CommandLogging(logger), Validation(SelfValidator{}))

	_, _ = commands.Dispatch[pingCommand, string](context.Background(), bus, pingCommand{})
	if !strings.Contains(buf.String(), "bus message failed") || !strings.Contains(buf.String(), "test.ping") {
		t.Fatalf("\nwanted:\nfailure log for test.ping\ngot:\n%q", buf.String())
	}
	buf.Reset()
	_, _ = commands.Dispatch[pingCommand, string](context.Background(), bus, pingCommand{Name: "x"})
	if !strings.Contains(buf.String(), "bus message handled") {
		t.Fatalf("\nwanted:\nsuccess log\ngot:\n%q", buf.String())
	}
}

type countingOutbox struct{ flushed int }

func (o *countingOutbox) Add(context.Context, outbox.EventRecord) error { return nil }
func (o *countingOutbox) Flush(context.Context) error {
	o.flushed++
	return nil
}

func TestOutboxFlushOnlyOnSuccess(t *testing.T) {
	box := &countingOutbox{}
	calls := 0
	bus := ChainCommands(newCommandBus(&calls), Validation(SelfValidator{}), OutboxFlush(box))
	_, _ = commands.Dispatch[pingCommand, string](context.Background(), bus, pingCommand{})
	_, _ = commands.Dispatch[pingCommand, string](context.Background(), bus, pingCommand{Name: "x"})
	if box.flushed != 1 {
		t.Fatalf("expected one flush, got %d", box.flushed)
	}
}
