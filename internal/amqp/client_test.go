package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"fintrack/internal/core"
)

type fakeChannel struct {
	exchangeKind string
	published    []amqp091.Publishing
	keys         []string
	publishErr   error
	bound        string
	deliveries   chan amqp091.Delivery
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.exchangeKind = kind
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error) {
	return amqp091.Queue{Name: "amq.gen-test"}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error {
	f.bound = key
	return nil
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Close() error { return nil }

func sampleEvent(kind core.ChangeKind) core.ChangeEvent {
	return core.ChangeEvent{
		Kind:        kind,
		Transaction: core.SeedTransactions()[2],
		Count:       6,
		OccurredAt:  time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewClientDeclaresTopicExchange(t *testing.T) {
	ch := &fakeChannel{}
	if _, err := newClient(ch, "fintrack", nil); err != nil {
		t.Fatalf("newClient: %v", err)
	}
	if ch.exchangeKind != "topic" {
		t.Fatalf("exchange kind = %q, want topic", ch.exchangeKind)
	}
}

func TestNotifyPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	c, err := newClient(ch, "fintrack", nil)
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}

	if err := c.Notify(context.Background(), sampleEvent(core.TransactionDeleted)); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(ch.published) != 1 {
		t.Fatalf("expected one message, got %d", len(ch.published))
	}
	msg := ch.published[0]
	if ch.keys[0] != "transaction.deleted" {
		t.Errorf("routing key = %q", ch.keys[0])
	}
	if msg.DeliveryMode != amqp091.Persistent || msg.ContentType != "application/json" {
		t.Errorf("unexpected publishing: %+v", msg)
	}
	got, err := DecodeEvent(msg.Body)
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Transaction.ID != "tx-3" || got.Count != 6 {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Source == "" || got.Source != c.Source() {
		t.Fatalf("source = %q, want %q", got.Source, c.Source())
	}
}

func TestNotifyWrapsPublishError(t *testing.T) {
	boom := errors.New("channel closed")
	c, _ := newClient(&fakeChannel{publishErr: boom}, "fintrack", nil)
	if err := c.Notify(context.Background(), sampleEvent(core.TransactionAdded)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}

func TestDecodeEventRejectsUnknownKind(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{"kind":"transaction.edited"}`)); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := DecodeEvent([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestWatchDeliversEvents(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery, 3)}
	c, _ := newClient(ch, "fintrack", nil)

	body, _ := EncodeEvent(sampleEvent(core.TransactionAdded))
	ch.deliveries <- amqp091.Delivery{Body: []byte("garbage")}
	ch.deliveries <- amqp091.Delivery{Body: body}
	close(ch.deliveries)

	var got []core.ChangeEvent
	err := c.Watch(context.Background(), func(e core.ChangeEvent) error {
		got = append(got, e)
		return nil
	})
	if err == nil || err.Error() != "message channel closed" {
		t.Fatalf("expected closed channel error, got %v", err)
	}
	if ch.bound != RoutingKeyPattern {
		t.Fatalf("bound with %q", ch.bound)
	}
	if len(got) != 1 || got[0].Kind != core.TransactionAdded {
		t.Fatalf("unexpected events: %+v", got)
	}
}

func TestWatchStopsOnContextCancel(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery)}
	c, _ := newClient(ch, "fintrack", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Watch(ctx, func(core.ChangeEvent) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
