package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/rihanvyakoob07/authenflow-platform/internal/queue"
)

// EventPublisher hands activity events to the broker.  Publish must not
// block the request that triggered it.
type EventPublisher interface {
	Publish(ev queue.ActivityEvent)
}

// NopPublisher discards every event.  It is used when EVENTS_ENABLED is
// off.
type NopPublisher struct{}

func (NopPublisher) Publish(queue.ActivityEvent) {}

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher buffers events in memory and sends them to RabbitMQ from a
// single goroutine started with Run.  When the buffer is full, events are
// dropped and counted; a slow broker never slows down the API.
type AMQPPublisher struct {
	url     string
	events  chan queue.ActivityEvent
	log     logrus.FieldLogger
	dropped atomic.Int64
	now     func() time.Time
}

// NewAMQPPublisher returns a publisher for url holding up to buffer
// pending events.
func NewAMQPPublisher(url string, buffer int, log logrus.FieldLogger) *AMQPPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &AMQPPublisher{
		url:    url,
		events: make(chan queue.ActivityEvent, buffer),
		log:    log.WithField("component", "event-publisher"),
		now:    time.Now,
	}
}

// Publish stamps ev with an id and a timestamp and enqueues it.
func (p *AMQPPublisher) Publish(ev queue.ActivityEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = p.now().UTC()
	}
	select {
	case p.events <- ev:
	default:
		p.dropped.Add(1)
		p.log.WithFields(logrus.Fields{"type": ev.Type, "product_id": ev.ProductID}).Warn("event buffer full, dropping event")
	}
}

// Dropped reports how many events were discarded because the buffer was
// full.
func (p *AMQPPublisher) Dropped() int64 { return p.dropped.Load() }

// Run dials the broker and drains the buffer until ctx is cancelled.
// Connection failures are retried with exponential backoff.
func (p *AMQPPublisher) Run(ctx context.Context) {
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			p.log.WithError(err).Warnf("dial failed, retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		ch, err := conn.Channel()
		if err != nil {
			p.log.WithError(err).Warn("channel open failed")
			_ = conn.Close()
			sleep(ctx, 2*time.Second)
			continue
		}
		err = p.drain(ctx, ch, conn.NotifyClose(make(chan *amqp.Error, 1)))
		_ = ch.Close()
		_ = conn.Close()
		if err != nil {
			p.log.WithError(err).Warn("publish loop ended, reconnecting")
			sleep(ctx, 2*time.Second)
		}
	}
}

func (p *AMQPPublisher) drain(ctx context.Context, ch amqpChannel, closed <-chan *amqp.Error) error {
	for _, name := range queue.Queues() {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr := <-closed:
			if amqpErr == nil {
				return fmt.Errorf("connection closed")
			}
			return amqpErr
		case ev := <-p.events:
			if err := p.send(ctx, ch, ev); err != nil {
				// The event is lost; the broker state is unknown.
				p.log.WithError(err).WithField("type", ev.Type).Error("publish failed")
				return err
			}
		}
	}
}

func (p *AMQPPublisher) send(ctx context.Context, ch amqpChannel, ev queue.ActivityEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(ctx, "", ev.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    ev.OccurredAt,
		Type:         ev.Type,
		Body:         body,
	})
}

// sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
