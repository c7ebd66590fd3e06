package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// ActivityLogName is the file, inside the consumer's log directory, that
// receives one line per activity event.
const ActivityLogName = "activity.log"

// ActivityConsumer drains the activity queues and appends a single-line
// record for each event to its log file.
type ActivityConsumer struct {
	url    string
	logDir string
	log    logrus.FieldLogger
	mu     sync.Mutex
}

func NewActivityConsumer(url, logDir string, log logrus.FieldLogger) *ActivityConsumer {
	if logDir == "" {
		logDir = "logs"
	}
	return &ActivityConsumer{url: url, logDir: logDir, log: log.WithField("component", "activity-consumer")}
}

// Run connects to RabbitMQ, declares the activity queues (durable) and
// consumes them until ctx is cancelled.  Broker failures are retried with
// exponential backoff; a malformed message is rejected without requeue so
// the server keeps running.
func (c *ActivityConsumer) Run(ctx context.Context) {
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.WithError(err).Warnf("failed to dial broker, retrying in %s", backoff)
			if !wait(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if err != nil {
			c.log.WithError(err).Warn("consume loop ended, reconnecting")
			wait(ctx, 2*time.Second)
		}
	}
}

func (c *ActivityConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("set QoS failed")
	}

	merged := make(chan amqp.Delivery)
	var wg sync.WaitGroup
	for _, name := range Queues() {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range msgs {
				select {
				case merged <- d:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-merged:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(d.Body); err != nil {
				c.log.WithError(err).Error("handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *ActivityConsumer) handleMessage(body []byte) error {
	var ev ActivityEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.ProductID == 0 {
		return fmt.Errorf("incomplete event %q", ev.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.logDir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.logDir, ActivityLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev ActivityEvent) string {
	at := ev.OccurredAt.UTC().Format(time.RFC3339)
	switch ev.Type {
	case ReviewPosted:
		return fmt.Sprintf("[%s] Review posted | event_id=%s | product_id=%d | user_id=%d | rating=%g | reviews=%d\n",
			at, ev.ID, ev.ProductID, ev.UserID, ev.Rating, ev.Reviews)
	case ProductClicked:
		return fmt.Sprintf("[%s] Product clicked | event_id=%s | product_id=%d\n", at, ev.ID, ev.ProductID)
	}
	return fmt.Sprintf("[%s] %s | event_id=%s | product_id=%d\n", at, ev.Type, ev.ID, ev.ProductID)
}

func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
