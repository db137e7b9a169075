package queue

// The audit consumer listens on both reservation queues and appends one
// line per event to an audit log file.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AuditConsumer writes reservation events to Path.
type AuditConsumer struct {
	URL  string
	Path string
	Log  *zap.Logger
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff (capped at 30s) whenever the connection drops.
func (a *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(a.URL)
		if err != nil {
			a.Log.Warn("audit-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = a.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.Log.Warn("audit-consumer: consume loop ended, reconnecting", zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (a *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		a.Log.Warn("audit-consumer: set QoS failed", zap.Error(err))
	}

	deliveries := make(map[string]<-chan amqp.Delivery, 2)
	for _, name := range []string{ReservationsCreatedQueue, StatusChangedQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		deliveries[name] = msgs
	}

	created, changed := deliveries[ReservationsCreatedQueue], deliveries[StatusChangedQueue]
	for {
		var (
			d  amqp.Delivery
			ok bool
			q  string
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-created:
			q = ReservationsCreatedQueue
		case d, ok = <-changed:
			q = StatusChangedQueue
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := a.handle(q, d.Body); err != nil {
			a.Log.Error("audit-consumer: handle message failed", zap.String("queue", q), zap.Error(err))
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

func (a *AuditConsumer) handle(queue string, body []byte) error {
	line, err := FormatAuditLine(queue, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(a.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// FormatAuditLine renders one event as a single newline-terminated line.
func FormatAuditLine(queue string, body []byte) (string, error) {
	switch queue {
	case ReservationsCreatedQueue:
		var ev ReservationsCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		rooms := make([]string, 0, len(ev.Rooms))
		for _, r := range ev.Rooms {
			rooms = append(rooms, fmt.Sprintf("%d:%d@%s..%s", r.ReservationID, r.RoomID, r.Checkin, r.Checkout))
		}
		return fmt.Sprintf("[%s] Reservations created | batch_id=%s | client=%q | guests=%d/%d/%d | rooms=[%s]\n",
			ev.CreatedAt, ev.BatchID, ev.ClientName, ev.Adults, ev.Children, ev.Infants, strings.Join(rooms, ",")), nil
	case StatusChangedQueue:
		var ev StatusChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Reservation status changed | reservation_id=%d | room_id=%d | %s -> %s\n",
			ev.ChangedAt, ev.ReservationID, ev.RoomID, ev.From, ev.To), nil
	}
	return "", fmt.Errorf("unknown queue %q", queue)
}
