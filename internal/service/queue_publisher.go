// Package service publishes reservation events to RabbitMQ.  Errors are
// logged and returned so callers can ignore them without interrupting the
// request that produced the event.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	q "github.com/iliyamo/room-timeline/internal/queue"
)

// Publisher sends events to the default exchange, routed by queue name.
// A connection is dialled per publish; reservation events are rare enough
// that a pooled channel is not worth its reconnect logic.
type Publisher struct {
	URL string
	Log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{URL: url, Log: log}
}

// PublishReservationsCreated publishes a batch event to reservations.created.
func (p *Publisher) PublishReservationsCreated(ctx context.Context, ev q.ReservationsCreatedEvent) error {
	return p.publish(ctx, q.ReservationsCreatedQueue, ev)
}

// PublishStatusChanged publishes to reservations.status_changed.
func (p *Publisher) PublishStatusChanged(ctx context.Context, ev q.StatusChangedEvent) error {
	return p.publish(ctx, q.StatusChangedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	log := p.Log.With(zap.String("queue", queue))

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Error("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		log.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	log.Debug("rabbitmq: event published", zap.Int("bytes", len(body)))
	return nil
}
