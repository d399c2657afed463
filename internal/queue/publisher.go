package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher sends domain events to RabbitMQ, dialing a fresh connection
// for every publish.
type Publisher struct {
	url string
	log *logrus.Entry
}

func NewPublisher(url string, log *logrus.Logger) *Publisher {
	return &Publisher{url: url, log: log.WithField("component", "publisher")}
}

// PublishReservationConfirmed publishes event to the reservation.confirmed
// queue as a persistent JSON message.  A missing MessageID is filled with
// a random UUID.  Errors are logged and returned so the caller can choose
// to ignore them.
func (p *Publisher) PublishReservationConfirmed(ctx context.Context, event ReservationConfirmedEvent) error {
	if event.MessageID == "" {
		event.MessageID = uuid.NewString()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.publish(ctx, ReservationConfirmedQueue, event.MessageID, body); err != nil {
		p.log.WithFields(logrus.Fields{
			"reservation_id": event.ReservationID,
			"message_id":     event.MessageID,
		}).WithError(err).Warn("publish failed")
		return err
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, queue, messageID string, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	// Default exchange, so the queue name is the routing key.
	return ch.PublishWithContext(ctx, "", queue, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
