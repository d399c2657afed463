package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewJournal returns a size-rotated append-only file for confirmed
// bookings.
func NewJournal(path string, maxSizeMB, maxBackups int) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
}

// Consumer reads reservation.confirmed and appends one line per event to
// a journal.
type Consumer struct {
	url     string
	journal io.Writer
	log     *logrus.Entry
}

func NewConsumer(url string, journal io.Writer, log *logrus.Logger) *Consumer {
	return &Consumer{url: url, journal: journal, log: log.WithField("component", "booking-consumer")}
}

// errMalformed marks deliveries that can never be journaled.
var errMalformed = errors.New("malformed event")

// Run connects to RabbitMQ, declares the queue and consumes until ctx is
// cancelled.  Broker failures trigger a reconnect with exponential
// backoff capped at 30s.  Malformed messages are rejected without
// requeue so they cannot spin the loop; journal write failures are
// requeued after a short pause.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.WithError(err).Warnf("dial failed; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(ReservationConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ReservationConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(d.Body); err != nil {
				retry := requeue(err)
				c.log.WithError(err).WithField("requeue", retry).Error("handle message failed")
				if retry && !sleep(ctx, time.Second) {
					_ = d.Nack(false, true)
					return ctx.Err()
				}
				_ = d.Nack(false, retry)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(body []byte) error {
	var ev ReservationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: unmarshal: %v", errMalformed, err)
	}
	if ev.ReservationID == 0 {
		return fmt.Errorf("%w: missing reservation_id", errMalformed)
	}
	if _, err := io.WriteString(c.journal, formatJournalLine(ev)); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	c.log.WithFields(logrus.Fields{
		"reservation_id": ev.ReservationID,
		"message_id":     ev.MessageID,
	}).Info("reservation confirmed")
	return nil
}

// requeue reports whether a failed delivery may succeed on redelivery.
func requeue(err error) bool {
	return err != nil && !errors.Is(err, errMalformed)
}

func formatJournalLine(ev ReservationConfirmedEvent) string {
	return fmt.Sprintf("[%s] Reservation confirmed | reservation_id=%d | client_id=%d | package=%q | destination=%q | travel_date=%s | headcount=%d | total=%d cents | payment_id=%d | method=%s | message_id=%s\n",
		ev.ConfirmedAt, ev.ReservationID, ev.ClientID, ev.PackageName, ev.Destination, ev.TravelDate,
		ev.Headcount, ev.TotalCents, ev.PaymentID, ev.Method, ev.MessageID)
}

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
