// Package queue defines message payloads exchanged over the message broker
// together with the RabbitMQ publisher and consumer that carry them.
package queue

// ReservationConfirmedQueue is the durable queue confirmed bookings are
// published to.
const ReservationConfirmedQueue = "reservation.confirmed"

// ReservationConfirmedEvent is published after a payment approval commits
// and its reservation becomes confirmed.  It contains enough information
// for downstream consumers to journal, notify or feed analytics without
// querying the primary database.
type ReservationConfirmedEvent struct {
	MessageID     string `json:"message_id"`
	ReservationID uint64 `json:"reservation_id"`
	ClientID      uint64 `json:"client_id"`
	PackageID     uint64 `json:"package_id"`
	PackageName   string `json:"package_name"`
	Destination   string `json:"destination"`
	TravelDate    string `json:"travel_date"` // YYYY-MM-DD
	Headcount     int    `json:"headcount"`
	TotalCents    int64  `json:"total_cents"`
	PaymentID     uint64 `json:"payment_id"`
	Method        string `json:"method"`
	ConfirmedAt   string `json:"confirmed_at"` // RFC3339, UTC
}
