package model

import "time"

// PaymentMethod labels how a payment was settled.  No gateway is
// contacted for any of them.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
	MethodWebpay   PaymentMethod = "webpay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodWebpay:
		return true
	}
	return false
}

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentApproved, PaymentRejected:
		return true
	}
	return false
}

// Payment settles exactly one reservation.  AmountCents equals the
// reservation total at creation time.
type Payment struct {
	ID            uint64        `json:"id"`
	ReservationID uint64        `json:"reservation_id"`
	AmountCents   int64         `json:"amount_cents"`
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	PaidAt        time.Time     `json:"paid_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ReservationSummary is embedded in payment reads.
type ReservationSummary struct {
	ID         uint64            `json:"id"`
	ClientID   uint64            `json:"client_id"`
	PackageID  uint64            `json:"package_id"`
	TravelDate time.Time         `json:"travel_date"`
	Headcount  int               `json:"headcount"`
	TotalCents int64             `json:"total_cents"`
	Status     ReservationStatus `json:"status"`
}

// PaymentDetail is a payment joined with its reservation.  Reservation
// is nil when the reservation was deleted after the payment was made.
type PaymentDetail struct {
	Payment
	Reservation *ReservationSummary `json:"reservation"`
}
