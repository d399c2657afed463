package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled, ReservationCompleted:
		return true
	}
	return false
}

// Reservation records a client's booking of a package for a travel date.
//
// Fields:
//  ID         – primary key identifier.
//  ClientID   – client the booking belongs to.
//  PackageID  – package being booked; fixed after creation.
//  TravelDate – first day of travel (date only, UTC).
//  Headcount  – number of travellers, at least one.
//  TotalCents – package price times headcount at creation time.
//  Status     – pending, confirmed, cancelled or completed.
//  Notes      – optional free text.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Reservation struct {
	ID         uint64            `json:"id"`
	ClientID   uint64            `json:"client_id"`
	PackageID  uint64            `json:"package_id"`
	TravelDate time.Time         `json:"travel_date"`
	Headcount  int               `json:"headcount"`
	TotalCents int64             `json:"total_cents"`
	Status     ReservationStatus `json:"status"`
	Notes      *string           `json:"notes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ReservationDetail is a reservation joined with its client and package.
type ReservationDetail struct {
	Reservation
	Client  ClientSummary  `json:"client"`
	Package PackageSummary `json:"package"`
}

// ReservationUpdate carries the fields an administrator may edit
// directly.  Nil fields are left unchanged.  Total and status are not
// part of it.
type ReservationUpdate struct {
	ClientID   *uint64
	TravelDate *time.Time
	Headcount  *int
	Notes      *string
}

// Empty reports whether the update changes nothing.
func (u ReservationUpdate) Empty() bool {
	return u.ClientID == nil && u.TravelDate == nil && u.Headcount == nil && u.Notes == nil
}

// PaymentState is derived from the reservation status: a confirmed
// reservation counts as paid.
type PaymentState string

const (
	PaymentStatePaid    PaymentState = "paid"
	PaymentStatePending PaymentState = "pending"
)

// ReservationPaymentStatus is the projection returned by the
// payment-status lookup.
type ReservationPaymentStatus struct {
	ReservationID uint64            `json:"reservation_id"`
	Status        ReservationStatus `json:"status"`
	PaymentState  PaymentState      `json:"payment_state"`
	TotalCents    int64             `json:"total_cents"`
	TravelDate    time.Time         `json:"travel_date"`
	Headcount     int               `json:"headcount"`
}
