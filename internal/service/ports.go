package service

import (
	"context"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// The interfaces below are what the services need from persistence.  The
// MySQL repositories and the in-memory store both satisfy them.  Lookups
// report a missing row as repository.ErrNotFound and unique key
// violations as repository.ErrConflict.

// Transactor runs fn atomically.  Stores called with the context passed
// to fn take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PackageStore is the catalog as seen by the services.
type PackageStore interface {
	Create(ctx context.Context, p *model.Package) error
	GetByID(ctx context.Context, id uint64) (*model.Package, error)
	List(ctx context.Context, f repository.PackageFilter) ([]model.Package, error)
	Update(ctx context.Context, p *model.Package) error
	Delete(ctx context.Context, id uint64) error
}

// ItineraryStore persists the daily schedule of packages.  Create and
// Update report a second row for the same package and day as
// repository.ErrConflict.
type ItineraryStore interface {
	Create(ctx context.Context, it *model.Itinerary) error
	GetByID(ctx context.Context, id uint64) (*model.Itinerary, error)
	List(ctx context.Context) ([]model.Itinerary, error)
	ListByPackage(ctx context.Context, packageID uint64) ([]model.Itinerary, error)
	Update(ctx context.Context, it *model.Itinerary) error
	Delete(ctx context.Context, id uint64) error
}

// ClientStore persists client profiles.
type ClientStore interface {
	Create(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id uint64) (*model.Client, error)
	GetByUserID(ctx context.Context, userID uint64) (*model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	Update(ctx context.Context, c *model.Client) error
	Delete(ctx context.Context, id uint64) error
}

// ReservationStore persists reservations.  GetDetail/List/ListByClient
// perform the client and package join.
type ReservationStore interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	GetDetail(ctx context.Context, id uint64) (*model.ReservationDetail, error)
	List(ctx context.Context) ([]model.ReservationDetail, error)
	ListByClient(ctx context.Context, clientID uint64) ([]model.ReservationDetail, error)
	Update(ctx context.Context, id uint64, upd model.ReservationUpdate) error
	SetStatus(ctx context.Context, id uint64, status model.ReservationStatus) error
	Delete(ctx context.Context, id uint64) error
}

// PaymentStore persists payments.  Create must reject a second payment
// for the same reservation with repository.ErrConflict.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id uint64) (*model.Payment, error)
	GetByReservation(ctx context.Context, reservationID uint64) (*model.Payment, error)
	GetDetail(ctx context.Context, id uint64) (*model.PaymentDetail, error)
	List(ctx context.Context) ([]model.PaymentDetail, error)
	UpdateMethod(ctx context.Context, id uint64, method model.PaymentMethod) error
	SetStatus(ctx context.Context, id uint64, status model.PaymentStatus) error
	Delete(ctx context.Context, id uint64) error
	ListApprovedUnconfirmed(ctx context.Context) ([]model.Payment, error)
}

// EventPublisher delivers domain events.  queue.Publisher implements it.
type EventPublisher interface {
	PublishReservationConfirmed(ctx context.Context, event queue.ReservationConfirmedEvent) error
}
