package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/model"
)

// ReservationService owns the reservation lifecycle: booking a package for
// a client, confirming, direct administrative edits and the derived
// payment-state projection.
type ReservationService struct {
	tx           Transactor
	reservations ReservationStore
	clients      ClientStore
	packages     PackageStore
	log          *logrus.Entry
}

func NewReservationService(tx Transactor, reservations ReservationStore, clients ClientStore, packages PackageStore, log *logrus.Logger) *ReservationService {
	if tx == nil || reservations == nil || clients == nil || packages == nil || log == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		tx:           tx,
		reservations: reservations,
		clients:      clients,
		packages:     packages,
		log:          log.WithField("component", "reservations"),
	}
}

// CreateReservationInput is what a client supplies when booking.  The
// total is never part of it.
type CreateReservationInput struct {
	ClientID   uint64
	PackageID  uint64
	TravelDate time.Time
	Headcount  int
	Notes      *string
}

// Create books a package.  The per-person price is read once and the
// resulting total is stored on the reservation; later catalog price
// changes do not touch it.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*model.ReservationDetail, error) {
	if in.Headcount < 1 {
		return nil, invalid("headcount must be at least 1, got %d", in.Headcount)
	}
	if in.TravelDate.IsZero() {
		return nil, invalid("travel_date is required")
	}
	notes := trimNotes(in.Notes)

	var created model.Reservation
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.clients.GetByID(ctx, in.ClientID); err != nil {
			return fromStore(err, "client", in.ClientID)
		}
		pkg, err := s.packages.GetByID(ctx, in.PackageID)
		if err != nil {
			return fromStore(err, "package", in.PackageID)
		}
		if !pkg.Bookable() {
			return fmt.Errorf("%w: package %d is not open for booking", ErrUnavailable, pkg.ID)
		}
		total, err := reservationTotal(pkg.PriceCents, in.Headcount)
		if err != nil {
			return err
		}
		created = model.Reservation{
			ClientID:   in.ClientID,
			PackageID:  pkg.ID,
			TravelDate: in.TravelDate,
			Headcount:  in.Headcount,
			TotalCents: total,
			Status:     model.ReservationPending,
			Notes:      notes,
		}
		return s.reservations.Create(ctx, &created)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"reservation_id": created.ID,
		"client_id":      created.ClientID,
		"package_id":     created.PackageID,
		"total_cents":    created.TotalCents,
	}).Info("reservation created")
	return s.Get(ctx, created.ID)
}

// reservationTotal multiplies price by headcount, rejecting overflow and
// negative prices.
func reservationTotal(priceCents int64, headcount int) (int64, error) {
	if priceCents < 0 {
		return 0, invalid("package price is negative")
	}
	n := int64(headcount)
	if priceCents > 0 && n > math.MaxInt64/priceCents {
		return 0, invalid("total for %d travellers overflows", headcount)
	}
	return priceCents * n, nil
}

// Confirm moves a reservation to confirmed.  Confirming an already
// confirmed reservation succeeds without writing.
func (s *ReservationService) Confirm(ctx context.Context, id uint64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.confirm(ctx, id)
		return err
	})
}

// confirm reports whether the status actually changed.  It must run
// inside a transaction.
func (s *ReservationService) confirm(ctx context.Context, id uint64) (bool, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return false, fromStore(err, "reservation", id)
	}
	if res.Status == model.ReservationConfirmed {
		return false, nil
	}
	if err := s.reservations.SetStatus(ctx, id, model.ReservationConfirmed); err != nil {
		return false, fromStore(err, "reservation", id)
	}
	s.log.WithFields(logrus.Fields{
		"reservation_id": id,
		"from":           res.Status,
	}).Info("reservation confirmed")
	return true, nil
}

// PaymentStatus reports the reservation's payment state.  A reservation
// counts as paid exactly when it is confirmed; the payment row itself is
// not consulted.
func (s *ReservationService) PaymentStatus(ctx context.Context, id uint64) (*model.ReservationPaymentStatus, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "reservation", id)
	}
	state := model.PaymentStatePending
	if res.Status == model.ReservationConfirmed {
		state = model.PaymentStatePaid
	}
	return &model.ReservationPaymentStatus{
		ReservationID: res.ID,
		Status:        res.Status,
		PaymentState:  state,
		TotalCents:    res.TotalCents,
		TravelDate:    res.TravelDate,
		Headcount:     res.Headcount,
	}, nil
}

// Get returns the reservation joined with its client and package.
func (s *ReservationService) Get(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	det, err := s.reservations.GetDetail(ctx, id)
	if err != nil {
		return nil, fromStore(err, "reservation", id)
	}
	return det, nil
}

// List returns all reservations, newest first.
func (s *ReservationService) List(ctx context.Context) ([]model.ReservationDetail, error) {
	return s.reservations.List(ctx)
}

// ListByClient returns one client's reservations.  An unknown client is
// ErrNotFound rather than an empty list.
func (s *ReservationService) ListByClient(ctx context.Context, clientID uint64) ([]model.ReservationDetail, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, fromStore(err, "client", clientID)
	}
	return s.reservations.ListByClient(ctx, clientID)
}

// Update edits client, travel date, headcount or notes.  The stored total
// stays as it was computed at booking time.
func (s *ReservationService) Update(ctx context.Context, id uint64, upd model.ReservationUpdate) (*model.ReservationDetail, error) {
	if upd.Headcount != nil && *upd.Headcount < 1 {
		return nil, invalid("headcount must be at least 1, got %d", *upd.Headcount)
	}
	if upd.TravelDate != nil && upd.TravelDate.IsZero() {
		return nil, invalid("travel_date cannot be empty")
	}
	if upd.Notes != nil {
		n := strings.TrimSpace(*upd.Notes)
		upd.Notes = &n
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.reservations.GetByID(ctx, id); err != nil {
			return fromStore(err, "reservation", id)
		}
		if upd.ClientID != nil {
			if _, err := s.clients.GetByID(ctx, *upd.ClientID); err != nil {
				return fromStore(err, "client", *upd.ClientID)
			}
		}
		if upd.Empty() {
			return nil
		}
		return fromStore(s.reservations.Update(ctx, id, upd), "reservation", id)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// OverrideStatus sets any status on a reservation.  No transition guard
// applies; this is the administrative escape hatch and the only way to
// cancel.
func (s *ReservationService) OverrideStatus(ctx context.Context, id uint64, status model.ReservationStatus) (*model.ReservationDetail, error) {
	if !status.Valid() {
		return nil, invalid("unknown reservation status %q", status)
	}
	var from model.ReservationStatus
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		res, err := s.reservations.GetByID(ctx, id)
		if err != nil {
			return fromStore(err, "reservation", id)
		}
		from = res.Status
		return fromStore(s.reservations.SetStatus(ctx, id, status), "reservation", id)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"reservation_id": id,
		"from":           from,
		"to":             status,
	}).Info("reservation status overridden")
	return s.Get(ctx, id)
}

// Delete removes the reservation.  Its payment, if any, is kept.
func (s *ReservationService) Delete(ctx context.Context, id uint64) error {
	if err := s.reservations.Delete(ctx, id); err != nil {
		return fromStore(err, "reservation", id)
	}
	s.log.WithField("reservation_id", id).Info("reservation deleted")
	return nil
}

func trimNotes(n *string) *string {
	if n == nil {
		return nil
	}
	t := strings.TrimSpace(*n)
	if t == "" {
		return nil
	}
	return &t
}
