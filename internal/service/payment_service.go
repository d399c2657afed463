package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository"
)

const publishTimeout = 5 * time.Second

// PaymentService attaches payments to reservations and drives the
// confirmation cascade.  Approving a payment confirms its reservation in
// the same transaction as the status write.
type PaymentService struct {
	tx           Transactor
	payments     PaymentStore
	reservations ReservationStore
	bookings     *ReservationService
	publisher    EventPublisher
	log          *logrus.Entry
	now          func() time.Time
}

// NewPaymentService wires the payment manager.  publisher may be nil, in
// which case confirmations are not announced.
func NewPaymentService(tx Transactor, payments PaymentStore, reservations ReservationStore, bookings *ReservationService, publisher EventPublisher, log *logrus.Logger) *PaymentService {
	if tx == nil || payments == nil || reservations == nil || bookings == nil || log == nil {
		panic("nil dependency passed to NewPaymentService")
	}
	return &PaymentService{
		tx:           tx,
		payments:     payments,
		reservations: reservations,
		bookings:     bookings,
		publisher:    publisher,
		log:          log.WithField("component", "payments"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreatePaymentInput settles a reservation.  An empty Status means pending.
type CreatePaymentInput struct {
	ReservationID uint64
	AmountCents   int64
	Method        model.PaymentMethod
	Status        model.PaymentStatus
}

// PaymentUpdate carries the generic edit.  Only the method may change.
type PaymentUpdate struct {
	Method *model.PaymentMethod
}

// CreateForReservation records the single payment of a reservation.  The
// amount must equal the reservation total exactly.  The pre-check for an
// existing payment gives a clear error in the common case; the unique key
// on reservation_id settles concurrent attempts.
func (s *PaymentService) CreateForReservation(ctx context.Context, in CreatePaymentInput) (*model.PaymentDetail, error) {
	if !in.Method.Valid() {
		return nil, invalid("unknown payment method %q", in.Method)
	}
	status := in.Status
	if status == "" {
		status = model.PaymentPending
	}
	if !status.Valid() {
		return nil, invalid("unknown payment status %q", status)
	}
	var (
		p         model.Payment
		confirmed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		res, err := s.reservations.GetByID(ctx, in.ReservationID)
		if err != nil {
			return fromStore(err, "reservation", in.ReservationID)
		}
		switch _, err := s.payments.GetByReservation(ctx, res.ID); {
		case err == nil:
			return fmt.Errorf("%w: reservation %d already has a payment", ErrConflict, res.ID)
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("lookup payment of reservation %d: %w", res.ID, err)
		}
		if in.AmountCents != res.TotalCents {
			return invalid("amount %d does not match reservation total %d", in.AmountCents, res.TotalCents)
		}
		p = model.Payment{
			ReservationID: res.ID,
			AmountCents:   in.AmountCents,
			Method:        in.Method,
			Status:        status,
		}
		if err := s.payments.Create(ctx, &p); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: reservation %d already has a payment", ErrConflict, res.ID)
			}
			return err
		}
		if status == model.PaymentApproved {
			confirmed, err = s.bookings.confirm(ctx, res.ID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"payment_id":     p.ID,
		"reservation_id": p.ReservationID,
		"status":         p.Status,
		"method":         p.Method,
	}).Info("payment created")
	if confirmed {
		s.announce(ctx, p)
	}
	return s.Get(ctx, p.ID)
}

// FindByReservation returns the payment of a reservation.  found is false
// with a nil error when the reservation has no payment yet.
func (s *PaymentService) FindByReservation(ctx context.Context, reservationID uint64) (*model.PaymentDetail, bool, error) {
	p, err := s.payments.GetByReservation(ctx, reservationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup payment of reservation %d: %w", reservationID, err)
	}
	det, err := s.Get(ctx, p.ID)
	if err != nil {
		return nil, false, err
	}
	return det, true, nil
}

// UpdateStatus writes a new payment status.  Approval also confirms the
// reservation; both writes commit together or not at all.  Rejecting or
// resetting to pending never touches the reservation.
func (s *PaymentService) UpdateStatus(ctx context.Context, id uint64, status model.PaymentStatus) (*model.PaymentDetail, error) {
	if !status.Valid() {
		return nil, invalid("unknown payment status %q", status)
	}
	var (
		p         *model.Payment
		confirmed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.payments.GetByID(ctx, id)
		if err != nil {
			return fromStore(err, "payment", id)
		}
		if err := s.payments.SetStatus(ctx, id, status); err != nil {
			return fromStore(err, "payment", id)
		}
		p.Status = status
		if status == model.PaymentApproved {
			confirmed, err = s.bookings.confirm(ctx, p.ReservationID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"payment_id":     id,
		"reservation_id": p.ReservationID,
		"status":         status,
	}).Info("payment status updated")
	if confirmed {
		s.announce(ctx, *p)
	}
	return s.Get(ctx, id)
}

// Get returns the payment joined with its reservation.
func (s *PaymentService) Get(ctx context.Context, id uint64) (*model.PaymentDetail, error) {
	det, err := s.payments.GetDetail(ctx, id)
	if err != nil {
		return nil, fromStore(err, "payment", id)
	}
	return det, nil
}

// List returns every payment, newest first.
func (s *PaymentService) List(ctx context.Context) ([]model.PaymentDetail, error) {
	return s.payments.List(ctx)
}

// Update changes the payment method.  Amount and status are not editable
// here.
func (s *PaymentService) Update(ctx context.Context, id uint64, upd PaymentUpdate) (*model.PaymentDetail, error) {
	if upd.Method != nil && !upd.Method.Valid() {
		return nil, invalid("unknown payment method %q", *upd.Method)
	}
	if upd.Method != nil {
		if err := s.payments.UpdateMethod(ctx, id, *upd.Method); err != nil {
			return nil, fromStore(err, "payment", id)
		}
	}
	return s.Get(ctx, id)
}

// Delete removes the payment.  The reservation keeps its status.
func (s *PaymentService) Delete(ctx context.Context, id uint64) error {
	if err := s.payments.Delete(ctx, id); err != nil {
		return fromStore(err, "payment", id)
	}
	s.log.WithField("payment_id", id).Info("payment deleted")
	return nil
}

// Reconcile confirms every pending reservation that already has an
// approved payment and returns the reservation ids it repaired.  Running
// it twice in a row repairs nothing the second time.
func (s *PaymentService) Reconcile(ctx context.Context) ([]uint64, error) {
	stale, err := s.payments.ListApprovedUnconfirmed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list approved payments: %w", err)
	}
	repaired := make([]uint64, 0, len(stale))
	for _, p := range stale {
		var changed bool
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			var err error
			changed, err = s.bookings.confirm(ctx, p.ReservationID)
			return err
		})
		if err != nil {
			return repaired, err
		}
		if changed {
			repaired = append(repaired, p.ReservationID)
			s.announce(ctx, p)
		}
	}
	if len(repaired) > 0 {
		s.log.WithField("reservations", repaired).Warn("reconciled approved payments")
	}
	return repaired, nil
}

// announce publishes reservation.confirmed for a committed approval.
// Failures are logged and otherwise ignored.
func (s *PaymentService) announce(ctx context.Context, p model.Payment) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	det, err := s.reservations.GetDetail(ctx, p.ReservationID)
	if err != nil {
		s.log.WithError(err).WithField("reservation_id", p.ReservationID).Warn("load reservation for event")
		return
	}
	ev := queue.ReservationConfirmedEvent{
		ReservationID: det.ID,
		ClientID:      det.ClientID,
		PackageID:     det.PackageID,
		PackageName:   det.Package.Name,
		Destination:   det.Package.Destination,
		TravelDate:    det.TravelDate.Format(time.DateOnly),
		Headcount:     det.Headcount,
		TotalCents:    det.TotalCents,
		PaymentID:     p.ID,
		Method:        string(p.Method),
		ConfirmedAt:   s.now().Format(time.RFC3339),
	}
	if err := s.publisher.PublishReservationConfirmed(ctx, ev); err != nil {
		s.log.WithError(err).WithField("reservation_id", det.ID).Warn("reservation.confirmed not published")
	}
}
