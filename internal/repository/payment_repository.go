package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/tour-booking/internal/model"
)

// PaymentRepo persists payments.  The payments table carries a UNIQUE key
// on reservation_id, so a concurrent second insert for the same
// reservation fails in the store and surfaces here as ErrConflict.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, reservation_id, amount_cents, method, status, paid_at, created_at, updated_at`

const paymentDetailSelect = `SELECT p.id, p.reservation_id, p.amount_cents, p.method, p.status, p.paid_at, p.created_at, p.updated_at,
       r.id, r.client_id, r.package_id, r.travel_date, r.headcount, r.total_cents, r.status
FROM payments p
LEFT JOIN reservations r ON r.id = p.reservation_id`

// Create inserts a payment.  A second payment for the same reservation
// returns ErrConflict.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO payments (reservation_id, amount_cents, method, status) VALUES (?, ?, ?, ?)`,
		p.ReservationID, p.AmountCents, string(p.Method), string(p.Status))
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

// GetByID returns the payment or ErrNotFound.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// GetByReservation returns the payment attached to a reservation or
// ErrNotFound when none exists yet.
func (r *PaymentRepo) GetByReservation(ctx context.Context, reservationID uint64) (*model.Payment, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE reservation_id = ? LIMIT 1`, reservationID)
	p, err := scanPayment(row)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// GetDetail returns the payment joined with its reservation.
func (r *PaymentRepo) GetDetail(ctx context.Context, id uint64) (*model.PaymentDetail, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, paymentDetailSelect+` WHERE p.id = ?`, id)
	det, err := scanPaymentDetail(row)
	if err != nil {
		return nil, translate(err)
	}
	return det, nil
}

// List returns every payment joined with its reservation, newest first.
func (r *PaymentRepo) List(ctx context.Context) ([]model.PaymentDetail, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, paymentDetailSelect+` ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.PaymentDetail, 0)
	for rows.Next() {
		det, err := scanPaymentDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *det)
	}
	return out, rows.Err()
}

// UpdateMethod changes the payment method label.
func (r *PaymentRepo) UpdateMethod(ctx context.Context, id uint64, method model.PaymentMethod) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE payments SET method = ? WHERE id = ?`, string(method), id)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// SetStatus writes the status column.
func (r *PaymentRepo) SetStatus(ctx context.Context, id uint64, status model.PaymentStatus) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE payments SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// Delete removes the payment row only.
func (r *PaymentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// ListApprovedUnconfirmed returns approved payments whose reservation is
// still pending.  The result feeds the reconciliation pass.
func (r *PaymentRepo) ListApprovedUnconfirmed(ctx context.Context) ([]model.Payment, error) {
	const q = `SELECT p.id, p.reservation_id, p.amount_cents, p.method, p.status, p.paid_at, p.created_at, p.updated_at
               FROM payments p
               JOIN reservations r ON r.id = p.reservation_id
               WHERE p.status = 'approved' AND r.status = 'pending'
               ORDER BY p.id ASC`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPayment(s rowScanner) (*model.Payment, error) {
	var (
		p              model.Payment
		method, status string
	)
	if err := s.Scan(&p.ID, &p.ReservationID, &p.AmountCents, &method, &status,
		&p.PaidAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Method = model.PaymentMethod(method)
	p.Status = model.PaymentStatus(status)
	return &p, nil
}

func scanPaymentDetail(s rowScanner) (*model.PaymentDetail, error) {
	var (
		det                    model.PaymentDetail
		method, status         string
		rID, rClient, rPackage sql.NullInt64
		rHeadcount, rTotal     sql.NullInt64
		rTravel                sql.NullTime
		rStatus                sql.NullString
	)
	err := s.Scan(&det.ID, &det.ReservationID, &det.AmountCents, &method, &status,
		&det.PaidAt, &det.CreatedAt, &det.UpdatedAt,
		&rID, &rClient, &rPackage, &rTravel, &rHeadcount, &rTotal, &rStatus)
	if err != nil {
		return nil, err
	}
	det.Method = model.PaymentMethod(method)
	det.Status = model.PaymentStatus(status)
	if rID.Valid {
		det.Reservation = &model.ReservationSummary{
			ID:         uint64(rID.Int64),
			ClientID:   uint64(rClient.Int64),
			PackageID:  uint64(rPackage.Int64),
			TravelDate: rTravel.Time,
			Headcount:  int(rHeadcount.Int64),
			TotalCents: rTotal.Int64,
			Status:     model.ReservationStatus(rStatus.String),
		}
	}
	return &det, nil
}
