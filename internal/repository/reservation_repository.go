package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/tour-booking/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  Read paths
// that feed API responses join the client and package explicitly; a
// deleted client or package leaves the embedded summary zeroed rather
// than hiding the reservation.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, client_id, package_id, travel_date, headcount, total_cents, status, notes, created_at, updated_at`

const reservationDetailSelect = `SELECT r.id, r.client_id, r.package_id, r.travel_date, r.headcount, r.total_cents,
       r.status, r.notes, r.created_at, r.updated_at,
       c.id, c.name, c.email, c.phone,
       p.id, p.name, p.destination, p.duration_days, p.price_cents
FROM reservations r
LEFT JOIN clients c ON c.id = r.client_id
LEFT JOIN packages p ON p.id = r.package_id`

// Create inserts a reservation and reads it back so the caller sees the
// generated ID and store-maintained timestamps.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	db := conn(ctx, r.db)
	const q = `INSERT INTO reservations (client_id, package_id, travel_date, headcount, total_cents, status, notes)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, q, res.ClientID, res.PackageID, dateOnly(res.TravelDate),
		res.Headcount, res.TotalCents, string(res.Status), res.Notes)
	if err != nil {
		return translate(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*res = *created
	return nil
}

// GetByID returns the raw reservation row or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row)
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

// GetDetail returns the reservation joined with its client and package.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, reservationDetailSelect+` WHERE r.id = ?`, id)
	det, err := scanReservationDetail(row)
	if err != nil {
		return nil, translate(err)
	}
	return det, nil
}

// List returns every reservation, newest first.
func (r *ReservationRepo) List(ctx context.Context) ([]model.ReservationDetail, error) {
	return r.listDetails(ctx, reservationDetailSelect+` ORDER BY r.created_at DESC, r.id DESC`)
}

// ListByClient returns the reservations of one client, newest first.
func (r *ReservationRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.ReservationDetail, error) {
	return r.listDetails(ctx, reservationDetailSelect+` WHERE r.client_id = ? ORDER BY r.created_at DESC, r.id DESC`, clientID)
}

func (r *ReservationRepo) listDetails(ctx context.Context, q string, args ...any) ([]model.ReservationDetail, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ReservationDetail, 0)
	for rows.Next() {
		det, err := scanReservationDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *det)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields of upd.  Total and status are never
// written here.
func (r *ReservationRepo) Update(ctx context.Context, id uint64, upd model.ReservationUpdate) error {
	var (
		sets []string
		args []any
	)
	if upd.ClientID != nil {
		sets = append(sets, "client_id = ?")
		args = append(args, *upd.ClientID)
	}
	if upd.TravelDate != nil {
		sets = append(sets, "travel_date = ?")
		args = append(args, dateOnly(*upd.TravelDate))
	}
	if upd.Headcount != nil {
		sets = append(sets, "headcount = ?")
		args = append(args, *upd.Headcount)
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *upd.Notes)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE reservations SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// SetStatus writes the status column.
func (r *ReservationRepo) SetStatus(ctx context.Context, id uint64, status model.ReservationStatus) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// Delete removes the reservation row only.  A payment that references it
// is left in place.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var (
		res    model.Reservation
		status string
		notes  sql.NullString
	)
	if err := s.Scan(&res.ID, &res.ClientID, &res.PackageID, &res.TravelDate, &res.Headcount, &res.TotalCents,
		&status, &notes, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	res.Status = model.ReservationStatus(status)
	if notes.Valid {
		n := notes.String
		res.Notes = &n
	}
	return &res, nil
}

func scanReservationDetail(s rowScanner) (*model.ReservationDetail, error) {
	var (
		det                   model.ReservationDetail
		status                string
		notes                 sql.NullString
		clientID, packageID   sql.NullInt64
		cName, cEmail, cPhone sql.NullString
		pName, pDestination   sql.NullString
		pDuration, pPrice     sql.NullInt64
	)
	err := s.Scan(
		&det.ID, &det.ClientID, &det.PackageID, &det.TravelDate, &det.Headcount, &det.TotalCents,
		&status, &notes, &det.CreatedAt, &det.UpdatedAt,
		&clientID, &cName, &cEmail, &cPhone,
		&packageID, &pName, &pDestination, &pDuration, &pPrice,
	)
	if err != nil {
		return nil, err
	}
	det.Status = model.ReservationStatus(status)
	if notes.Valid {
		n := notes.String
		det.Notes = &n
	}
	if clientID.Valid {
		det.Client = model.ClientSummary{
			ID: uint64(clientID.Int64), Name: cName.String, Email: cEmail.String, Phone: cPhone.String,
		}
	}
	if packageID.Valid {
		det.Package = model.PackageSummary{
			ID: uint64(packageID.Int64), Name: pName.String, Destination: pDestination.String,
			DurationDays: int(pDuration.Int64), PriceCents: pPrice.Int64,
		}
	}
	return &det, nil
}

// dateOnly truncates t to midnight UTC for the DATE column.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
