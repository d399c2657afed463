package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// Reservations is the reservations table.  Detail reads join clients and
// packages the way the SQL query does: missing parents leave zero
// summaries.
type Reservations struct{ s *Store }

func (r *Reservations) Create(ctx context.Context, res *model.Reservation) error {
	if err := r.s.before("reservations.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res.ID = r.s.id("reservations")
	res.TravelDate = res.TravelDate.UTC().Truncate(24 * time.Hour)
	res.CreatedAt = r.s.tick()
	res.UpdatedAt = res.CreatedAt
	put(ctx, r.s.data.reservations, res.ID, *res)
	return nil
}

func (r *Reservations) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.data.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &res, nil
}

func (r *Reservations) GetDetail(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.data.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	det := r.join(res)
	return &det, nil
}

func (r *Reservations) List(ctx context.Context) ([]model.ReservationDetail, error) {
	return r.list(func(model.Reservation) bool { return true }), nil
}

func (r *Reservations) ListByClient(ctx context.Context, clientID uint64) ([]model.ReservationDetail, error) {
	return r.list(func(res model.Reservation) bool { return res.ClientID == clientID }), nil
}

func (r *Reservations) list(keep func(model.Reservation) bool) []model.ReservationDetail {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.ReservationDetail, 0)
	for _, res := range r.s.data.reservations {
		if keep(res) {
			out = append(out, r.join(res))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// join builds the detail view; callers hold mu.
func (r *Reservations) join(res model.Reservation) model.ReservationDetail {
	det := model.ReservationDetail{Reservation: res}
	if c, ok := r.s.data.clients[res.ClientID]; ok {
		det.Client = model.ClientSummary{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
	}
	if p, ok := r.s.data.packages[res.PackageID]; ok {
		det.Package = model.PackageSummary{
			ID: p.ID, Name: p.Name, Destination: p.Destination,
			DurationDays: p.DurationDays, PriceCents: p.PriceCents,
		}
	}
	return det
}

func (r *Reservations) Update(ctx context.Context, id uint64, upd model.ReservationUpdate) error {
	if err := r.s.before("reservations.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.data.reservations[id]
	if !ok {
		return repository.ErrNotFound
	}
	if upd.ClientID != nil {
		res.ClientID = *upd.ClientID
	}
	if upd.TravelDate != nil {
		res.TravelDate = upd.TravelDate.UTC().Truncate(24 * time.Hour)
	}
	if upd.Headcount != nil {
		res.Headcount = *upd.Headcount
	}
	if upd.Notes != nil {
		n := *upd.Notes
		res.Notes = &n
	}
	res.UpdatedAt = r.s.tick()
	put(ctx, r.s.data.reservations, id, res)
	return nil
}

func (r *Reservations) SetStatus(ctx context.Context, id uint64, status model.ReservationStatus) error {
	if err := r.s.before("reservations.SetStatus"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.data.reservations[id]
	if !ok {
		return repository.ErrNotFound
	}
	res.Status = status
	res.UpdatedAt = r.s.tick()
	put(ctx, r.s.data.reservations, id, res)
	return nil
}

func (r *Reservations) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.reservations[id]; !ok {
		return repository.ErrNotFound
	}
	del(ctx, r.s.data.reservations, id)
	return nil
}

// Payments is the payments table with a unique key on reservation_id.
type Payments struct{ s *Store }

func (r *Payments) Create(ctx context.Context, p *model.Payment) error {
	if err := r.s.before("payments.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.data.payments {
		if other.ReservationID == p.ReservationID {
			return repository.ErrConflict
		}
	}
	p.ID = r.s.id("payments")
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	p.PaidAt = p.CreatedAt
	put(ctx, r.s.data.payments, p.ID, *p)
	return nil
}

func (r *Payments) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *Payments) GetByReservation(ctx context.Context, reservationID uint64) (*model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.payments {
		if p.ReservationID == reservationID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Payments) GetDetail(ctx context.Context, id uint64) (*model.PaymentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	det := r.join(p)
	return &det, nil
}

func (r *Payments) List(ctx context.Context) ([]model.PaymentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.PaymentDetail, 0, len(r.s.data.payments))
	for _, p := range r.s.data.payments {
		out = append(out, r.join(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// join attaches the reservation summary; callers hold mu.
func (r *Payments) join(p model.Payment) model.PaymentDetail {
	det := model.PaymentDetail{Payment: p}
	if res, ok := r.s.data.reservations[p.ReservationID]; ok {
		det.Reservation = &model.ReservationSummary{
			ID: res.ID, ClientID: res.ClientID, PackageID: res.PackageID, TravelDate: res.TravelDate,
			Headcount: res.Headcount, TotalCents: res.TotalCents, Status: res.Status,
		}
	}
	return det
}

func (r *Payments) UpdateMethod(ctx context.Context, id uint64, method model.PaymentMethod) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Method = method
	p.UpdatedAt = r.s.tick()
	put(ctx, r.s.data.payments, id, p)
	return nil
}

func (r *Payments) SetStatus(ctx context.Context, id uint64, status model.PaymentStatus) error {
	if err := r.s.before("payments.SetStatus"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = r.s.tick()
	put(ctx, r.s.data.payments, id, p)
	return nil
}

func (r *Payments) Delete(ctx context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.payments[id]; !ok {
		return repository.ErrNotFound
	}
	del(ctx, r.s.data.payments, id)
	return nil
}

func (r *Payments) ListApprovedUnconfirmed(ctx context.Context) ([]model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Payment, 0)
	for _, p := range r.s.data.payments {
		if p.Status != model.PaymentApproved {
			continue
		}
		if res, ok := r.s.data.reservations[p.ReservationID]; ok && res.Status == model.ReservationPending {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
