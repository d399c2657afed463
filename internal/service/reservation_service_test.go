package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-booking/internal/model"
)

func TestReservationCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("total is price times headcount", func(t *testing.T) {
		f := newFixture(t)
		for _, tc := range []struct {
			price     int64
			headcount int
			want      int64
		}{
			{price: 500, headcount: 2, want: 1000},
			{price: 0, headcount: 5, want: 0},
			{price: 129990, headcount: 1, want: 129990},
			{price: 45000, headcount: 7, want: 315000},
		} {
			r := f.booking(t, tc.price, tc.headcount)
			assert.Equal(t, tc.want, r.TotalCents)
			assert.Equal(t, model.ReservationPending, r.Status)
		}
	})

	t.Run("returns joined client and package", func(t *testing.T) {
		f := newFixture(t)
		p := f.pkg(t, 500, true, true)
		c := f.client(t, "ana@example.com")
		notes := "  window seat  "
		r, err := f.reservations.Create(ctx, CreateReservationInput{
			ClientID: c.ID, PackageID: p.ID, TravelDate: travelDate, Headcount: 2, Notes: &notes,
		})
		require.NoError(t, err)
		assert.Equal(t, "Ana Rojas", r.Client.Name)
		assert.Equal(t, "ana@example.com", r.Client.Email)
		assert.Equal(t, p.Name, r.Package.Name)
		assert.Equal(t, p.Destination, r.Package.Destination)
		require.NotNil(t, r.Notes)
		assert.Equal(t, "window seat", *r.Notes)
		assert.True(t, r.TravelDate.Equal(travelDate))
	})

	t.Run("price is locked at booking time", func(t *testing.T) {
		f := newFixture(t)
		r := f.booking(t, 500, 2)

		_, err := f.catalog.Update(ctx, r.PackageID, PackageInput{
			Name: "Repriced", Destination: "Valparaíso", DurationDays: 3, PriceCents: 900,
		})
		require.NoError(t, err)

		got, err := f.reservations.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), got.TotalCents)
		assert.Equal(t, int64(900), got.Package.PriceCents)
	})

	t.Run("unbookable package is unavailable and creates nothing", func(t *testing.T) {
		f := newFixture(t)
		c := f.client(t, "ana@example.com")
		for _, p := range []*model.Package{
			f.pkg(t, 500, false, true),
			f.pkg(t, 500, true, false),
			f.pkg(t, 500, false, false),
		} {
			_, err := f.reservations.Create(ctx, CreateReservationInput{
				ClientID: c.ID, PackageID: p.ID, TravelDate: travelDate, Headcount: 1,
			})
			assert.ErrorIs(t, err, ErrUnavailable)
		}
		all, err := f.reservations.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture(t)
		p := f.pkg(t, 500, true, true)
		c := f.client(t, "ana@example.com")

		for _, n := range []int{0, -1} {
			_, err := f.reservations.Create(ctx, CreateReservationInput{
				ClientID: c.ID, PackageID: p.ID, TravelDate: travelDate, Headcount: n,
			})
			assert.ErrorIs(t, err, ErrInvalidArgument)
		}
		_, err := f.reservations.Create(ctx, CreateReservationInput{ClientID: c.ID, PackageID: p.ID, Headcount: 1})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("missing package or client", func(t *testing.T) {
		f := newFixture(t)
		p := f.pkg(t, 500, true, true)
		c := f.client(t, "ana@example.com")

		_, err := f.reservations.Create(ctx, CreateReservationInput{ClientID: c.ID, PackageID: 999, TravelDate: travelDate, Headcount: 1})
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.reservations.Create(ctx, CreateReservationInput{ClientID: 999, PackageID: p.ID, TravelDate: travelDate, Headcount: 1})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("overflowing total is rejected", func(t *testing.T) {
		_, err := reservationTotal(math.MaxInt64/2+1, 2)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		total, err := reservationTotal(math.MaxInt64/2, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64-1), total)
	})
}

func TestReservationConfirm(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.booking(t, 500, 2)

	require.NoError(t, f.reservations.Confirm(ctx, r.ID))
	got, err := f.reservations.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, got.Status)

	t.Run("idempotent", func(t *testing.T) {
		before := got.UpdatedAt
		require.NoError(t, f.reservations.Confirm(ctx, r.ID))
		again, err := f.reservations.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationConfirmed, again.Status)
		assert.Equal(t, before, again.UpdatedAt, "no write on re-confirm")
	})

	t.Run("missing reservation", func(t *testing.T) {
		assert.ErrorIs(t, f.reservations.Confirm(ctx, 999), ErrNotFound)
	})
}

func TestReservationPaymentStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.booking(t, 500, 2)

	for _, tc := range []struct {
		status model.ReservationStatus
		want   model.PaymentState
	}{
		{model.ReservationPending, model.PaymentStatePending},
		{model.ReservationConfirmed, model.PaymentStatePaid},
		{model.ReservationCancelled, model.PaymentStatePending},
		{model.ReservationCompleted, model.PaymentStatePending},
	} {
		_, err := f.reservations.OverrideStatus(ctx, r.ID, tc.status)
		require.NoError(t, err)
		ps, err := f.reservations.PaymentStatus(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ps.PaymentState, "status %s", tc.status)
		assert.Equal(t, tc.status, ps.Status)
		assert.Equal(t, int64(1000), ps.TotalCents)
		assert.Equal(t, 2, ps.Headcount)
	}

	_, err := f.reservations.PaymentStatus(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.booking(t, 500, 2)
	other := f.client(t, "other@example.com")

	headcount := 5
	date := travelDate.AddDate(0, 1, 0)
	notes := "vegetarian"
	got, err := f.reservations.Update(ctx, r.ID, model.ReservationUpdate{
		ClientID: &other.ID, TravelDate: &date, Headcount: &headcount, Notes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.ClientID)
	assert.Equal(t, 5, got.Headcount)
	assert.True(t, got.TravelDate.Equal(date))
	assert.Equal(t, int64(1000), got.TotalCents, "total is never recomputed")
	assert.Equal(t, model.ReservationPending, got.Status)

	t.Run("validation", func(t *testing.T) {
		zero := 0
		_, err := f.reservations.Update(ctx, r.ID, model.ReservationUpdate{Headcount: &zero})
		assert.ErrorIs(t, err, ErrInvalidArgument)

		ghost := uint64(999)
		_, err = f.reservations.Update(ctx, r.ID, model.ReservationUpdate{ClientID: &ghost})
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = f.reservations.Update(ctx, 999, model.ReservationUpdate{Notes: &notes})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReservationOverrideStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.booking(t, 500, 1)

	// any -> any, including back to pending
	for _, s := range []model.ReservationStatus{
		model.ReservationCancelled, model.ReservationConfirmed, model.ReservationPending, model.ReservationCompleted,
	} {
		got, err := f.reservations.OverrideStatus(ctx, r.ID, s)
		require.NoError(t, err)
		assert.Equal(t, s, got.Status)
	}

	_, err := f.reservations.OverrideStatus(ctx, r.ID, "paid")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = f.reservations.OverrideStatus(ctx, 999, model.ReservationCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationListAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.booking(t, 500, 1)
	second := f.booking(t, 700, 1)

	all, err := f.reservations.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	mine, err := f.reservations.ListByClient(ctx, first.ClientID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	_, err = f.reservations.ListByClient(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("delete leaves the payment behind", func(t *testing.T) {
		p, err := f.payments.CreateForReservation(ctx, CreatePaymentInput{
			ReservationID: first.ID, AmountCents: first.TotalCents, Method: model.MethodCash,
		})
		require.NoError(t, err)

		require.NoError(t, f.reservations.Delete(ctx, first.ID))
		_, err = f.reservations.Get(ctx, first.ID)
		assert.True(t, errors.Is(err, ErrNotFound))

		orphan, err := f.payments.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, orphan.Reservation)

		assert.ErrorIs(t, f.reservations.Delete(ctx, first.ID), ErrNotFound)
	})
}
