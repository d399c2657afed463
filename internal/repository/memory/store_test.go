package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
)

func seedReservation(t *testing.T, s *Store) *model.Reservation {
	t.Helper()
	r := &model.Reservation{
		ClientID:   1,
		PackageID:  1,
		TravelDate: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		Headcount:  2,
		TotalCents: 1000,
		Status:     model.ReservationPending,
	}
	require.NoError(t, s.Reservations().Create(context.Background(), r))
	return r
}

func TestWithinTxRollsBackOwnWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := seedReservation(t, s)
	boom := errors.New("boom")

	var created model.Reservation
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Reservations().SetStatus(ctx, r.ID, model.ReservationConfirmed))
		created = model.Reservation{ClientID: 1, PackageID: 1, Headcount: 1, Status: model.ReservationPending}
		require.NoError(t, s.Reservations().Create(ctx, &created))
		require.NoError(t, s.Reservations().Delete(ctx, r.ID))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Reservations().GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, got.Status)
	_, err = s.Reservations().GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithinTxKeepsWritesOutsideTheTransaction(t *testing.T) {
	ctx := context.Background()
	s := New()
	r1 := seedReservation(t, s)
	r2 := seedReservation(t, s)

	s.Hook("reservations.SetStatus", func() error {
		return s.Reservations().Delete(ctx, r2.ID)
	})
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Reservations().SetStatus(ctx, r1.ID, model.ReservationConfirmed); err != nil {
			return err
		}
		return errors.New("payment rejected")
	})
	require.Error(t, err)

	_, err = s.Reservations().GetByID(ctx, r2.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "delete made outside the transaction survives rollback")
	got, err := s.Reservations().GetByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, got.Status)
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := seedReservation(t, s)

	assert.Panics(t, func() {
		_ = s.WithinTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Reservations().SetStatus(ctx, r.ID, model.ReservationCancelled))
			panic("handler bug")
		})
	})
	got, err := s.Reservations().GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, got.Status)
}

func TestWithinTxNestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := seedReservation(t, s)

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.WithinTx(ctx, func(ctx context.Context) error {
			return s.Reservations().SetStatus(ctx, r.ID, model.ReservationConfirmed)
		}))
		return errors.New("outer fails")
	})
	require.Error(t, err)

	got, err := s.Reservations().GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, got.Status)
}
