package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/repository/memory"
)

var (
	_ Transactor       = (*memory.Store)(nil)
	_ PackageStore     = (*memory.Packages)(nil)
	_ ItineraryStore   = (*memory.Itineraries)(nil)
	_ ClientStore      = (*memory.Clients)(nil)
	_ ReservationStore = (*memory.Reservations)(nil)
	_ PaymentStore     = (*memory.Payments)(nil)
	_ UserStore        = (*memory.Users)(nil)
	_ TokenStore       = (*memory.Tokens)(nil)

	_ Transactor       = (*repository.TxManager)(nil)
	_ PackageStore     = (*repository.PackageRepo)(nil)
	_ ItineraryStore   = (*repository.ItineraryRepo)(nil)
	_ ClientStore      = (*repository.ClientRepo)(nil)
	_ ReservationStore = (*repository.ReservationRepo)(nil)
	_ PaymentStore     = (*repository.PaymentRepo)(nil)
	_ UserStore        = (*repository.UserRepo)(nil)
	_ TokenStore       = (*repository.TokenRepo)(nil)
	_ EventPublisher   = (*queue.Publisher)(nil)
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationConfirmedEvent
	err    error
}

func (p *recordingPublisher) PublishReservationConfirmed(_ context.Context, ev queue.ReservationConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) published() []queue.ReservationConfirmedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.ReservationConfirmedEvent(nil), p.events...)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	store        *memory.Store
	catalog      *CatalogService
	itineraries  *ItineraryService
	clients      *ClientService
	reservations *ReservationService
	payments     *PaymentService
	events       *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	log := quietLogger()
	events := &recordingPublisher{}
	res := NewReservationService(st, st.Reservations(), st.Clients(), st.Packages(), log)
	return &fixture{
		store:        st,
		catalog:      NewCatalogService(st.Packages(), log),
		itineraries:  NewItineraryService(st.Itineraries(), st.Packages(), log),
		clients:      NewClientService(st.Clients()),
		reservations: res,
		payments:     NewPaymentService(st, st.Payments(), st.Reservations(), res, events, log),
		events:       events,
	}
}

func (f *fixture) pkg(t *testing.T, priceCents int64, active, available bool) *model.Package {
	t.Helper()
	p, err := f.catalog.Create(context.Background(), PackageInput{
		Name:         fmt.Sprintf("Tour %d", priceCents),
		Destination:  "Valparaíso",
		DurationDays: 3,
		PriceCents:   priceCents,
		Includes:     []string{"hotel", "breakfast"},
		Active:       &active,
		Available:    &available,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) client(t *testing.T, email string) *model.Client {
	t.Helper()
	c, err := f.clients.Create(context.Background(), ClientInput{Name: "Ana Rojas", Email: email, Phone: "+56 9 1234 5678"}, nil)
	require.NoError(t, err)
	return c
}

// booking creates a pending reservation for a fresh client.
func (f *fixture) booking(t *testing.T, priceCents int64, headcount int) *model.ReservationDetail {
	t.Helper()
	p := f.pkg(t, priceCents, true, true)
	c := f.client(t, fmt.Sprintf("client%d@example.com", time.Now().UnixNano()))
	r, err := f.reservations.Create(context.Background(), CreateReservationInput{
		ClientID:   c.ID,
		PackageID:  p.ID,
		TravelDate: travelDate,
		Headcount:  headcount,
	})
	require.NoError(t, err)
	return r
}

var travelDate = time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
