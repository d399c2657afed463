// Package memory is an in-process implementation of the service stores.
// It honours the same contracts as the MySQL repositories: sentinel
// errors, unique keys and transactions that roll back only their own
// writes on error.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/tour-booking/internal/model"
)

type txKey struct{}

type tokenRow struct {
	userID    uint64
	expiresAt time.Time
	revoked   bool
}

type state struct {
	nextID       map[string]uint64
	packages     map[uint64]model.Package
	itineraries  map[uint64]model.Itinerary
	clients      map[uint64]model.Client
	reservations map[uint64]model.Reservation
	payments     map[uint64]model.Payment
	users        map[uint64]model.User
	tokens       map[string]tokenRow
}

func newState() state {
	return state{
		nextID:       map[string]uint64{},
		packages:     map[uint64]model.Package{},
		itineraries:  map[uint64]model.Itinerary{},
		clients:      map[uint64]model.Client{},
		reservations: map[uint64]model.Reservation{},
		payments:     map[uint64]model.Payment{},
		users:        map[uint64]model.User{},
		tokens:       map[string]tokenRow{},
	}
}

// Store holds every table.  Its accessors return views that satisfy the
// service store interfaces; the Store itself is the Transactor.
type Store struct {
	mu    sync.Mutex // guards data, clock and hooks
	txMu  sync.Mutex // serialises transactions
	data  state
	clock time.Time
	hooks map[string]func() error
}

// New returns an empty store whose clock starts at a fixed instant and
// advances one second per write, so ordering by timestamp is stable.
func New() *Store {
	return &Store{
		data:  newState(),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		hooks: map[string]func() error{},
	}
}

// WithinTx runs fn inside a transaction.  Writes made with the
// transaction's ctx are logged and undone in reverse order on error or
// panic; writes made with any other ctx are left alone.  Ids allocated
// inside a rolled back transaction are not reused, as with
// AUTO_INCREMENT.  Nested calls join the outer one.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txLog{}
	committed := false
	defer func() {
		if committed {
			return
		}
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
	}()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	committed = true
	return nil
}

// txLog collects the undo steps of one transaction; it is only touched
// with mu held.
type txLog struct {
	undo []func()
}

// put stores v under k, logging the previous row when ctx carries a
// transaction; callers hold mu.
func put[K comparable, V any](ctx context.Context, m map[K]V, k K, v V) {
	record(ctx, m, k)
	m[k] = v
}

// del removes k, logging the previous row when ctx carries a
// transaction; callers hold mu.
func del[K comparable, V any](ctx context.Context, m map[K]V, k K) {
	record(ctx, m, k)
	delete(m, k)
}

func record[K comparable, V any](ctx context.Context, m map[K]V, k K) {
	tx, _ := ctx.Value(txKey{}).(*txLog)
	if tx == nil {
		return
	}
	old, existed := m[k]
	tx.undo = append(tx.undo, func() {
		if existed {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
}

// Hook registers fn to run once right before the named operation, e.g.
// "payments.Create" or "reservations.SetStatus".  A non-nil error from fn
// is returned by the operation without executing it.  fn runs without the
// store lock held and may call the store.
func (s *Store) Hook(op string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[op] = fn
}

func (s *Store) before(op string) error {
	s.mu.Lock()
	fn := s.hooks[op]
	delete(s.hooks, op)
	s.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn()
}

// tick advances the clock; callers hold mu.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// id allocates the next id of a table; callers hold mu.
func (s *Store) id(table string) uint64 {
	s.data.nextID[table]++
	return s.data.nextID[table]
}

func (s *Store) Packages() *Packages         { return &Packages{s} }
func (s *Store) Itineraries() *Itineraries   { return &Itineraries{s} }
func (s *Store) Clients() *Clients           { return &Clients{s} }
func (s *Store) Reservations() *Reservations { return &Reservations{s} }
func (s *Store) Payments() *Payments         { return &Payments{s} }
func (s *Store) Users() *Users               { return &Users{s} }
func (s *Store) Tokens() *Tokens             { return &Tokens{s} }
