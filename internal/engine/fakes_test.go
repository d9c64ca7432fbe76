package engine

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/repository"
	"github.com/iliyamo/booking-backend/internal/utils"
)

// The fakes below mirror the atomicity contracts of the real stores: the
// lock store grants a seat to exactly one concurrent caller and the
// booking store consumes a reservation token exactly once. Everything is
// guarded by a single mutex per fake, which is enough for the race
// scenarios exercised in the tests.

type fakeLock struct {
	token     string
	userID    string
	expiresAt time.Time
}

type fakeLockStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	locks map[uint64]fakeLock

	acquired int // total successful acquires
	released int // total compare-and-delete hits
}

func newFakeLockStore(ttl time.Duration, now func() time.Time) *fakeLockStore {
	return &fakeLockStore{ttl: ttl, now: now, locks: make(map[uint64]fakeLock)}
}

func (f *fakeLockStore) Acquire(_ context.Context, seatID uint64, userID string) (*model.SeatLock, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	if cur, ok := f.locks[seatID]; ok && cur.expiresAt.After(now) {
		return nil, cur.expiresAt.Sub(now), repository.ErrSeatHeld
	}
	token, err := utils.RandomToken(16)
	if err != nil {
		return nil, 0, err
	}
	lock := fakeLock{token: token, userID: userID, expiresAt: now.Add(f.ttl)}
	f.locks[seatID] = lock
	f.acquired++
	return &model.SeatLock{
		SeatID:     seatID,
		Token:      token,
		UserID:     userID,
		AcquiredAt: now,
		ExpiresAt:  lock.expiresAt,
	}, f.ttl, nil
}

func (f *fakeLockStore) Verify(_ context.Context, seatID uint64, token, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.locks[seatID]
	if !ok {
		return false, nil
	}
	return cur.token == token && cur.userID == userID && cur.expiresAt.After(f.now()), nil
}

func (f *fakeLockStore) Release(_ context.Context, seatID uint64, expectedToken string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.locks[seatID]
	if !ok {
		return false, nil
	}
	if expectedToken != "" && cur.token != expectedToken {
		return false, nil
	}
	delete(f.locks, seatID)
	f.released++
	return true, nil
}

func (f *fakeLockStore) BulkExists(_ context.Context, seatIDs []uint64) (map[uint64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uint64]bool, len(seatIDs))
	now := f.now()
	for _, id := range seatIDs {
		cur, ok := f.locks[id]
		out[id] = ok && cur.expiresAt.After(now)
	}
	return out, nil
}

func (f *fakeLockStore) held(seatID uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.locks[seatID]
	return ok && cur.expiresAt.After(f.now())
}

type fakeSeatStore struct {
	mu    sync.Mutex
	seats map[uint64]*model.Seat
}

func newFakeSeatStore(seats ...*model.Seat) *fakeSeatStore {
	f := &fakeSeatStore{seats: make(map[uint64]*model.Seat)}
	for _, s := range seats {
		f.seats[s.ID] = s
	}
	return f
}

func (f *fakeSeatStore) GetByID(_ context.Context, id uint64) (*model.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.seats[id]
	if !ok {
		return nil, repository.ErrSeatNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSeatStore) ListAvailable(_ context.Context, tenantID, entityID string, minCents, maxCents *uint32) ([]model.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Seat
	for _, s := range f.seats {
		if s.TenantID != tenantID || s.EntityID != entityID || s.Status != model.SeatAvailable {
			continue
		}
		if minCents != nil && s.PriceCents < *minCents {
			continue
		}
		if maxCents != nil && s.PriceCents > *maxCents {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSeatStore) setStatus(id uint64, status string, bookedBy *string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.seats[id]; ok {
		s.Status = status
		s.BookedBy = bookedBy
	}
}

type fakeReservationStore struct {
	mu        sync.Mutex
	nextID    uint64
	byToken   map[string]*model.Reservation
	createErr error // injected failure for the compensating-release test
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{byToken: make(map[string]*model.Reservation)}
}

func (f *fakeReservationStore) Create(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	res.ID = f.nextID
	res.Status = model.ReservationActive
	cp := *res
	f.byToken[res.Token] = &cp
	return nil
}

func (f *fakeReservationStore) GetByToken(_ context.Context, token string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byToken[token]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservationStore) MarkExpired(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byToken[token]; ok && r.Status == model.ReservationActive {
		r.Status = model.ReservationExpired
	}
	return nil
}

func (f *fakeReservationStore) MarkReleased(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byToken[token]; ok && r.Status == model.ReservationActive {
		r.Status = model.ReservationReleased
		return true, nil
	}
	return false, nil
}

func (f *fakeReservationStore) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.byToken {
		if r.Status == model.ReservationActive && r.ExpiresAt.Before(now) {
			r.Status = model.ReservationExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeReservationStore) status(token string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byToken[token]; ok {
		return r.Status
	}
	return ""
}

// markConfirmed mimics the durable side effect of the booking transaction
// so post-confirm reads observe CONFIRMED.
func (f *fakeReservationStore) markConfirmed(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byToken[token]; ok && r.Status == model.ReservationActive {
		r.Status = model.ReservationConfirmed
		return true
	}
	return false
}

type fakeBookingStore struct {
	mu           sync.Mutex
	nextID       uint64
	byToken      map[string]*model.Booking
	reservations *fakeReservationStore
	seats        *fakeSeatStore
}

func newFakeBookingStore(res *fakeReservationStore, seats *fakeSeatStore) *fakeBookingStore {
	return &fakeBookingStore{byToken: make(map[string]*model.Booking), reservations: res, seats: seats}
}

func (f *fakeBookingStore) Confirm(_ context.Context, p repository.ConfirmParams) (*model.Booking, error) {
	f.mu.Lock()
	if _, exists := f.byToken[p.ReservationToken]; exists {
		f.mu.Unlock()
		return nil, repository.ErrConflict
	}
	f.mu.Unlock()

	// Guarded transition on the audit row stands in for the transaction's
	// conditional UPDATE; only one caller per token gets past it.
	if !f.reservations.markConfirmed(p.ReservationToken) {
		return nil, repository.ErrConflict
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	bookingID, err := repository.NewBookingID(p.Now)
	if err != nil {
		return nil, err
	}
	b := &model.Booking{
		ID:               f.nextID,
		BookingID:        bookingID,
		UserID:           p.UserID,
		TenantID:         p.TenantID,
		SeatID:           p.SeatID,
		ReservationToken: p.ReservationToken,
		PaymentStatus:    "SUCCESS",
		PaymentRef:       p.PaymentRef,
		AmountCents:      p.AmountCents,
		Currency:         p.Currency,
		BookingDate:      p.Now,
		SeatNumber:       p.SeatNumber,
		EntityID:         p.EntityID,
		CreatedAt:        p.Now,
	}
	f.byToken[p.ReservationToken] = b
	if f.seats != nil {
		uid := p.UserID
		f.seats.setStatus(p.SeatID, model.SeatBooked, &uid)
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingStore) ListByUser(_ context.Context, tenantID, userID string, page, limit int) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.byToken {
		if b.TenantID == tenantID && b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeOrderStore struct {
	mu      sync.Mutex
	nextID  uint64
	byToken map[string]*model.PaymentOrder
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{byToken: make(map[string]*model.PaymentOrder)}
}

func (f *fakeOrderStore) CreateOrGet(_ context.Context, o *model.PaymentOrder) (*model.PaymentOrder, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.byToken[o.ReservationToken]; ok {
		cp := *cur
		return &cp, false, nil
	}
	f.nextID++
	o.ID = f.nextID
	cp := *o
	f.byToken[o.ReservationToken] = &cp
	out := *o
	return &out, true, nil
}
