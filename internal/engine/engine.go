// Package engine implements the reservation pipeline: reserve, confirm and
// release for seats, plus the read paths those flows depend on.  The
// engine owns the lifecycle invariants (one live lock and one ACTIVE
// reservation per seat, one-way status transitions, booked seats backed by
// exactly one booking) and delegates all cross-request coordination to the
// lock store and the durable store through the interfaces below.
package engine

import (
	"context"
	"time"

	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/payment"
	"github.com/iliyamo/booking-backend/internal/repository"
)

// LockStore is the atomic per-seat gate.  Acquire must guarantee that
// under arbitrary concurrency exactly one caller wins; the second return
// value is the granted TTL on success and the remaining TTL of the
// current holder when repository.ErrSeatHeld is returned.
type LockStore interface {
	Acquire(ctx context.Context, seatID uint64, userID string) (*model.SeatLock, time.Duration, error)
	Verify(ctx context.Context, seatID uint64, token, userID string) (bool, error)
	Release(ctx context.Context, seatID uint64, expectedToken string) (bool, error)
	BulkExists(ctx context.Context, seatIDs []uint64) (map[uint64]bool, error)
}

// SeatStore reads seat rows from the durable store.
type SeatStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Seat, error)
	ListAvailable(ctx context.Context, tenantID, entityID string, minCents, maxCents *uint32) ([]model.Seat, error)
}

// ReservationStore reads and transitions the reservation audit rows.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByToken(ctx context.Context, token string) (*model.Reservation, error)
	MarkExpired(ctx context.Context, token string) error
	MarkReleased(ctx context.Context, token string) (bool, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// BookingStore owns the confirm transaction and the booking read paths.
type BookingStore interface {
	Confirm(ctx context.Context, p repository.ConfirmParams) (*model.Booking, error)
	ListByUser(ctx context.Context, tenantID, userID string, page, limit int) ([]model.Booking, error)
}

// OrderStore persists payment orders idempotently by reservation token.
type OrderStore interface {
	CreateOrGet(ctx context.Context, o *model.PaymentOrder) (*model.PaymentOrder, bool, error)
}

// Actor identifies the authenticated caller of an engine operation.  The
// identity gate populates it before any operation runs.
type Actor struct {
	TenantID string
	UserID   string
}

// Engine coordinates the reservation pipeline over the injected stores.
type Engine struct {
	Locks        LockStore
	Seats        SeatStore
	Reservations ReservationStore
	Bookings     BookingStore
	Orders       OrderStore
	Payments     payment.Verifier

	Currency   string // default currency recorded on bookings
	GatewayKey string // publishable key returned with payment orders

	now func() time.Time
}

// New constructs an Engine with a real clock.  All store dependencies must
// be non-nil.
func New(locks LockStore, seats SeatStore, reservations ReservationStore, bookings BookingStore, orders OrderStore, verifier payment.Verifier, currency, gatewayKey string) *Engine {
	if locks == nil || seats == nil || reservations == nil || bookings == nil || orders == nil || verifier == nil {
		panic("nil dependency passed to engine.New")
	}
	return &Engine{
		Locks:        locks,
		Seats:        seats,
		Reservations: reservations,
		Bookings:     bookings,
		Orders:       orders,
		Payments:     verifier,
		Currency:     currency,
		GatewayKey:   gatewayKey,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// compensationContext returns a short-lived context detached from the
// request.  Compensating actions (releasing a lock after a failed insert)
// must run even when the client has already disconnected, so they cannot
// inherit the request's cancellation.
func compensationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
