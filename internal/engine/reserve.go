package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/repository"
)

// SeatSnapshot is the view of a seat frozen at reserve time.
type SeatSnapshot struct {
	ID         uint64 `json:"id"`
	SeatNumber string `json:"seat_number"`
	PriceCents uint32 `json:"price_cents"`
	EntityID   string `json:"entity_id"`
}

// ReserveResult is returned to the client after a successful reserve.
type ReserveResult struct {
	ReservationToken string       `json:"reservation_token"`
	ExpiresAt        time.Time    `json:"expires_at"`
	TTLSeconds       int          `json:"ttl"`
	Seat             SeatSnapshot `json:"seat"`
}

// Reserve attempts to take the seat for the actor.  The lock store acquire
// is the authoritative concurrency gate: of any number of concurrent
// callers exactly one proceeds to the audit insert.  If the insert fails
// for any reason (including request cancellation) the freshly acquired
// lock is released by compare-and-delete before the error surfaces, so a
// failed reserve can never leave a zombie lock blocking the seat until
// TTL expiry.
func (e *Engine) Reserve(ctx context.Context, actor Actor, seatID uint64) (*ReserveResult, error) {
	if seatID == 0 {
		return nil, validationErr("seat_id is required")
	}

	seat, err := e.Seats.GetByID(ctx, seatID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return nil, notFoundErr("seat not found")
		}
		log.Printf("engine: reserve: load seat %d: %v", seatID, err)
		return nil, unavailableErr("seat lookup")
	}
	if seat.TenantID != actor.TenantID {
		return nil, conflictErr("seat does not belong to tenant")
	}
	if seat.Status != model.SeatAvailable {
		return nil, conflictErr("seat is not available").withDetail("status", seat.Status)
	}

	lock, ttl, err := e.Locks.Acquire(ctx, seatID, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatHeld) {
			return nil, seatLockErr("seat is currently held by another user").
				withDetail("expires_in", int(ttl.Round(time.Second).Seconds()))
		}
		log.Printf("engine: reserve: acquire lock for seat %d: %v", seatID, err)
		return nil, unavailableErr("seat lock")
	}

	res := &model.Reservation{
		Token:      lock.Token,
		UserID:     actor.UserID,
		TenantID:   actor.TenantID,
		SeatID:     seat.ID,
		ExpiresAt:  lock.ExpiresAt,
		SeatNumber: seat.SeatNumber,
		PriceCents: seat.PriceCents,
		EntityID:   seat.EntityID,
	}
	if err := e.Reservations.Create(ctx, res); err != nil {
		// Compensate on a detached context: the request may already be
		// cancelled and the lock must still go away.
		cctx, cancel := compensationContext()
		if _, relErr := e.Locks.Release(cctx, seatID, lock.Token); relErr != nil {
			log.Printf("engine: reserve: compensating release for seat %d failed: %v", seatID, relErr)
		}
		cancel()
		log.Printf("engine: reserve: insert reservation for seat %d: %v", seatID, err)
		return nil, unavailableErr("reservation insert")
	}

	return &ReserveResult{
		ReservationToken: lock.Token,
		ExpiresAt:        lock.ExpiresAt,
		TTLSeconds:       int(ttl.Seconds()),
		Seat: SeatSnapshot{
			ID:         seat.ID,
			SeatNumber: seat.SeatNumber,
			PriceCents: seat.PriceCents,
			EntityID:   seat.EntityID,
		},
	}, nil
}
