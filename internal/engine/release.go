package engine

import (
	"context"
	"errors"
	"log"

	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/repository"
)

// Release gives a reservation back voluntarily.  Confirmed reservations
// cannot be released; already-released or expired tokens ack without
// mutation so clients can retry the call safely.
func (e *Engine) Release(ctx context.Context, actor Actor, token string) error {
	if token == "" {
		return validationErr("reservation_token is required")
	}

	res, err := e.Reservations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return notFoundErr("reservation not found")
		}
		log.Printf("engine: release: load reservation: %v", err)
		return unavailableErr("reservation lookup")
	}
	if res.UserID != actor.UserID || res.TenantID != actor.TenantID {
		return conflictErr("reservation does not belong to requester")
	}
	switch res.Status {
	case model.ReservationConfirmed:
		return conflictErr("reservation already confirmed").withDetail("status", res.Status)
	case model.ReservationReleased, model.ReservationExpired:
		return nil // idempotent re-release
	}

	// Drop the lock first; compare-and-delete keeps someone else's fresh
	// lock safe if ours already expired and the seat was re-acquired.
	if _, err := e.Locks.Release(ctx, res.SeatID, token); err != nil {
		log.Printf("engine: release: lock release: %v", err)
		return unavailableErr("seat lock")
	}

	changed, err := e.Reservations.MarkReleased(ctx, token)
	if err != nil {
		log.Printf("engine: release: mark released: %v", err)
		return unavailableErr("reservation update")
	}
	if !changed {
		// Lost a race: re-read to tell idempotent success from a
		// concurrent confirm.
		cur, err := e.Reservations.GetByToken(ctx, token)
		if err != nil {
			log.Printf("engine: release: re-read reservation: %v", err)
			return unavailableErr("reservation lookup")
		}
		if cur.Status == model.ReservationConfirmed {
			return conflictErr("reservation already confirmed").withDetail("status", cur.Status)
		}
	}
	return nil
}
