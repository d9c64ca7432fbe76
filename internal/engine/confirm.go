package engine

import (
	"context"
	"errors"
	"log"

	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/payment"
	"github.com/iliyamo/booking-backend/internal/repository"
)

// Confirm turns an active reservation into a booking.  The only path to
// the durable transaction is holding both the live lock and the ACTIVE
// audit row; that pair is the serialization point, and the transaction's
// guarded updates settle any race that slips past the pre-checks.
//
// On payment failure the lock is deliberately retained until TTL so the
// caller can retry with a corrected reference.  On transaction failure the
// lock is likewise left alone; on success it is released by
// compare-and-delete (a no-op if it already expired).
func (e *Engine) Confirm(ctx context.Context, actor Actor, token string, pay payment.Request) (*model.Booking, error) {
	if token == "" {
		return nil, validationErr("reservation_token is required")
	}

	res, err := e.Reservations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, notFoundErr("reservation not found")
		}
		log.Printf("engine: confirm: load reservation: %v", err)
		return nil, unavailableErr("reservation lookup")
	}
	if res.UserID != actor.UserID || res.TenantID != actor.TenantID {
		return nil, conflictErr("reservation does not belong to requester")
	}
	if res.Status != model.ReservationActive {
		return nil, conflictErr("reservation is not active").withDetail("status", res.Status)
	}
	if e.now().After(res.ExpiresAt) {
		// The lock has lapsed on its own; reconcile the audit row and free
		// the seat for the next requester.
		if err := e.Reservations.MarkExpired(ctx, token); err != nil {
			log.Printf("engine: confirm: mark expired: %v", err)
		}
		cctx, cancel := compensationContext()
		if _, err := e.Locks.Release(cctx, res.SeatID, token); err != nil {
			log.Printf("engine: confirm: release expired lock: %v", err)
		}
		cancel()
		return nil, conflictErr("reservation expired").withDetail("status", model.ReservationExpired)
	}

	ok, err := e.Locks.Verify(ctx, res.SeatID, token, actor.UserID)
	if err != nil {
		log.Printf("engine: confirm: verify lock: %v", err)
		return nil, unavailableErr("seat lock")
	}
	if !ok {
		// Possible when the lock expired between the audit read and now
		// even though the row still says ACTIVE.
		return nil, seatLockErr("seat lock expired or lost")
	}

	seat, err := e.Seats.GetByID(ctx, res.SeatID)
	if err != nil {
		log.Printf("engine: confirm: re-read seat %d: %v", res.SeatID, err)
		return nil, unavailableErr("seat lookup")
	}
	if seat.Status != model.SeatAvailable {
		return nil, conflictErr("seat is no longer available").withDetail("status", seat.Status)
	}

	ref, err := e.Payments.Verify(ctx, pay)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentInvalid) {
			return nil, paymentErr("payment verification failed")
		}
		log.Printf("engine: confirm: payment verify: %v", err)
		return nil, paymentErr("payment verification failed")
	}

	booking, err := e.Bookings.Confirm(ctx, repository.ConfirmParams{
		ReservationToken: token,
		UserID:           actor.UserID,
		TenantID:         actor.TenantID,
		SeatID:           res.SeatID,
		SeatNumber:       res.SeatNumber,
		EntityID:         res.EntityID,
		AmountCents:      res.PriceCents,
		Currency:         e.Currency,
		PaymentRef:       ref,
		Now:              e.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, conflictErr("reservation already settled")
		}
		log.Printf("engine: confirm: transaction: %v", err)
		return nil, unavailableErr("booking transaction")
	}

	// The booking is durable; releasing the lock early just lets the seat
	// key disappear before its TTL.  Failure here is harmless.
	cctx, cancel := compensationContext()
	if _, err := e.Locks.Release(cctx, res.SeatID, token); err != nil {
		log.Printf("engine: confirm: release lock after commit: %v", err)
	}
	cancel()

	return booking, nil
}
