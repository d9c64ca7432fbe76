package engine

import (
	"context"
	"log"

	"github.com/iliyamo/booking-backend/internal/model"
)

// ListSeats returns the seats a client can currently try to reserve:
// durable status AVAILABLE, minus any seat holding a live lock.  The view
// is eventually consistent with reserve (a lock may appear between the
// seat read and the bulk lock check), so clients must treat reserve as the
// authoritative gate, not this listing.
func (e *Engine) ListSeats(ctx context.Context, actor Actor, entityID string, minCents, maxCents *uint32) ([]model.Seat, error) {
	if entityID == "" {
		return nil, validationErr("entity_id is required")
	}
	seats, err := e.Seats.ListAvailable(ctx, actor.TenantID, entityID, minCents, maxCents)
	if err != nil {
		log.Printf("engine: list seats: %v", err)
		return nil, unavailableErr("seat listing")
	}
	if len(seats) == 0 {
		return []model.Seat{}, nil
	}
	ids := make([]uint64, 0, len(seats))
	for _, s := range seats {
		ids = append(ids, s.ID)
	}
	locked, err := e.Locks.BulkExists(ctx, ids)
	if err != nil {
		log.Printf("engine: list seats: bulk lock check: %v", err)
		return nil, unavailableErr("seat lock check")
	}
	free := make([]model.Seat, 0, len(seats))
	for _, s := range seats {
		if !locked[s.ID] {
			free = append(free, s)
		}
	}
	return free, nil
}

// MyBookings returns a page of the actor's bookings within the tenant,
// newest first.  Page defaults to 1, limit to 20 with a cap of 100.
func (e *Engine) MyBookings(ctx context.Context, actor Actor, page, limit int) ([]model.Booking, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	bookings, err := e.Bookings.ListByUser(ctx, actor.TenantID, actor.UserID, page, limit)
	if err != nil {
		log.Printf("engine: my bookings: %v", err)
		return nil, unavailableErr("booking listing")
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	return bookings, nil
}
