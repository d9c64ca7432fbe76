package model

import "time"

// Seat durable status values.  A seat is AVAILABLE until the confirm
// transaction books it; the transition is one-way inside this service.
const (
	SeatAvailable = "AVAILABLE"
	SeatBooked    = "BOOKED"
)

// Seat is the atomic bookable unit, uniquely identified by the composite
// key (tenant, entity, seat number).  An entity is whatever collection the
// tenant sells seats for: an event, a bus route, a movie show.  Seats are
// created by tenant inventory sync and only the reservation engine mutates
// their status.
//
// Fields:
//  ID         – primary key identifier.
//  TenantID   – owning tenant.
//  EntityID   – bookable collection this seat belongs to.
//  SeatNumber – seat label within the entity (e.g. "A-12").
//  PriceCents – price in cents.
//  Domain     – business domain tag copied from the tenant.
//  Metadata   – opaque JSON blob supplied by the tenant.
//  Status     – AVAILABLE or BOOKED.
//  BookedBy   – user who booked the seat (nil while available).
//  BookingID  – internal id of the booking row (nil while available).
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Seat struct {
	ID         uint64    // seats.id
	TenantID   string    // seats.tenant_id
	EntityID   string    // seats.entity_id
	SeatNumber string    // seats.seat_number
	PriceCents uint32    // seats.price_cents
	Domain     string    // seats.domain
	Metadata   string    // seats.metadata (JSON)
	Status     string    // seats.status
	BookedBy   *string   // seats.booked_by (nullable)
	BookingID  *uint64   // seats.booking_id (nullable)
	CreatedAt  time.Time // seats.created_at
	UpdatedAt  time.Time // seats.updated_at
}
