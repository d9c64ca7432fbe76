package model

import "time"

// Reservation status values.  ACTIVE is the only non-terminal state; every
// transition out of it is one-way.
const (
	ReservationActive    = "ACTIVE"
	ReservationExpired   = "EXPIRED"
	ReservationConfirmed = "CONFIRMED"
	ReservationReleased  = "RELEASED"
)

// Reservation is the durable audit record of a lock acquisition.  The
// reservation token binds the ephemeral Redis lock, this row and a future
// booking together.  At most one ACTIVE reservation can exist per seat; the
// token is unique forever.
//
// Fields:
//  ID         – primary key identifier.
//  Token      – opaque reservation token (unique).
//  UserID     – user who acquired the lock.
//  TenantID   – tenant the reservation is attributed to.
//  SeatID     – seat the lock covers.
//  Status     – ACTIVE, EXPIRED, CONFIRMED or RELEASED.
//  ExpiresAt  – when the underlying lock lapses.
//  SeatNumber – snapshot of the seat label at reserve time.
//  PriceCents – snapshot of the seat price at reserve time.
//  EntityID   – snapshot of the entity at reserve time.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Reservation struct {
	ID         uint64    // reservations.id
	Token      string    // reservations.reservation_token
	UserID     string    // reservations.user_id
	TenantID   string    // reservations.tenant_id
	SeatID     uint64    // reservations.seat_id
	Status     string    // reservations.status
	ExpiresAt  time.Time // reservations.expires_at
	SeatNumber string    // reservations.seat_number (snapshot)
	PriceCents uint32    // reservations.price_cents (snapshot)
	EntityID   string    // reservations.entity_id (snapshot)
	CreatedAt  time.Time // reservations.created_at
	UpdatedAt  time.Time // reservations.updated_at
}
