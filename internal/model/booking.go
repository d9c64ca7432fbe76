package model

import "time"

// Booking is the terminal, immutable record that a seat has been paid for.
// It references exactly one seat, and that seat's status must be BOOKED
// with its booking_id pointing back at this row.  Bookings are only ever
// created inside the confirm transaction.
//
// Fields:
//  ID               – internal primary key.
//  BookingID        – human readable id, BK-YYYYMMDD-XXXXXX (unique).
//  UserID           – user the seat was booked for.
//  TenantID         – tenant the booking belongs to.
//  SeatID           – booked seat.
//  ReservationToken – token of the originating reservation (unique).
//  PaymentStatus    – always SUCCESS on creation.
//  PaymentRef       – verified payment reference.
//  AmountCents      – amount charged, equal to the seat price snapshot.
//  Currency         – ISO currency code.
//  BookingDate      – when the confirm transaction committed.
//  SeatNumber       – snapshot of the seat label.
//  EntityID         – snapshot of the entity.
//  CreatedAt        – creation timestamp.
type Booking struct {
	ID               uint64    // bookings.id
	BookingID        string    // bookings.booking_id
	UserID           string    // bookings.user_id
	TenantID         string    // bookings.tenant_id
	SeatID           uint64    // bookings.seat_id
	ReservationToken string    // bookings.reservation_token
	PaymentStatus    string    // bookings.payment_status
	PaymentRef       string    // bookings.payment_ref
	AmountCents      uint32    // bookings.amount_cents
	Currency         string    // bookings.currency
	BookingDate      time.Time // bookings.booking_date
	SeatNumber       string    // bookings.seat_number (snapshot)
	EntityID         string    // bookings.entity_id (snapshot)
	CreatedAt        time.Time // bookings.created_at
}
