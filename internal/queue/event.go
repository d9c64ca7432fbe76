// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a reservation is successfully
// confirmed. It carries enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        string `json:"booking_id"`
	ReservationToken string `json:"reservation_token"`
	TenantID         string `json:"tenant_id"`
	UserID           string `json:"user_id"`
	SeatID           uint64 `json:"seat_id"`
	SeatNumber       string `json:"seat_number"`
	EntityID         string `json:"entity_id"`
	AmountCents      uint32 `json:"amount_cents"`
	Currency         string `json:"currency"`
	ConfirmedAt      string `json:"confirmed_at"`
}
