package model

import "time"

// PaymentOrder is a gateway order opened for an active reservation before
// payment.  Orders are idempotent by reservation token: creating an order
// twice for the same token returns the first row.
//
// Fields:
//  ID               – primary key identifier.
//  OrderID          – opaque order id handed to the payment gateway.
//  ReservationToken – reservation the order pays for (unique).
//  TenantID         – owning tenant.
//  UserID           – paying user.
//  AmountCents      – amount from the reservation's price snapshot.
//  Currency         – ISO currency code.
//  GatewayKey       – publishable gateway key for the frontend.
//  CreatedAt        – creation timestamp.
type PaymentOrder struct {
	ID               uint64    // payment_orders.id
	OrderID          string    // payment_orders.order_id
	ReservationToken string    // payment_orders.reservation_token
	TenantID         string    // payment_orders.tenant_id
	UserID           string    // payment_orders.user_id
	AmountCents      uint32    // payment_orders.amount_cents
	Currency         string    // payment_orders.currency
	GatewayKey       string    // payment_orders.gateway_key
	CreatedAt        time.Time // payment_orders.created_at
}
