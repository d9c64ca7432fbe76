package repository // repository defines data access for payment orders

import (
	"context"
	"database/sql"

	"github.com/iliyamo/booking-backend/internal/model"
)

// OrderRepo provides access to payment orders.  Orders are idempotent by
// reservation token: the unique index on reservation_token makes the
// second insert lose, after which the existing row is returned.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the provided database.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrGet inserts the order or, when one already exists for the same
// reservation token, loads and returns it.  The second return value
// reports whether this call created the row.
func (r *OrderRepo) CreateOrGet(ctx context.Context, o *model.PaymentOrder) (*model.PaymentOrder, bool, error) {
	const q = `INSERT INTO payment_orders
			   (order_id, reservation_token, tenant_id, user_id, amount_cents, currency, gateway_key)
			   VALUES (?, ?, ?, ?, ?, ?, ?)`
	out, err := r.db.ExecContext(ctx, q,
		o.OrderID, o.ReservationToken, o.TenantID, o.UserID, o.AmountCents, o.Currency, o.GatewayKey)
	if err != nil {
		if isDuplicateKey(err) {
			existing, getErr := r.GetByReservationToken(ctx, o.ReservationToken)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return nil, false, err
	}
	o.ID = uint64(id)
	return o, true, nil
}

// GetByReservationToken loads the order opened for a reservation, if any.
func (r *OrderRepo) GetByReservationToken(ctx context.Context, token string) (*model.PaymentOrder, error) {
	const q = `SELECT id, order_id, reservation_token, tenant_id, user_id, amount_cents, currency, gateway_key, created_at
			   FROM payment_orders WHERE reservation_token = ?`
	var o model.PaymentOrder
	err := r.db.QueryRowContext(ctx, q, token).
		Scan(&o.ID, &o.OrderID, &o.ReservationToken, &o.TenantID, &o.UserID,
			&o.AmountCents, &o.Currency, &o.GatewayKey, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
