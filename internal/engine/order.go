package engine

import (
	"context"
	"errors"
	"log"

	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/repository"
	"github.com/iliyamo/booking-backend/internal/utils"
)

// CreateOrder opens a gateway order for an active reservation.  The
// operation is idempotent by reservation token: repeating the call returns
// the order created first.  The amount always comes from the reservation's
// price snapshot; a caller-supplied amount is only validated against it.
func (e *Engine) CreateOrder(ctx context.Context, actor Actor, token string, amountCents *uint32, currency string) (*model.PaymentOrder, error) {
	if token == "" {
		return nil, validationErr("reservation_token is required")
	}

	res, err := e.Reservations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, notFoundErr("reservation not found")
		}
		log.Printf("engine: create order: load reservation: %v", err)
		return nil, unavailableErr("reservation lookup")
	}
	if res.UserID != actor.UserID || res.TenantID != actor.TenantID {
		return nil, conflictErr("reservation does not belong to requester")
	}
	if res.Status != model.ReservationActive {
		return nil, conflictErr("reservation is not active").withDetail("status", res.Status)
	}
	if e.now().After(res.ExpiresAt) {
		return nil, conflictErr("reservation expired").withDetail("status", model.ReservationExpired)
	}
	if amountCents != nil && *amountCents != res.PriceCents {
		return nil, validationErr("amount does not match reservation price")
	}
	if currency == "" {
		currency = e.Currency
	}

	suffix, err := utils.RandomToken(12)
	if err != nil {
		log.Printf("engine: create order: mint order id: %v", err)
		return nil, unavailableErr("order creation")
	}
	order := &model.PaymentOrder{
		OrderID:          "ORD-" + suffix,
		ReservationToken: token,
		TenantID:         actor.TenantID,
		UserID:           actor.UserID,
		AmountCents:      res.PriceCents,
		Currency:         currency,
		GatewayKey:       e.GatewayKey,
	}
	stored, _, err := e.Orders.CreateOrGet(ctx, order)
	if err != nil {
		log.Printf("engine: create order: persist: %v", err)
		return nil, unavailableErr("order creation")
	}
	return stored, nil
}
