package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-backend/internal/engine"
	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/payment"
	"github.com/iliyamo/booking-backend/internal/queue"
	queue_publisher "github.com/iliyamo/booking-backend/internal/service"
)

// BookingHandler maps the tenant-scoped booking API onto engine
// operations.  It assumes the tenant and user gates have already run; the
// handlers only translate payloads and error codes.
type BookingHandler struct {
	Engine    *engine.Engine
	RabbitURL string // broker for booking.confirmed events
}

// NewBookingHandler constructs a BookingHandler.  The engine must be
// non-nil.
func NewBookingHandler(eng *engine.Engine, rabbitURL string) *BookingHandler {
	if eng == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: eng, RabbitURL: rabbitURL}
}

// seatView is the wire shape of a listed seat.
type seatView struct {
	ID         uint64 `json:"id"`
	SeatNumber string `json:"seat_number"`
	PriceCents uint32 `json:"price_cents"`
	EntityID   string `json:"entity_id"`
	Metadata   string `json:"metadata,omitempty"`
}

// ListSeats handles GET /v1/seats?entity_id=…&min_price=…&max_price=….
// It returns the seats currently open for reserve: durable AVAILABLE minus
// live locks.
func (h *BookingHandler) ListSeats(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthenticated(c)
	}
	entityID := c.QueryParam("entity_id")
	minCents, err := priceParam(c, "min_price")
	if err != nil {
		return engineError(c, err)
	}
	maxCents, err := priceParam(c, "max_price")
	if err != nil {
		return engineError(c, err)
	}
	seats, err := h.Engine.ListSeats(c.Request().Context(), actor, entityID, minCents, maxCents)
	if err != nil {
		return engineError(c, err)
	}
	views := make([]seatView, 0, len(seats))
	for _, s := range seats {
		views = append(views, seatView{
			ID: s.ID, SeatNumber: s.SeatNumber, PriceCents: s.PriceCents,
			EntityID: s.EntityID, Metadata: s.Metadata,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"seats":     views,
		"count":     len(views),
		"entity_id": entityID,
	})
}

// Reserve handles POST /v1/seats/reserve.  The body carries the seat id;
// the response carries the reservation token, its expiry and the seat
// snapshot.
func (h *BookingHandler) Reserve(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthenticated(c)
	}
	var body struct {
		SeatID uint64 `json:"seat_id"`
	}
	if err := c.Bind(&body); err != nil {
		return engineError(c, &engine.Error{Code: engine.CodeValidation, Message: "invalid request body"})
	}
	result, err := h.Engine.Reserve(c.Request().Context(), actor, body.SeatID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// CreateOrder handles POST /v1/orders.  Idempotent by reservation token.
func (h *BookingHandler) CreateOrder(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthenticated(c)
	}
	var body struct {
		ReservationToken string  `json:"reservation_token"`
		AmountCents      *uint32 `json:"amount"`
		Currency         string  `json:"currency"`
	}
	if err := c.Bind(&body); err != nil {
		return engineError(c, &engine.Error{Code: engine.CodeValidation, Message: "invalid request body"})
	}
	order, err := h.Engine.CreateOrder(c.Request().Context(), actor, body.ReservationToken, body.AmountCents, body.Currency)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"order_id":          order.OrderID,
		"amount":            order.AmountCents,
		"currency":          order.Currency,
		"reservation_token": order.ReservationToken,
		"gateway_key":       order.GatewayKey,
	})
}

// Confirm handles POST /v1/seats/confirm.  Two payload shapes are
// accepted: a bare payment id (simulated/reference modes) or the signed
// callback triple (order id, payment id, signature).
func (h *BookingHandler) Confirm(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthenticated(c)
	}
	var body struct {
		ReservationToken string `json:"reservation_token"`
		PaymentID        string `json:"payment_id"`
		OrderID          string `json:"order_id"`
		Signature        string `json:"signature"`
	}
	if err := c.Bind(&body); err != nil {
		return engineError(c, &engine.Error{Code: engine.CodeValidation, Message: "invalid request body"})
	}
	booking, err := h.Engine.Confirm(c.Request().Context(), actor, body.ReservationToken, payment.Request{
		PaymentID: body.PaymentID,
		OrderID:   body.OrderID,
		Signature: body.Signature,
	})
	if err != nil {
		return engineError(c, err)
	}

	// Best effort: downstream consumers learn about the booking over the
	// broker; a publish failure never fails the request.
	go publishConfirmed(h.RabbitURL, booking)

	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id": booking.BookingID,
		"booking":    bookingView(booking),
		"seat": echo.Map{
			"id":          booking.SeatID,
			"seat_number": booking.SeatNumber,
			"entity_id":   booking.EntityID,
			"status":      model.SeatBooked,
		},
	})
}

// Release handles POST /v1/seats/release.  Safe to repeat.
func (h *BookingHandler) Release(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthenticated(c)
	}
	var body struct {
		ReservationToken string `json:"reservation_token"`
	}
	if err := c.Bind(&body); err != nil {
		return engineError(c, &engine.Error{Code: engine.CodeValidation, Message: "invalid request body"})
	}
	if err := h.Engine.Release(c.Request().Context(), actor, body.ReservationToken); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"released": true})
}

// MyBookings handles GET /v1/my-bookings?page=&limit=.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthenticated(c)
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	bookings, err := h.Engine.MyBookings(c.Request().Context(), actor, page, limit)
	if err != nil {
		return engineError(c, err)
	}
	items := make([]echo.Map, 0, len(bookings))
	for i := range bookings {
		items = append(items, bookingView(&bookings[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"page":  max(page, 1),
		"count": len(items),
	})
}

// bookingView is the wire shape of a booking.
func bookingView(b *model.Booking) echo.Map {
	return echo.Map{
		"booking_id":        b.BookingID,
		"seat_id":           b.SeatID,
		"seat_number":       b.SeatNumber,
		"entity_id":         b.EntityID,
		"reservation_token": b.ReservationToken,
		"payment_status":    b.PaymentStatus,
		"payment_ref":       b.PaymentRef,
		"amount":            b.AmountCents,
		"currency":          b.Currency,
		"booking_date":      b.BookingDate.Format(time.RFC3339),
	}
}

// priceParam parses an optional integer query parameter in cents.
func priceParam(c echo.Context, name string) (*uint32, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, &engine.Error{Code: engine.CodeValidation, Message: "invalid " + name}
	}
	v := uint32(n)
	return &v, nil
}

// publishConfirmed pushes the booking.confirmed event with a bounded
// deadline of its own; it runs detached from the request.
func publishConfirmed(url string, b *model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ev := queue.BookingConfirmedEvent{
		BookingID:        b.BookingID,
		ReservationToken: b.ReservationToken,
		TenantID:         b.TenantID,
		UserID:           b.UserID,
		SeatID:           b.SeatID,
		SeatNumber:       b.SeatNumber,
		EntityID:         b.EntityID,
		AmountCents:      b.AmountCents,
		Currency:         b.Currency,
		ConfirmedAt:      b.BookingDate.Format(time.RFC3339),
	}
	if err := queue_publisher.PublishBookingConfirmed(ctx, url, ev); err != nil {
		log.Printf("booking.confirmed publish failed for %s: %v", b.BookingID, err)
	}
}
