package repository // repository defines data access for bookings

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/booking-backend/internal/model"
)

// ErrBookingNotFound is returned when a booking lookup yields no rows.
var ErrBookingNotFound = errors.New("booking not found")

// bookingIDAlphabet is the character set for the random suffix of a
// booking id: uppercase base-36.
const bookingIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewBookingID generates a human readable booking id of the form
// BK-YYYYMMDD-XXXXXX with a six character random suffix.  The daily
// suffix space is 36^6; collisions are rare but real at volume, so the
// confirm transaction regenerates on a duplicate-key error.
func NewBookingID(now time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = bookingIDAlphabet[int(b)%len(bookingIDAlphabet)]
	}
	return "BK-" + now.UTC().Format("20060102") + "-" + string(buf), nil
}

// ConfirmParams carries everything the confirm transaction writes.  The
// snapshot fields come from the reservation row, not a fresh seat read,
// so the booking records what the user agreed to pay.
type ConfirmParams struct {
	ReservationToken string
	UserID           string
	TenantID         string
	SeatID           uint64
	SeatNumber       string
	EntityID         string
	AmountCents      uint32
	Currency         string
	PaymentRef       string
	Now              time.Time
}

// BookingRepo provides access to bookings and owns the confirm
// transaction that atomically books a seat.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// Confirm executes the durable half of seat confirmation in one ACID
// transaction:
//
//  1. insert the booking row (regenerating the booking id on a suffix
//     collision; a duplicate reservation_token means a concurrent confirm
//     already won and surfaces as ErrConflict),
//  2. flip the seat to BOOKED in a single UPDATE carrying the booker and
//     the new booking id, guarded on status = AVAILABLE,
//  3. move the reservation from ACTIVE to CONFIRMED, guarded likewise.
//
// Any guard miss rolls the whole transaction back with ErrConflict, so a
// booking can never exist without its seat BOOKED and its reservation
// CONFIRMED.
func (r *BookingRepo) Confirm(ctx context.Context, p ConfirmParams) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const insertQ = `INSERT INTO bookings
		(booking_id, user_id, tenant_id, seat_id, reservation_token, payment_status,
		 payment_ref, amount_cents, currency, booking_date, seat_number, entity_id)
		VALUES (?, ?, ?, ?, ?, 'SUCCESS', ?, ?, ?, ?, ?, ?)`

	var (
		rowID     uint64
		bookingID string
	)
	for attempt := 0; ; attempt++ {
		bookingID, err = NewBookingID(p.Now)
		if err != nil {
			return nil, err
		}
		out, execErr := tx.ExecContext(ctx, insertQ,
			bookingID, p.UserID, p.TenantID, p.SeatID, p.ReservationToken,
			p.PaymentRef, p.AmountCents, p.Currency, p.Now.UTC(), p.SeatNumber, p.EntityID)
		if execErr == nil {
			id, idErr := out.LastInsertId()
			if idErr != nil {
				return nil, idErr
			}
			rowID = uint64(id)
			break
		}
		var me *mysql.MySQLError
		if errors.As(execErr, &me) && me.Number == 1062 {
			if strings.Contains(me.Message, "reservation_token") {
				// The token was already consumed: a concurrent confirm for
				// the same reservation committed first.
				return nil, ErrConflict
			}
			if attempt < 5 {
				continue // booking_id suffix collision; mint a new one
			}
		}
		return nil, execErr
	}

	const seatQ = `UPDATE seats SET status = 'BOOKED', booked_by = ?, booking_id = ?
				   WHERE id = ? AND status = 'AVAILABLE'`
	out, err := tx.ExecContext(ctx, seatQ, p.UserID, rowID, p.SeatID)
	if err != nil {
		return nil, err
	}
	if n, err := out.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrConflict
	}

	const resQ = `UPDATE reservations SET status = 'CONFIRMED'
				  WHERE reservation_token = ? AND status = 'ACTIVE'`
	out, err = tx.ExecContext(ctx, resQ, p.ReservationToken)
	if err != nil {
		return nil, err
	}
	if n, err := out.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return &model.Booking{
		ID:               rowID,
		BookingID:        bookingID,
		UserID:           p.UserID,
		TenantID:         p.TenantID,
		SeatID:           p.SeatID,
		ReservationToken: p.ReservationToken,
		PaymentStatus:    "SUCCESS",
		PaymentRef:       p.PaymentRef,
		AmountCents:      p.AmountCents,
		Currency:         p.Currency,
		BookingDate:      p.Now.UTC(),
		SeatNumber:       p.SeatNumber,
		EntityID:         p.EntityID,
	}, nil
}

// GetByReservationToken loads the booking created for a reservation, if any.
func (r *BookingRepo) GetByReservationToken(ctx context.Context, token string) (*model.Booking, error) {
	const q = `SELECT id, booking_id, user_id, tenant_id, seat_id, reservation_token, payment_status,
					  payment_ref, amount_cents, currency, booking_date, seat_number, entity_id, created_at
			   FROM bookings WHERE reservation_token = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, token))
}

// ListByUser returns a page of a user's bookings within a tenant, newest
// first.  Page numbering is 1-based.
func (r *BookingRepo) ListByUser(ctx context.Context, tenantID, userID string, page, limit int) ([]model.Booking, error) {
	if page < 1 {
		page = 1
	}
	const q = `SELECT id, booking_id, user_id, tenant_id, seat_id, reservation_token, payment_status,
					  payment_ref, amount_cents, currency, booking_date, seat_number, entity_id, created_at
			   FROM bookings
			   WHERE tenant_id = ? AND user_id = ?
			   ORDER BY created_at DESC
			   LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, tenantID, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.BookingID, &b.UserID, &b.TenantID, &b.SeatID, &b.ReservationToken,
			&b.PaymentStatus, &b.PaymentRef, &b.AmountCents, &b.Currency, &b.BookingDate,
			&b.SeatNumber, &b.EntityID, &b.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *BookingRepo) scanOne(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.BookingID, &b.UserID, &b.TenantID, &b.SeatID, &b.ReservationToken,
		&b.PaymentStatus, &b.PaymentRef, &b.AmountCents, &b.Currency, &b.BookingDate,
		&b.SeatNumber, &b.EntityID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}
