package repository // repository defines data access for reservations

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/booking-backend/internal/model"
)

// ErrReservationNotFound is returned when a token lookup yields no rows.
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationRepo provides access to the reservations audit table.  Every
// status transition out of ACTIVE is guarded with a conditional UPDATE so
// concurrent confirm/release/expire attempts serialize at the database:
// exactly one writer observes rows-affected > 0.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the provided database.
func NewReservationRepo(db *sql.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// Create inserts a new ACTIVE reservation row with its seat snapshot.  It
// runs immediately after a successful lock acquire; the caller must
// release the lock if the insert fails, otherwise the seat stays blocked
// until the TTL lapses.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
			   (reservation_token, user_id, tenant_id, seat_id, status, expires_at, seat_number, price_cents, entity_id)
			   VALUES (?, ?, ?, ?, 'ACTIVE', ?, ?, ?, ?)`
	out, err := r.db.ExecContext(ctx, q,
		res.Token, res.UserID, res.TenantID, res.SeatID,
		res.ExpiresAt.UTC(), res.SeatNumber, res.PriceCents, res.EntityID)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.Status = model.ReservationActive
	return nil
}

// GetByToken retrieves a reservation by its unique token.
func (r *ReservationRepo) GetByToken(ctx context.Context, token string) (*model.Reservation, error) {
	const q = `SELECT id, reservation_token, user_id, tenant_id, seat_id, status, expires_at,
					  seat_number, price_cents, entity_id, created_at, updated_at
			   FROM reservations WHERE reservation_token = ?`
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, q, token).
		Scan(&res.ID, &res.Token, &res.UserID, &res.TenantID, &res.SeatID, &res.Status, &res.ExpiresAt,
			&res.SeatNumber, &res.PriceCents, &res.EntityID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// MarkExpired transitions an ACTIVE reservation to EXPIRED.  Losing the
// guard (the row already left ACTIVE) is not an error: expiry is observed
// lazily and some other path may have settled the row first.
func (r *ReservationRepo) MarkExpired(ctx context.Context, token string) error {
	const q = `UPDATE reservations SET status = 'EXPIRED' WHERE reservation_token = ? AND status = 'ACTIVE'`
	_, err := r.db.ExecContext(ctx, q, token)
	return err
}

// MarkReleased transitions an ACTIVE reservation to RELEASED and reports
// whether this call performed the transition.  A false return with no
// error means the row was no longer ACTIVE; the caller re-reads to decide
// between idempotent success and Conflict.
func (r *ReservationRepo) MarkReleased(ctx context.Context, token string) (bool, error) {
	const q = `UPDATE reservations SET status = 'RELEASED' WHERE reservation_token = ? AND status = 'ACTIVE'`
	out, err := r.db.ExecContext(ctx, q, token)
	if err != nil {
		return false, err
	}
	n, err := out.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExpireDue sweeps every ACTIVE reservation whose expiry has passed and
// marks it EXPIRED, returning how many rows changed.  The janitor calls
// this periodically to reconcile the audit view with the lock store's
// auto-expiry; the core flows do not depend on it.
func (r *ReservationRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE reservations SET status = 'EXPIRED' WHERE status = 'ACTIVE' AND expires_at < ?`
	out, err := r.db.ExecContext(ctx, q, now.UTC())
	if err != nil {
		return 0, err
	}
	return out.RowsAffected()
}
