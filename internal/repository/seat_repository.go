package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel definitions

	"github.com/iliyamo/booking-backend/internal/model"
)

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// SeatRepo provides methods to work with seats in the database.  Seats are
// created by tenant inventory sync; only the confirm transaction inside
// BookingRepo ever flips their status.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// CreateBulk inserts multiple seats in a single statement.  Inventory
// arrives in blocks (a hall layout, a vehicle) so there is no single-row
// insert path.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (tenant_id, entity_id, seat_number, price_cents, domain, metadata, status) VALUES `
	args := make([]interface{}, 0, len(seats)*6)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, 'AVAILABLE')"
		args = append(args, s.TenantID, s.EntityID, s.SeatNumber, s.PriceCents, s.Domain, s.Metadata)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT id, tenant_id, entity_id, seat_number, price_cents, domain, metadata,
					  status, booked_by, booking_id, created_at, updated_at
			   FROM seats WHERE id = ?`
	var s model.Seat
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.TenantID, &s.EntityID, &s.SeatNumber, &s.PriceCents, &s.Domain, &s.Metadata,
			&s.Status, &s.BookedBy, &s.BookingID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListAvailable retrieves all AVAILABLE seats for a tenant/entity pair
// ordered by seat_number, optionally constrained to a price range.  The
// result reflects durable status only; callers filter out seats holding a
// live lock separately.
func (r *SeatRepo) ListAvailable(ctx context.Context, tenantID, entityID string, minCents, maxCents *uint32) ([]model.Seat, error) {
	q := `SELECT id, tenant_id, entity_id, seat_number, price_cents, domain, metadata,
				 status, booked_by, booking_id, created_at, updated_at
		  FROM seats
		  WHERE tenant_id = ? AND entity_id = ? AND status = 'AVAILABLE'`
	args := []interface{}{tenantID, entityID}
	if minCents != nil {
		q += ` AND price_cents >= ?`
		args = append(args, *minCents)
	}
	if maxCents != nil {
		q += ` AND price_cents <= ?`
		args = append(args, *maxCents)
	}
	q += ` ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.TenantID, &s.EntityID, &s.SeatNumber, &s.PriceCents, &s.Domain, &s.Metadata,
			&s.Status, &s.BookedBy, &s.BookingID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
