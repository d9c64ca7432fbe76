package repository // repository defines data access for tenants

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/booking-backend/internal/model"
)

// ErrTenantNotFound is returned when a tenant lookup yields no rows.
var ErrTenantNotFound = errors.New("tenant not found")

// TenantRepo provides read access to tenant (app) records.  Tenant CRUD
// belongs to the admin surface; the reservation pipeline only needs to
// load a tenant by id to authenticate requests.
type TenantRepo struct {
	db *sql.DB
}

// NewTenantRepo constructs a TenantRepo with the given DB handle.
func NewTenantRepo(db *sql.DB) *TenantRepo {
	return &TenantRepo{db: db}
}

// GetByID loads a tenant by its opaque id.  AllowedOrigins is stored as a
// JSON array column; an empty or NULL column decodes to no restrictions.
func (r *TenantRepo) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	const q = `SELECT id, name, secret_hash, domain, allowed_origins, is_active, created_at, updated_at
			   FROM tenants WHERE id = ?`
	var (
		t       model.Tenant
		origins sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&t.ID, &t.Name, &t.SecretHash, &t.Domain, &origins, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	if origins.Valid && origins.String != "" {
		if err := json.Unmarshal([]byte(origins.String), &t.AllowedOrigins); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// Create inserts a tenant record.  Used by seed scripts and tests; the
// admin API that normally owns this table lives outside this service.
func (r *TenantRepo) Create(ctx context.Context, t *model.Tenant) error {
	origins, err := json.Marshal(t.AllowedOrigins)
	if err != nil {
		return err
	}
	const q = `INSERT INTO tenants (id, name, secret_hash, domain, allowed_origins, is_active)
			   VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q, t.ID, t.Name, t.SecretHash, t.Domain, string(origins), t.IsActive)
	return err
}
