package repository // repository defines data access for users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/booking-backend/internal/model"
)

// Sentinel errors for user lookups and registration.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// UserRepo provides access to the shared user identity pool.  Registered
// users carry a password hash; external users are upserted on first sight
// under their namespaced "ext:{tenant}:{externalID}" id.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByID loads a user by its opaque id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, email, display_name, password_hash, is_active, created_at, updated_at
			   FROM users WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByEmail loads a registered user by email for login.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT id, email, display_name, password_hash, is_active, created_at, updated_at
			   FROM users WHERE email = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var (
		u     model.User
		email sql.NullString
	)
	err := row.Scan(&u.ID, &email, &u.DisplayName, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Email = email.String
	return &u, nil
}

// Create inserts a registered user.  A duplicate email surfaces as
// ErrEmailExists so the handler can answer 409.  An empty email is stored
// as NULL; the unique index only constrains real addresses.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (id, email, display_name, password_hash, is_active)
			   VALUES (?, NULLIF(?, ''), ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.DisplayName, u.PasswordHash, u.IsActive)
	if isDuplicateKey(err) {
		return ErrEmailExists
	}
	return err
}

// EnsureExternal upserts an external user declared by a tenant.  The id
// must already carry the "ext:{tenant}:" namespace so identifiers from
// different tenants cannot collide.  Email and name refresh on every call
// so the pool tracks the latest values the tenant declared.
func (r *UserRepo) EnsureExternal(ctx context.Context, id, email, name string) (*model.User, error) {
	// The upsert can also collide on the email unique index when a tenant
	// declares an address owned by a registered account.  The IF guards
	// keep such a collision from rewriting the registered user's row; the
	// follow-up GetByID then reports the external id as missing.
	const q = `INSERT INTO users (id, email, display_name, is_active)
			   VALUES (?, NULLIF(?, ''), ?, TRUE)
			   ON DUPLICATE KEY UPDATE
				   email = IF(id = VALUES(id), VALUES(email), email),
				   display_name = IF(id = VALUES(id), VALUES(display_name), display_name)`
	if _, err := r.db.ExecContext(ctx, q, id, email, name); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// isDuplicateKey reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
