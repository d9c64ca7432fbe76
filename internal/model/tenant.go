package model

import "time"

// Tenant represents a frontend application registered with the platform.
// Each tenant authenticates with an opaque id plus a secret and owns an
// isolated slice of seats, reservations and bookings.  Tenants are created
// and mutated by the admin surface, which is outside this service; the
// reservation pipeline only ever reads them.
//
// Fields:
//  ID             – opaque tenant identifier (tenants.id).
//  Name           – display name of the application.
//  SecretHash     – bcrypt hash of the tenant API secret.
//  Domain         – business domain tag (e.g. "events", "transport").
//  AllowedOrigins – origins permitted to call tenant-scoped endpoints;
//                   empty means no restriction, "*" matches everything.
//  IsActive       – disabled tenants fail every tenant-scoped operation.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Tenant struct {
	ID             string    // tenants.id
	Name           string    // tenants.name
	SecretHash     string    // tenants.secret_hash
	Domain         string    // tenants.domain
	AllowedOrigins []string  // tenants.allowed_origins (JSON column)
	IsActive       bool      // tenants.is_active
	CreatedAt      time.Time // tenants.created_at
	UpdatedAt      time.Time // tenants.updated_at
}
