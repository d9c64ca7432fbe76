package model

import "time"

// User represents an identity in the shared user pool.  Registered users
// carry a password hash and log in through /v1/auth; external users are
// declared by a tenant and synthesized under the namespaced id
// "ext:{tenantID}:{externalID}" so identifiers from different tenants can
// never collide.  A user belongs to the pool but is attributed to exactly
// one tenant per reservation.
//
// Fields:
//  ID           – opaque user identifier (users.id).
//  Email        – email address (may be empty for external users).
//  DisplayName  – human readable name.
//  PasswordHash – bcrypt hash; nil for external users.
//  IsActive     – inactive users fail bearer authentication.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type User struct {
	ID           string    // users.id
	Email        string    // users.email
	DisplayName  string    // users.display_name
	PasswordHash *string   // users.password_hash (nullable)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
