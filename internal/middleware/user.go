package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-backend/internal/engine"
	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/utils"
)

// Header names for the external-user identity mode.
const (
	HeaderExternalUserID    = "x-external-user-id"
	HeaderExternalUserEmail = "x-external-user-email"
	HeaderExternalUserName  = "x-external-user-name"
)

const userContextKey = "user"

// maxIdentityBodyBytes bounds how much of a request body the gate will
// buffer while looking for body-declared external user fields.
const maxIdentityBodyBytes = 64 * 1024

// Identity is the authenticated user as seen by handlers and the engine.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// UserSource is the user pool access UserAuth needs.  *repository.UserRepo
// satisfies it; tests supply a stub.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	EnsureExternal(ctx context.Context, id, email, name string) (*model.User, error)
}

// externalUserBody is the body-declared variant of the external identity.
type externalUserBody struct {
	ExternalUserID    string `json:"external_user_id"`
	ExternalUserEmail string `json:"external_user_email"`
	ExternalUserName  string `json:"external_user_name"`
}

// UserAuth returns middleware that establishes which user is calling.
// Three modes are tried in order:
//
//  1. a Bearer token signed with the user-token secret; a present but
//     malformed Authorization header is rejected outright, never treated
//     as "no token";
//  2. external-user headers, accepted only behind tenant auth and
//     namespaced as ext:{tenantID}:{externalID};
//  3. the same external-user fields declared in a JSON request body.
//
// External users are upserted into the pool so every reservation and
// booking references a real user row.
func UserAuth(users UserSource, tokenSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			if auth := c.Request().Header.Get("Authorization"); auth != "" {
				if !strings.HasPrefix(auth, "Bearer ") {
					return authError(c, engine.CodeAuthentication, "malformed authorization header")
				}
				userID, err := utils.ParseUserToken(tokenSecret, strings.TrimPrefix(auth, "Bearer "))
				if err != nil {
					return authError(c, engine.CodeAuthentication, "invalid user token")
				}
				u, err := users.GetByID(ctx, userID)
				if err != nil || !u.IsActive {
					return authError(c, engine.CodeAuthentication, "unknown or inactive user")
				}
				c.Set(userContextKey, &Identity{UserID: u.ID, Email: u.Email, Name: u.DisplayName})
				return next(c)
			}

			extID := c.Request().Header.Get(HeaderExternalUserID)
			extEmail := c.Request().Header.Get(HeaderExternalUserEmail)
			extName := c.Request().Header.Get(HeaderExternalUserName)
			if extID == "" {
				if body := peekExternalUser(c); body != nil {
					extID, extEmail, extName = body.ExternalUserID, body.ExternalUserEmail, body.ExternalUserName
				}
			}
			if extID == "" {
				return authError(c, engine.CodeAuthentication, "missing user identity")
			}

			tenant := TenantFrom(c)
			if tenant == nil {
				return authError(c, engine.CodeAuthentication, "external users require tenant authentication")
			}
			id := "ext:" + tenant.ID + ":" + extID
			u, err := users.EnsureExternal(ctx, id, extEmail, extName)
			if err != nil {
				return authError(c, engine.CodeStoreUnavailable, "user lookup failed")
			}
			c.Set(userContextKey, &Identity{UserID: u.ID, Email: u.Email, Name: u.DisplayName})
			return next(c)
		}
	}
}

// UserFrom returns the identity stored by UserAuth, or nil when the
// middleware has not run.
func UserFrom(c echo.Context) *Identity {
	u, _ := c.Get(userContextKey).(*Identity)
	return u
}

// peekExternalUser inspects a JSON request body for declared external user
// fields without consuming it: the bytes read are put back so handler
// binding still works.  Non-JSON and oversized bodies are ignored.
func peekExternalUser(c echo.Context) *externalUserBody {
	req := c.Request()
	if req.Body == nil {
		return nil
	}
	if !strings.Contains(req.Header.Get("Content-Type"), "application/json") {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(req.Body, maxIdentityBodyBytes))
	// Restore the body regardless of the outcome below.
	req.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return nil
	}
	var body externalUserBody
	if json.Unmarshal(raw, &body) != nil || body.ExternalUserID == "" {
		return nil
	}
	return &body
}
