package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-backend/internal/engine"
	"github.com/iliyamo/booking-backend/internal/model"
	"github.com/iliyamo/booking-backend/internal/repository"
	"github.com/iliyamo/booking-backend/internal/utils"
)

// Header names for tenant credentials.
const (
	HeaderTenantID     = "x-tenant-id"
	HeaderTenantSecret = "x-tenant-secret"
)

// tenantContextKey is the echo context key under which TenantAuth stores
// the authenticated tenant.
const tenantContextKey = "tenant"

// TenantSource is the read path TenantAuth needs.  *repository.TenantRepo
// satisfies it; tests supply a stub.
type TenantSource interface {
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
}

// TenantAuth returns middleware that establishes which tenant is calling.
// It loads the tenant record, verifies the supplied secret against the
// stored bcrypt hash, rejects disabled tenants, and enforces the tenant's
// allowed-origin list when the request carries an Origin header.  On
// success the tenant is stored in the context for downstream middleware
// and handlers.
func TenantAuth(tenants TenantSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderTenantID)
			secret := c.Request().Header.Get(HeaderTenantSecret)
			if id == "" || secret == "" {
				return authError(c, engine.CodeAuthentication, "missing tenant credentials")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			tenant, err := tenants.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrTenantNotFound) {
					return authError(c, engine.CodeAuthentication, "invalid tenant credentials")
				}
				return authError(c, engine.CodeStoreUnavailable, "tenant lookup failed")
			}
			// bcrypt comparison is constant time for equal-cost hashes.
			if !utils.VerifyPassword(tenant.SecretHash, secret) {
				return authError(c, engine.CodeAuthentication, "invalid tenant credentials")
			}
			if !tenant.IsActive {
				return authError(c, engine.CodeAuthorization, "tenant is disabled")
			}
			if origin := c.Request().Header.Get("Origin"); origin != "" {
				if !originAllowed(tenant.AllowedOrigins, origin) {
					return authError(c, engine.CodeAuthorization, "origin not permitted")
				}
			}

			c.Set(tenantContextKey, tenant)
			return next(c)
		}
	}
}

// TenantFrom returns the tenant stored by TenantAuth, or nil when the
// middleware has not run.
func TenantFrom(c echo.Context) *model.Tenant {
	t, _ := c.Get(tenantContextKey).(*model.Tenant)
	return t
}

// originAllowed reports whether the request origin's host matches the
// tenant's allow list.  An empty list allows everything.  Entries match
// exactly, as a host suffix (entry "example.com" admits
// "app.example.com"), or via the "*" wildcard.
func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	for _, entry := range allowed {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == "*" || host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

// authError writes the standard {code, message, details} error body with
// the status the engine taxonomy assigns to the code.
func authError(c echo.Context, code engine.Code, msg string) error {
	e := &engine.Error{Code: code, Message: msg}
	return c.JSON(e.HTTPStatus(), echo.Map{
		"code":    e.Code,
		"message": e.Message,
		"details": e.Details,
	})
}
