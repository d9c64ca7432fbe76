// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/booking-backend/internal/config"
	"github.com/iliyamo/booking-backend/internal/handler"
	"github.com/iliyamo/booking-backend/internal/middleware"
	"github.com/iliyamo/booking-backend/internal/repository"
)

// RegisterRoutes registers routes that require no authentication at all.
// Currently that is only the health check used by load balancers and
// monitoring systems.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers the user issuance endpoints under /v1/auth.
// Register and login run without tenant or user gates: they exist so a
// caller can obtain a bearer token in the first place.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterBooking registers the tenant-scoped booking API under /v1.
// Every route in the group passes three gates in order: tenant
// authentication (headers + origin check), user authentication (bearer
// token or external identity), then the Redis token bucket keyed on
// tenant/user/route. Handlers behind the group can rely on both
// identities being present in the request context.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler,
	tenants *repository.TenantRepo, users *repository.UserRepo,
	cfg config.Config, rlCfg config.RateLimitConfig, rdb *redis.Client) {

	g := e.Group("/v1")
	g.Use(middleware.TenantAuth(tenants))
	g.Use(middleware.UserAuth(users, cfg.UserTokenSecret))
	g.Use(middleware.NewTokenBucket(rlCfg, rdb))

	g.GET("/seats", b.ListSeats)
	g.POST("/seats/reserve", b.Reserve)
	g.POST("/orders", b.CreateOrder)
	g.POST("/seats/confirm", b.Confirm)
	g.POST("/seats/release", b.Release)
	g.GET("/my-bookings", b.MyBookings)
}
