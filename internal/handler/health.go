package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness of the service and its two stores.  The
// endpoint stays cheap: one ping each with a short shared deadline.
type HealthHandler struct {
	DB  *sql.DB
	RDB *redis.Client
}

func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, RDB: rdb}
}

// Health handles GET /healthz.  It returns 200 with per-store status when
// both stores answer, 503 otherwise.  Load balancers key off the status
// code; humans read the body.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if h.DB == nil || h.DB.PingContext(ctx) != nil {
		dbStatus = "down"
	}
	redisStatus := "ok"
	if h.RDB == nil || h.RDB.Ping(ctx).Err() != nil {
		redisStatus = "down"
	}

	overall := "ok"
	status := http.StatusOK
	if dbStatus != "ok" || redisStatus != "ok" {
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, echo.Map{
		"status": overall,
		"db":     dbStatus,
		"redis":  redisStatus,
	})
}
