package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-backend/internal/engine"
	"github.com/iliyamo/booking-backend/internal/middleware"
)

// engineError serializes an engine failure as the standard error body
// {code, message, details} with the HTTP status assigned by the taxonomy.
// Anything that is not an *engine.Error is reported as StoreUnavailable so
// internals never leak to clients.
func engineError(c echo.Context, err error) error {
	var ee *engine.Error
	if !errors.As(err, &ee) {
		ee = &engine.Error{Code: engine.CodeStoreUnavailable, Message: "internal error"}
	}
	return c.JSON(ee.HTTPStatus(), echo.Map{
		"code":    ee.Code,
		"message": ee.Message,
		"details": ee.Details,
	})
}

// actorFrom builds the engine actor from the identities the gates stored
// in the context.  Both middlewares run before any engine handler, so a
// missing identity means the route was wired without its gates.
func actorFrom(c echo.Context) (engine.Actor, bool) {
	tenant := middleware.TenantFrom(c)
	user := middleware.UserFrom(c)
	if tenant == nil || user == nil {
		return engine.Actor{}, false
	}
	return engine.Actor{TenantID: tenant.ID, UserID: user.UserID}, true
}

// unauthenticated writes the 401 error body used when no identity is in
// the context.
func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"code":    engine.CodeAuthentication,
		"message": "request is not authenticated",
	})
}
