// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-reservation/internal/handler"
	"github.com/iliyamo/hostel-reservation/internal/middleware"
	"github.com/iliyamo/hostel-reservation/internal/model"
)

// RegisterRoutes registers the unauthenticated probes.  /readyz also pings
// the database.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers the auth endpoints.  Register, login, refresh and
// logout need no session; /v1/me requires a valid access token of any role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleGuest, model.RoleStaff),
	)
}

// RegisterCatalog registers the public room routes.  cache wraps only the
// catalog listing; availability answers change with every reservation and
// are never cached.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	// Static segment wins over :id in echo's router.
	e.GET("/v1/rooms/availability", h.SearchAvailability)
	e.GET("/v1/rooms", h.ListRooms, cache)
	e.GET("/v1/rooms/:id", h.GetRoom, cache)
	e.GET("/v1/rooms/:id/availability", h.RoomAvailability)
}

// RegisterGuest registers the reservation routes of signed-in guests.
func RegisterGuest(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleGuest),
	)
	g.POST("/reservations", h.Create)
	g.GET("/reservations/:id", h.Get)
	g.GET("/reservations/:id/payment", h.PaymentStatus)
	g.GET("/my-reservations", h.ListMine)
}

// RegisterStaff registers the front desk routes under /v1/staff.
func RegisterStaff(e *echo.Echo, h *handler.StaffHandler, jwtSecret string) {
	g := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff),
	)
	g.GET("/reservations/:id", h.GetReservation)
	g.POST("/reservations/:id/check-in", h.CheckIn)
	g.POST("/reservations/:id/check-out", h.CheckOut)
	g.POST("/rooms", h.CreateRoom)
}
