package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/iliyamo/live-event-checkin/internal/handler"    // handlers implementing the endpoints
	"github.com/iliyamo/live-event-checkin/internal/middleware" // JWT, role, cache and rate-limit middleware
)

// RegisterRoutes registers routes that carry no middleware at all.
// Currently it exposes only a health check used by load balancers and
// monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterDisplay registers the public display page, its JSON data
// endpoint and the websocket upgrade. The data endpoint is rate-limited:
// the page falls back to 30-second polling when its socket drops, and a
// broken client looping faster than that gets throttled instead of taking
// the event store with it.
func RegisterDisplay(e *echo.Echo, d *handler.DisplayHandler, ws *handler.WSHandler, rl echo.MiddlewareFunc) {
	e.GET("/display/:id", d.GetDisplayPage)
	e.GET("/display/:id/data", d.GetDisplayData, rl)
	e.GET("/ws/events", ws.Serve)
}

// RegisterAPI registers the /v1 API surface:
//
//	POST /v1/auth/login       – staff login (no middleware)
//	GET  /v1/events           – public ongoing listing, cached + rate-limited
//	POST /v1/checkin          – token redemption, rate-limited
//	GET  /v1/events/:id/stats – staff-only aggregates, JWT + role gated
func RegisterAPI(e *echo.Echo, ev *handler.EventsHandler, ch *handler.CheckinHandler, a *handler.AuthHandler,
	jwtSecret string, cacheMW, rl echo.MiddlewareFunc) {
	e.POST("/v1/auth/login", a.Login)
	e.GET("/v1/events", ev.ListOngoing, cacheMW, rl)
	e.POST("/v1/checkin", ch.Redeem, rl)

	staff := e.Group("/v1")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole("STAFF"))
	staff.GET("/events/:id/stats", ev.GetStats)
}
