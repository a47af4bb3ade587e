package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-event-checkin/internal/repository"
)

// EventsHandler exposes the small read-only event API around the display:
// the public ongoing listing for kiosks and landing screens, and the
// staff-only aggregate stats.
type EventsHandler struct {
	Events *repository.EventRepo
}

// PublicEvent is an ongoing event as exposed to unauthenticated clients.
// Secrets, dates and counters stay internal.
type PublicEvent struct {
	ID       uint64 `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	IsPaused bool   `json:"is_paused"`
}

// ListOngoing returns all currently ongoing events. Response JSON contains
// an "items" array of PublicEvent. The route sits behind the response cache
// so kiosk fleets refreshing together do not hammer the database.
func (h *EventsHandler) ListOngoing(c echo.Context) error {
	events, err := h.Events.GetOngoingEvents(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicEvent, 0, len(events))
	for _, e := range events {
		out = append(out, PublicEvent{ID: e.ID, Title: e.Title, Status: e.Status, IsPaused: e.IsPaused})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetStats returns the aggregate check-in totals for one event. The route
// is JWT + role gated; only staff dashboards call it.
func (h *EventsHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	e, err := h.Events.GetEventForDisplay(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if e == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	total, uniqueUsers, err := h.Events.CheckinStats(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event_id":     e.ID,
		"total":        total,
		"unique_users": uniqueUsers,
	})
}
