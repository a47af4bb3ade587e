package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-event-checkin/internal/checkin"
	"github.com/iliyamo/live-event-checkin/internal/hub"
	"github.com/iliyamo/live-event-checkin/internal/model"
	"github.com/iliyamo/live-event-checkin/internal/queue"
	"github.com/iliyamo/live-event-checkin/internal/repository"
	queue_publisher "github.com/iliyamo/live-event-checkin/internal/service"
)

// CheckinStore is the slice of the event repository the redemption flow
// needs. *repository.EventRepo satisfies it; tests substitute fakes.
type CheckinStore interface {
	GetEventForDisplay(ctx context.Context, id uint64) (*model.Event, error)
	RecordCheckin(ctx context.Context, c *model.Checkin) error
	CheckinStats(ctx context.Context, eventID uint64) (total int, uniqueUsers int, err error)
}

// CheckinHandler redeems scanned QR tokens. A successful redemption stores
// the check-in, notifies the staff dashboard room, refreshes the public
// room's counters and hands the fact to the message broker for downstream
// consumers.
type CheckinHandler struct {
	Events  CheckinStore
	Signer  *checkin.Signer
	Hub     *hub.Hub
	Publish func(context.Context, queue.CheckinRecordedEvent) error
}

// NewCheckinHandler wires the handler to the real broker publisher.
func NewCheckinHandler(events CheckinStore, signer *checkin.Signer, h *hub.Hub) *CheckinHandler {
	return &CheckinHandler{
		Events:  events,
		Signer:  signer,
		Hub:     h,
		Publish: queue_publisher.PublishCheckinRecorded,
	}
}

// checkinRequest is the redemption body: the token fields as scanned from
// the QR code plus the attendee's display name.
type checkinRequest struct {
	EventID       uint64 `json:"event_id"`
	CheckinNumber int    `json:"checkin_number"`
	IssuedAt      int64  `json:"issued_at"`
	Signature     string `json:"signature"`
	UserName      string `json:"user_name"`
}

// Redeem verifies a presented security token and records the check-in.
// Outcomes: 404 unknown event, 409 event not live or duplicate scan,
// 401 forged signature, 410 expired token, 422 token for a stale window.
func (h *CheckinHandler) Redeem(c echo.Context) error {
	var req checkinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserName == "" || req.Signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_name and signature are required"})
	}

	ctx := c.Request().Context()
	e, err := h.Events.GetEventForDisplay(ctx, req.EventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if e == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if e.Status != model.StatusOngoing || e.IsPaused {
		return c.JSON(http.StatusConflict, echo.Map{"error": "event is not live"})
	}

	now := time.Now()
	if err := h.Signer.Verify(req.EventID, req.CheckinNumber, req.IssuedAt, req.Signature, e.QRSecret, now); err != nil {
		if errors.Is(err, checkin.ErrTokenExpired) {
			return c.JSON(http.StatusGone, echo.Map{"error": "security token expired"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid security token"})
	}
	// The signature may be genuine but minted for an earlier window; a
	// screenshot of a previous QR must not redeem the current one.
	if current := checkin.CurrentWindow(e, now); req.CheckinNumber != current {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "check-in window no longer active"})
	}

	rec := model.Checkin{
		EventID:      e.ID,
		WindowNumber: req.CheckinNumber,
		UserName:     req.UserName,
		Points:       checkin.PointsPerWindow(e),
		ScannedAt:    now,
	}
	if err := h.Events.RecordCheckin(ctx, &rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateCheckin) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already checked in for this window"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// Staff dashboards learn who arrived; the public room never sees names.
	h.Hub.Publish(hub.AdminRoom(e.ID), hub.EventNewCheckin, hub.NewCheckin{
		EventID:       e.ID,
		UserName:      rec.UserName,
		CheckinNumber: rec.WindowNumber,
		Timestamp:     now.Unix(),
	})
	h.Hub.Publish(hub.PublicRoom(e.ID), hub.EventCheckinChange, hub.CheckinChange{
		EventID:       e.ID,
		CheckinNumber: rec.WindowNumber,
		Points:        rec.Points,
	})
	if total, uniqueUsers, err := h.Events.CheckinStats(ctx, e.ID); err == nil {
		h.Hub.Publish(hub.PublicRoom(e.ID), hub.EventCounterUpdate, hub.CounterUpdate{
			EventID:     e.ID,
			Total:       total,
			UniqueUsers: uniqueUsers,
		})
	}

	// Broker publish is fire-and-forget relative to the request: it runs on
	// its own context so a slow broker never delays the scanner's response.
	go func(ev queue.CheckinRecordedEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Publish(ctx, ev)
	}(queue.CheckinRecordedEvent{
		CheckinID:    rec.ID,
		EventID:      e.ID,
		EventTitle:   e.Title,
		UserName:     rec.UserName,
		WindowNumber: rec.WindowNumber,
		Points:       rec.Points,
		ScannedAt:    now.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"checkin_id": rec.ID,
		"event_id":   e.ID,
		"window":     rec.WindowNumber,
		"points":     rec.Points,
	})
}
