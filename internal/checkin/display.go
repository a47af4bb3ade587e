package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/live-event-checkin/internal/model"
)

// ErrEventNotFound is returned by Assemble when the requested event does
// not exist. Handlers translate it into an HTTP 404.
var ErrEventNotFound = errors.New("event not found")

// EventLookup is the narrow read-only interface onto the event store used
// by the assembler. GetEventForDisplay returns (nil, nil) for a missing
// event; CheckinStats returns the recorded total and distinct-user count.
type EventLookup interface {
	GetEventForDisplay(ctx context.Context, id uint64) (*model.Event, error)
	CheckinStats(ctx context.Context, eventID uint64) (total int, uniqueUsers int, err error)
}

// DisplayPayload aggregates everything a public display needs to render:
// event facts, the active window, live aggregate stats and, for a running
// unpaused event, the current security token. It is assembled fresh on
// every request and every rotation tick so it can never lag the event row.
type DisplayPayload struct {
	EventID       uint64         `json:"event_id"`
	Title         string         `json:"title"`
	Status        string         `json:"status"`
	IsPaused      bool           `json:"is_paused"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
	CheckinNumber int            `json:"checkin_number"`
	CheckinsCount int            `json:"checkins_count"`
	Points        int            `json:"points"`
	Total         int            `json:"total"`
	UniqueUsers   int            `json:"unique_users"`
	Token         *SecurityToken `json:"security_token,omitempty"`
}

// Assembler composes display payloads and on-demand tokens from the event
// store, the window calculator and the signer. The clock is injectable for
// tests and defaults to time.Now.
type Assembler struct {
	events EventLookup
	signer *Signer
	now    func() time.Time
}

// NewAssembler constructs an Assembler over the given lookup and signer.
func NewAssembler(events EventLookup, signer *Signer) *Assembler {
	return &Assembler{events: events, signer: signer, now: time.Now}
}

// Assemble builds the full display payload for an event. It fails with
// ErrEventNotFound when the event does not exist. The token is omitted for
// events that are not ONGOING or are paused.
func (a *Assembler) Assemble(ctx context.Context, eventID uint64) (*DisplayPayload, error) {
	e, err := a.events.GetEventForDisplay(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("lookup event %d: %w", eventID, err)
	}
	if e == nil {
		return nil, ErrEventNotFound
	}
	now := a.now()
	total, uniqueUsers, err := a.events.CheckinStats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("checkin stats for event %d: %w", eventID, err)
	}
	p := &DisplayPayload{
		EventID:       e.ID,
		Title:         e.Title,
		Status:        e.Status,
		IsPaused:      e.IsPaused,
		StartDate:     e.StartDate,
		EndDate:       e.EndDate,
		CheckinNumber: CurrentWindow(e, now),
		CheckinsCount: e.CheckinsCount,
		Points:        PointsPerWindow(e),
		Total:         total,
		UniqueUsers:   uniqueUsers,
	}
	if e.Status == model.StatusOngoing && !e.IsPaused {
		tok := a.signer.Issue(e.ID, p.CheckinNumber, e.QRSecret, now)
		p.Token = &tok
	}
	return p, nil
}

// TokenForOngoingEvent issues a fresh token for an event's current window.
// A missing, paused or non-ongoing event yields (nil, nil) rather than an
// error: callers use the nil token as a no-broadcast signal.
func (a *Assembler) TokenForOngoingEvent(ctx context.Context, eventID uint64) (*SecurityToken, error) {
	e, err := a.events.GetEventForDisplay(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("lookup event %d: %w", eventID, err)
	}
	if e == nil || e.Status != model.StatusOngoing || e.IsPaused {
		return nil, nil
	}
	now := a.now()
	tok := a.signer.Issue(e.ID, CurrentWindow(e, now), e.QRSecret, now)
	return &tok, nil
}
