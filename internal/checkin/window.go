// Package checkin implements the live check-in core: the window calculator,
// the HMAC token signer, the status state machine and the display assembler.
// Everything here is pure or talks to collaborators through narrow
// interfaces, so the whole package is unit-testable with an injected clock.
package checkin

import (
	"time"

	"github.com/iliyamo/live-event-checkin/internal/model"
)

// CurrentWindow returns the 1-based check-in window active at now.
//
// Events that are not ONGOING always report window 1 so public displays
// have a deterministic value to render before and after the live phase.
// During the live phase the window advances every CheckinInterval minutes
// from StartDate and clamps to CheckinsCount; it never drops below 1, even
// when now precedes the start date.
func CurrentWindow(e *model.Event, now time.Time) int {
	if e.Status != model.StatusOngoing {
		return 1
	}
	interval := e.CheckinInterval
	if interval < 1 {
		interval = 1
	}
	elapsed := now.Sub(e.StartDate)
	raw := int(elapsed/(time.Duration(interval)*time.Minute)) + 1
	if raw < 1 {
		return 1
	}
	if e.CheckinsCount >= 1 && raw > e.CheckinsCount {
		return e.CheckinsCount
	}
	return raw
}

// PointsPerWindow returns the points awarded for completing one check-in
// window: the event's points pool split evenly across all windows, rounded
// down. A malformed CheckinsCount below 1 is treated as 1.
func PointsPerWindow(e *model.Event) int {
	count := e.CheckinsCount
	if count < 1 {
		count = 1
	}
	return e.PointsTotal / count
}
