package checkin

import (
	"time"

	"github.com/iliyamo/live-event-checkin/internal/model"
)

// NextStatus returns the automatic status transition for an event at now,
// or the empty string when no automatic transition applies. Only two
// transitions are ever driven by the clock:
//
//	SCHEDULED -> ONGOING once now reaches the start date
//	ONGOING   -> ENDED   once now reaches the end date
//
// DRAFT never auto-advances (publishing is an explicit admin action) and
// CANCELED/ENDED are absorbing. The pause flag is orthogonal: a paused
// ONGOING event still ends on schedule.
func NextStatus(e *model.Event, now time.Time) string {
	switch e.Status {
	case model.StatusScheduled:
		if !now.Before(e.StartDate) {
			return model.StatusOngoing
		}
	case model.StatusOngoing:
		if !now.Before(e.EndDate) {
			return model.StatusEnded
		}
	}
	return ""
}

// SplitTransitions partitions events by the automatic transition due at
// now: IDs moving SCHEDULED -> ONGOING and IDs moving ONGOING -> ENDED.
// Events with no transition due are left out. The repository feeds its
// candidate rows through here, so the transition rules live only in
// NextStatus.
func SplitTransitions(events []model.Event, now time.Time) (toOngoing, toEnded []uint64) {
	for i := range events {
		switch NextStatus(&events[i], now) {
		case model.StatusOngoing:
			toOngoing = append(toOngoing, events[i].ID)
		case model.StatusEnded:
			toEnded = append(toEnded, events[i].ID)
		}
	}
	return toOngoing, toEnded
}
