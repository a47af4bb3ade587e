// This file defines the room naming scheme and the typed payloads pushed to
// display and dashboard clients. Shapes here are the wire contract of the
// websocket layer; the mobile client and the display page both decode them.
package hub

import "fmt"

// Event names pushed by the server. new_checkin is delivered only to the
// admin room because it may carry a user's name.
const (
	EventQRUpdate      = "qr_update"
	EventCheckinChange = "checkin_change"
	EventCounterUpdate = "counter_update"
	EventStatusChange  = "status_change"
	EventNewCheckin    = "new_checkin"
)

// QRUpdateType is the fixed type discriminator carried in qr_update frames.
const QRUpdateType = "event_checkin"

// PublicRoom names the room public displays join for an event.
func PublicRoom(eventID uint64) string {
	return fmt.Sprintf("event:%d", eventID)
}

// AdminRoom names the privileged room for staff dashboards of an event.
func AdminRoom(eventID uint64) string {
	return fmt.Sprintf("event:%d:admin", eventID)
}

// QRUpdate announces a freshly rotated security token for an event's
// current check-in window.
type QRUpdate struct {
	EventID       uint64 `json:"event_id"`
	Type          string `json:"type"` // always QRUpdateType
	CheckinNumber int    `json:"checkin_number"`
	SecurityToken string `json:"security_token"`
	Timestamp     int64  `json:"timestamp"`
	ExpiresAt     int64  `json:"expires_at"`
}

// CheckinChange announces that the active window advanced, with the points
// the new window awards.
type CheckinChange struct {
	EventID       uint64 `json:"event_id"`
	CheckinNumber int    `json:"checkin_number"`
	Points        int    `json:"points"`
}

// CounterUpdate announces new aggregate totals after a recorded check-in.
type CounterUpdate struct {
	EventID     uint64 `json:"event_id"`
	Total       int    `json:"total"`
	UniqueUsers int    `json:"unique_users"`
}

// StatusChange announces a state-machine transition or pause flip. Message
// is a human-readable note shown to attendees, set for the ENDED case.
type StatusChange struct {
	EventID  uint64 `json:"event_id"`
	Status   string `json:"status"`
	IsPaused bool   `json:"is_paused"`
	Message  string `json:"message,omitempty"`
}

// NewCheckin announces one recorded check-in to staff dashboards. It never
// reaches the public room.
type NewCheckin struct {
	EventID       uint64 `json:"event_id"`
	UserName      string `json:"user_name"`
	CheckinNumber int    `json:"checkin_number"`
	Timestamp     int64  `json:"timestamp"`
}
