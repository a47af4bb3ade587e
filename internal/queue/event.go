// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckinRecordedEvent is published when a QR scan is successfully recorded.
// It contains enough information for downstream consumers to log, award
// badges or feed analytics without querying the primary database.
type CheckinRecordedEvent struct {
	CheckinID    uint64 `json:"checkin_id"`
	EventID      uint64 `json:"event_id"`
	EventTitle   string `json:"event_title"`
	UserName     string `json:"user_name"`
	WindowNumber int    `json:"window_number"`
	Points       int    `json:"points"`
	ScannedAt    string `json:"scanned_at"`
}
