package model

import "time"

// Checkin records one scanned QR token for one user during one check-in
// window. The (EventID, WindowNumber, UserName) triple is unique so a user
// cannot collect the same window twice.
type Checkin struct {
	ID           uint64    // event_checkins.id
	EventID      uint64    // event_checkins.event_id
	WindowNumber int       // event_checkins.window_number
	UserName     string    // event_checkins.user_name
	Points       int       // event_checkins.points
	ScannedAt    time.Time // event_checkins.scanned_at
}
