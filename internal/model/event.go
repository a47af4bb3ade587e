package model

import "time"

// Event status values. The scheduler only drives SCHEDULED -> ONGOING and
// ONGOING -> ENDED; DRAFT requires an explicit publish and CANCELED is an
// absorbing state reachable through admin tooling outside this service.
const (
	StatusDraft     = "DRAFT"
	StatusScheduled = "SCHEDULED"
	StatusOngoing   = "ONGOING"
	StatusEnded     = "ENDED"
	StatusCanceled  = "CANCELED"
)

// Event represents a physical event with a time-boxed QR check-in phase.
// Rows are owned by the platform's admin tooling; this service reads them
// and only ever mutates the status column and the check-in counters.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – display name shown on the public screen.
//  Status          – current state (DRAFT, SCHEDULED, ONGOING, ENDED,
//                    CANCELED).
//  IsPaused        – freezes window progress and token rotation on an
//                    ONGOING event without changing Status.
//  StartDate       – when the live phase begins (UTC).
//  EndDate         – when the live phase ends (UTC).
//  CheckinsCount   – total number of check-in windows; always >= 1.
//  CheckinInterval – minutes between consecutive windows; always >= 1.
//  PointsTotal     – points pool split evenly across windows.
//  QRSecret        – per-event signing secret; never leaves the server.
//  TotalCheckins   – denormalized count of recorded check-ins.
type Event struct {
	ID              uint64    // events.id
	Title           string    // events.title
	Status          string    // events.status
	IsPaused        bool      // events.is_paused
	StartDate       time.Time // events.start_date
	EndDate         time.Time // events.end_date
	CheckinsCount   int       // events.checkins_count
	CheckinInterval int       // events.checkin_interval_min
	PointsTotal     int       // events.points_total
	QRSecret        string    // events.qr_secret
	TotalCheckins   int       // events.total_checkins
}
