// Package repository contains data access logic for the live check-in core.
// This file defines repository methods for events. Events are owned by the
// platform's admin tooling; this repository reads them for display and
// rotation purposes and mutates only the status column and the denormalized
// check-in counter. The qr_secret column is selected here and must never be
// serialized into any API response.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparison
	"strings"      // strings for duplicate-key detection
	"time"         // time for wall-clock comparisons

	"github.com/iliyamo/live-event-checkin/internal/checkin"
	"github.com/iliyamo/live-event-checkin/internal/model"
)

// eventColumns is the shared select list for scanning a full event row.
const eventColumns = `id, title, status, is_paused, start_date, end_date,
       checkins_count, checkin_interval_min, points_total, qr_secret, total_checkins`

// EventRepo manages persistence for events and their check-ins.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB {
	return r.db
}

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Status, &e.IsPaused, &e.StartDate, &e.EndDate,
		&e.CheckinsCount, &e.CheckinInterval, &e.PointsTotal, &e.QRSecret, &e.TotalCheckins,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEventForDisplay retrieves a single event by ID. It returns (nil, nil)
// when no matching row exists: the display assembler and token path treat a
// missing event as an ordinary outcome rather than a database failure.
func (r *EventRepo) GetEventForDisplay(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// GetOngoingEvents returns all events currently in the ONGOING status,
// paused ones included; the rotation loop decides what to skip. When no
// events are ongoing it returns an empty slice and nil error.
func (r *EventRepo) GetOngoingEvents(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE status = ? ORDER BY start_date ASC`
	rows, err := r.db.QueryContext(ctx, q, model.StatusOngoing)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// TransitionEventStatuses applies the automatic state-machine transitions
// in a single transaction. Candidate rows (SCHEDULED or ONGOING) are read
// and the decision for each is made by checkin.NextStatus, so the SQL layer
// never re-encodes the transition rules. It returns the IDs that changed in
// each direction so the scheduler can broadcast the corresponding
// status_change messages; the status guard on the UPDATE keeps a racing
// writer from being overwritten with a stale decision.
func (r *EventRepo) TransitionEventStatuses(ctx context.Context, now time.Time) (toOngoing, toEnded []uint64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, status, start_date, end_date FROM events WHERE status IN (?, ?)`,
		model.StatusScheduled, model.StatusOngoing)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var candidates []model.Event
	for rows.Next() {
		var e model.Event
		if err = rows.Scan(&e.ID, &e.Status, &e.StartDate, &e.EndDate); err != nil {
			return nil, nil, err
		}
		candidates = append(candidates, e)
	}
	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	toOngoing, toEnded = checkin.SplitTransitions(candidates, now)
	if err = applyTransition(ctx, tx, toOngoing, model.StatusScheduled, model.StatusOngoing); err != nil {
		return nil, nil, err
	}
	if err = applyTransition(ctx, tx, toEnded, model.StatusOngoing, model.StatusEnded); err != nil {
		return nil, nil, err
	}
	return toOngoing, toEnded, nil
}

func applyTransition(ctx context.Context, tx *sql.Tx, ids []uint64, from, to string) error {
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE events SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
			to, id, from); err != nil {
			return err
		}
	}
	return nil
}

// RecordCheckin inserts a check-in row and bumps the event's denormalized
// counter inside one transaction. A unique key on
// (event_id, window_number, user_name) rejects repeat scans of the same
// window; MySQL error 1062 is surfaced as ErrDuplicateCheckin.
func (r *EventRepo) RecordCheckin(ctx context.Context, c *model.Checkin) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO event_checkins (event_id, window_number, user_name, points, scanned_at)
         VALUES (?, ?, ?, ?, ?)`,
		c.EventID, c.WindowNumber, c.UserName, c.Points, c.ScannedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			err = ErrDuplicateCheckin
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	_, err = tx.ExecContext(ctx,
		`UPDATE events SET total_checkins = total_checkins + 1 WHERE id = ?`, c.EventID)
	return err
}

// CheckinStats returns the aggregate totals broadcast as counter_update:
// the number of recorded check-ins and the number of distinct users.
func (r *EventRepo) CheckinStats(ctx context.Context, eventID uint64) (total int, uniqueUsers int, err error) {
	const q = `SELECT COUNT(*), COUNT(DISTINCT user_name) FROM event_checkins WHERE event_id = ?`
	err = r.db.QueryRowContext(ctx, q, eventID).Scan(&total, &uniqueUsers)
	return total, uniqueUsers, err
}
