// Package scheduler drives the two periodic loops of the live check-in
// core: token rotation for ongoing events and the status transition sweep.
// Both loops are plain ticker goroutines with an explicit Start/Stop
// lifecycle owned by the composition root; a failed tick is logged and the
// next tick runs normally.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/live-event-checkin/internal/checkin"
	"github.com/iliyamo/live-event-checkin/internal/hub"
	"github.com/iliyamo/live-event-checkin/internal/model"
)

// tickTimeout bounds the database work of a single tick so a stalled query
// cannot pile ticks on top of each other.
const tickTimeout = 30 * time.Second

// endedMessage is the human-readable note broadcast with the ENDED
// status_change.
const endedMessage = "This event has ended. Thank you for participating!"

// EventSource is the persistence boundary the scheduler drives: listing
// ongoing events for rotation and applying the automatic status
// transitions.
type EventSource interface {
	GetOngoingEvents(ctx context.Context) ([]model.Event, error)
	TransitionEventStatuses(ctx context.Context, now time.Time) (toOngoing, toEnded []uint64, err error)
}

// TokenSource issues the current token for an ongoing event, or nil when
// the event is missing, paused or no longer ongoing.
type TokenSource interface {
	TokenForOngoingEvent(ctx context.Context, eventID uint64) (*checkin.SecurityToken, error)
}

// Broadcaster fans a typed event out to a room.
type Broadcaster interface {
	Publish(room, event string, payload any)
}

// Rotation owns the two loops. The clock is injectable for tests.
type Rotation struct {
	events   EventSource
	tokens   TokenSource
	hub      Broadcaster
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
	done     chan struct{}
}

// New constructs a Rotation. A non-positive interval falls back to the
// 60-second default cadence.
func New(events EventSource, tokens TokenSource, b Broadcaster, interval time.Duration) *Rotation {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Rotation{
		events:   events,
		tokens:   tokens,
		hub:      b,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the rotation loop and the minute-aligned status sweep.
// It returns immediately; Stop shuts both loops down.
func (r *Rotation) Start() {
	go r.runRotation()
	go r.runSweep()
}

// Stop signals both loops to exit and waits for them to drain.
func (r *Rotation) Stop() {
	close(r.stop)
	<-r.done
	<-r.done
}

// runRotation regenerates tokens for all unpaused ongoing events on a fixed
// cadence.
func (r *Rotation) runRotation() {
	defer func() { r.done <- struct{}{} }()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.safeTick("rotation", r.rotateTick)
		}
	}
}

// sweepDelay returns how long to wait from now until the next minute
// boundary. A now already on the boundary waits a full minute: that
// boundary's sweep has already fired.
func sweepDelay(now time.Time) time.Duration {
	return now.Truncate(time.Minute).Add(time.Minute).Sub(now)
}

// runSweep applies status transitions once per minute, aligned to the
// minute boundary so status flips land on round wall-clock times.
func (r *Rotation) runSweep() {
	defer func() { r.done <- struct{}{} }()
	// Wait out the partial minute before the first sweep.
	timer := time.NewTimer(sweepDelay(r.now()))
	defer timer.Stop()
	select {
	case <-r.stop:
		return
	case <-timer.C:
	}
	r.safeTick("sweep", r.sweepTick)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.safeTick("sweep", r.sweepTick)
		}
	}
}

// safeTick runs one tick with a bounded context and a panic guard so a
// single bad tick can never take the scheduler process down.
func (r *Rotation) safeTick(name string, tick func(ctx context.Context)) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("%s: tick panicked: %v", name, rec)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	tick(ctx)
}

// rotateTick fetches all ongoing events and pushes a fresh qr_update to
// each unpaused one. Paused events are skipped before any token work
// happens. Each event is processed independently: a lookup or signing
// failure for one event is logged and the remaining events still rotate.
func (r *Rotation) rotateTick(ctx context.Context) {
	events, err := r.events.GetOngoingEvents(ctx)
	if err != nil {
		log.Printf("rotation: list ongoing events: %v", err)
		return
	}
	for _, e := range events {
		if e.IsPaused {
			continue
		}
		tok, err := r.tokens.TokenForOngoingEvent(ctx, e.ID)
		if err != nil {
			log.Printf("rotation: token for event %d: %v", e.ID, err)
			continue
		}
		if tok == nil {
			// Paused or ended between the listing and the fetch.
			continue
		}
		r.hub.Publish(hub.PublicRoom(e.ID), hub.EventQRUpdate, hub.QRUpdate{
			EventID:       tok.EventID,
			Type:          hub.QRUpdateType,
			CheckinNumber: tok.CheckinNumber,
			SecurityToken: tok.Signature,
			Timestamp:     tok.IssuedAt,
			ExpiresAt:     tok.ExpiresAt,
		})
	}
}

// sweepTick persists the automatic status transitions and broadcasts a
// status_change for every event that moved.
func (r *Rotation) sweepTick(ctx context.Context) {
	toOngoing, toEnded, err := r.events.TransitionEventStatuses(ctx, r.now())
	if err != nil {
		log.Printf("sweep: transition event statuses: %v", err)
		return
	}
	for _, id := range toOngoing {
		r.hub.Publish(hub.PublicRoom(id), hub.EventStatusChange, hub.StatusChange{
			EventID: id,
			Status:  model.StatusOngoing,
		})
	}
	for _, id := range toEnded {
		r.hub.Publish(hub.PublicRoom(id), hub.EventStatusChange, hub.StatusChange{
			EventID: id,
			Status:  model.StatusEnded,
			Message: endedMessage,
		})
	}
}
