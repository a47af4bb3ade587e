package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/live-event-checkin/internal/model"
)

// fakeLookup is an in-memory EventLookup for assembler tests.
type fakeLookup struct {
	events map[uint64]*model.Event
	total  int
	unique int
	err    error
}

func (f *fakeLookup) GetEventForDisplay(_ context.Context, id uint64) (*model.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events[id], nil
}

func (f *fakeLookup) CheckinStats(context.Context, uint64) (int, int, error) {
	return f.total, f.unique, nil
}

func testAssembler(lookup *fakeLookup, now time.Time) *Assembler {
	a := NewAssembler(lookup, NewSigner(0, 0))
	a.now = func() time.Time { return now }
	return a
}

// TestAssembleNotFound ensures a missing event surfaces as ErrEventNotFound.
func TestAssembleNotFound(t *testing.T) {
	a := testAssembler(&fakeLookup{events: map[uint64]*model.Event{}}, time.Now())
	if _, err := a.Assemble(context.Background(), 42); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("Assemble(missing) err = %v, want ErrEventNotFound", err)
	}
}

// TestAssembleOngoing checks the full payload for a live event: window,
// points, stats and an embedded token for the current window.
func TestAssembleOngoing(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	lookup := &fakeLookup{
		events: map[uint64]*model.Event{5: {
			ID:              5,
			Title:           "Summer Meetup",
			Status:          model.StatusOngoing,
			StartDate:       now.Add(-45 * time.Minute),
			EndDate:         now.Add(time.Hour),
			CheckinInterval: 30,
			CheckinsCount:   4,
			PointsTotal:     100,
			QRSecret:        testSecret,
		}},
		total:  12,
		unique: 9,
	}
	a := testAssembler(lookup, now)

	p, err := a.Assemble(context.Background(), 5)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if p.CheckinNumber != 2 {
		t.Fatalf("CheckinNumber = %d, want 2", p.CheckinNumber)
	}
	if p.Points != 25 {
		t.Fatalf("Points = %d, want 25", p.Points)
	}
	if p.Total != 12 || p.UniqueUsers != 9 {
		t.Fatalf("stats = (%d,%d), want (12,9)", p.Total, p.UniqueUsers)
	}
	if p.Token == nil {
		t.Fatal("expected token for ongoing event")
	}
	if p.Token.CheckinNumber != 2 {
		t.Fatalf("token window = %d, want 2", p.Token.CheckinNumber)
	}
	if p.Token.ExpiresAt-p.Token.IssuedAt != 120 {
		t.Fatalf("token lifetime = %d, want 120", p.Token.ExpiresAt-p.Token.IssuedAt)
	}
}

// TestAssembleOmitsTokenWhenNotLive ensures paused and non-ongoing events
// render without a token but still assemble successfully.
func TestAssembleOmitsTokenWhenNotLive(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	paused := &model.Event{
		ID: 1, Status: model.StatusOngoing, IsPaused: true,
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
		CheckinInterval: 30, CheckinsCount: 4, PointsTotal: 100, QRSecret: testSecret,
	}
	scheduled := &model.Event{
		ID: 2, Status: model.StatusScheduled,
		StartDate: now.Add(time.Hour), EndDate: now.Add(2 * time.Hour),
		CheckinInterval: 30, CheckinsCount: 4, PointsTotal: 100, QRSecret: testSecret,
	}
	a := testAssembler(&fakeLookup{events: map[uint64]*model.Event{1: paused, 2: scheduled}}, now)

	for _, id := range []uint64{1, 2} {
		p, err := a.Assemble(context.Background(), id)
		if err != nil {
			t.Fatalf("Assemble(%d) returned error: %v", id, err)
		}
		if p.Token != nil {
			t.Fatalf("Assemble(%d) produced a token for a non-live event", id)
		}
	}
	// Scheduled events always report window 1.
	p, _ := a.Assemble(context.Background(), 2)
	if p.CheckinNumber != 1 {
		t.Fatalf("scheduled event window = %d, want 1", p.CheckinNumber)
	}
}

// TestTokenForOngoingEvent ensures the no-broadcast sentinel: nil token and
// nil error for missing, paused and non-ongoing events.
func TestTokenForOngoingEvent(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	live := &model.Event{
		ID: 1, Status: model.StatusOngoing,
		StartDate: now.Add(-10 * time.Minute), EndDate: now.Add(time.Hour),
		CheckinInterval: 30, CheckinsCount: 4, PointsTotal: 100, QRSecret: testSecret,
	}
	paused := &model.Event{
		ID: 2, Status: model.StatusOngoing, IsPaused: true,
		StartDate: now.Add(-10 * time.Minute), EndDate: now.Add(time.Hour),
		CheckinInterval: 30, CheckinsCount: 4, QRSecret: testSecret,
	}
	ended := &model.Event{
		ID: 3, Status: model.StatusEnded,
		StartDate: now.Add(-3 * time.Hour), EndDate: now.Add(-time.Hour),
		CheckinInterval: 30, CheckinsCount: 4, QRSecret: testSecret,
	}
	a := testAssembler(&fakeLookup{events: map[uint64]*model.Event{1: live, 2: paused, 3: ended}}, now)

	tok, err := a.TokenForOngoingEvent(context.Background(), 1)
	if err != nil || tok == nil {
		t.Fatalf("live event: token=%v err=%v, want token and nil error", tok, err)
	}
	for _, id := range []uint64{2, 3, 99} {
		tok, err := a.TokenForOngoingEvent(context.Background(), id)
		if err != nil {
			t.Fatalf("event %d: unexpected error %v", id, err)
		}
		if tok != nil {
			t.Fatalf("event %d: expected nil token", id)
		}
	}
}

// TestTokenForOngoingEventLookupError ensures store failures propagate as
// errors rather than being conflated with the nil-token sentinel.
func TestTokenForOngoingEventLookupError(t *testing.T) {
	boom := errors.New("connection refused")
	a := testAssembler(&fakeLookup{err: boom}, time.Now())
	if _, err := a.TokenForOngoingEvent(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped lookup error", err)
	}
}
