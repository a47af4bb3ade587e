package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-event-checkin/internal/checkin"
	"github.com/iliyamo/live-event-checkin/internal/hub"
	"github.com/iliyamo/live-event-checkin/internal/model"
	"github.com/iliyamo/live-event-checkin/internal/queue"
	"github.com/iliyamo/live-event-checkin/internal/repository"
)

// fakeStore implements CheckinStore over a map with scripted failures.
type fakeStore struct {
	events    map[uint64]*model.Event
	recorded  []model.Checkin
	recordErr error
	total     int
	unique    int
}

func (f *fakeStore) GetEventForDisplay(_ context.Context, id uint64) (*model.Event, error) {
	return f.events[id], nil
}

func (f *fakeStore) RecordCheckin(_ context.Context, c *model.Checkin) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	c.ID = uint64(len(f.recorded) + 1)
	f.recorded = append(f.recorded, *c)
	return nil
}

func (f *fakeStore) CheckinStats(context.Context, uint64) (int, int, error) {
	return f.total, f.unique, nil
}

// captureSender records delivered frames for room-scoping assertions.
type captureSender struct {
	mu     sync.Mutex
	events []string
}

func (s *captureSender) Send(event string, _ any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSender) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

const fixtureSecret = "event-secret"

func liveEvent(now time.Time) *model.Event {
	return &model.Event{
		ID:              7,
		Title:           "Rooftop Social",
		Status:          model.StatusOngoing,
		StartDate:       now.Add(-45 * time.Minute),
		EndDate:         now.Add(time.Hour),
		CheckinInterval: 30,
		CheckinsCount:   4,
		PointsTotal:     80,
		QRSecret:        fixtureSecret,
	}
}

func checkinFixture(now time.Time) (*CheckinHandler, *fakeStore, *captureSender, *captureSender) {
	store := &fakeStore{events: map[uint64]*model.Event{7: liveEvent(now)}, total: 4, unique: 3}
	h := hub.New()
	public, admin := &captureSender{}, &captureSender{}
	h.Connect("public", public)
	h.Connect("admin", admin)
	h.Subscribe("public", hub.PublicRoom(7))
	h.Subscribe("admin", hub.AdminRoom(7))

	ch := NewCheckinHandler(store, checkin.NewSigner(0, 0), h)
	ch.Publish = func(context.Context, queue.CheckinRecordedEvent) error { return nil }
	return ch, store, public, admin
}

func postCheckin(t *testing.T, h *CheckinHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/checkin", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Redeem(c); err != nil {
		t.Fatalf("Redeem returned error: %v", err)
	}
	return rec
}

func tokenBody(tok checkin.SecurityToken, user string) string {
	return fmt.Sprintf(`{"event_id":%d,"checkin_number":%d,"issued_at":%d,"signature":"%s","user_name":"%s"}`,
		tok.EventID, tok.CheckinNumber, tok.IssuedAt, tok.Signature, user)
}

// TestRedeemSuccess records the check-in and fans out to exactly the right
// rooms: names to admin only, counters and window to the public room.
func TestRedeemSuccess(t *testing.T) {
	now := time.Now()
	h, store, public, admin := checkinFixture(now)
	tok := checkin.NewSigner(0, 0).Issue(7, 2, fixtureSecret, now)

	rec := postCheckin(t, h, tokenBody(tok, "dana"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if len(store.recorded) != 1 {
		t.Fatalf("recorded %d check-ins, want 1", len(store.recorded))
	}
	got := store.recorded[0]
	if got.EventID != 7 || got.WindowNumber != 2 || got.UserName != "dana" || got.Points != 20 {
		t.Fatalf("recorded check-in = %+v", got)
	}

	adminEvents := admin.received()
	if len(adminEvents) != 1 || adminEvents[0] != hub.EventNewCheckin {
		t.Fatalf("admin room received %v, want [new_checkin]", adminEvents)
	}
	publicEvents := public.received()
	if len(publicEvents) != 2 {
		t.Fatalf("public room received %v, want checkin_change and counter_update", publicEvents)
	}
	for _, ev := range publicEvents {
		if ev == hub.EventNewCheckin {
			t.Fatal("new_checkin leaked into the public room")
		}
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["points"].(float64) != 20 {
		t.Fatalf("response points = %v, want 20", resp["points"])
	}
}

// TestRedeemRejections walks the failure table: unknown event, forged
// signature, expired token, stale window, duplicate scan, event not live.
func TestRedeemRejections(t *testing.T) {
	now := time.Now()
	signer := checkin.NewSigner(0, 0)

	t.Run("unknown event", func(t *testing.T) {
		h, _, _, _ := checkinFixture(now)
		tok := signer.Issue(99, 1, fixtureSecret, now)
		if rec := postCheckin(t, h, tokenBody(tok, "dana")); rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("forged signature", func(t *testing.T) {
		h, _, _, _ := checkinFixture(now)
		tok := signer.Issue(7, 2, "wrong-secret", now)
		if rec := postCheckin(t, h, tokenBody(tok, "dana")); rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		h, _, _, _ := checkinFixture(now)
		tok := signer.Issue(7, 2, fixtureSecret, now.Add(-3*time.Minute))
		if rec := postCheckin(t, h, tokenBody(tok, "dana")); rec.Code != http.StatusGone {
			t.Fatalf("status = %d, want 410", rec.Code)
		}
	})

	t.Run("stale window", func(t *testing.T) {
		// Window 1's token is still inside its 120s lifetime but the event
		// has moved on to window 2.
		h, _, _, _ := checkinFixture(now)
		tok := signer.Issue(7, 1, fixtureSecret, now)
		if rec := postCheckin(t, h, tokenBody(tok, "dana")); rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("duplicate scan", func(t *testing.T) {
		h, store, _, _ := checkinFixture(now)
		store.recordErr = repository.ErrDuplicateCheckin
		tok := signer.Issue(7, 2, fixtureSecret, now)
		if rec := postCheckin(t, h, tokenBody(tok, "dana")); rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("paused event", func(t *testing.T) {
		h, store, _, _ := checkinFixture(now)
		store.events[7].IsPaused = true
		tok := signer.Issue(7, 2, fixtureSecret, now)
		if rec := postCheckin(t, h, tokenBody(tok, "dana")); rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("missing user name", func(t *testing.T) {
		h, _, _, _ := checkinFixture(now)
		tok := signer.Issue(7, 2, fixtureSecret, now)
		if rec := postCheckin(t, h, tokenBody(tok, "")); rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}
