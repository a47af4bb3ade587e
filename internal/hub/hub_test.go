package hub

import (
	"errors"
	"sync"
	"testing"
)

// recordingSender captures everything delivered to one client.
type recordingSender struct {
	mu     sync.Mutex
	frames []frame
	err    error
}

type frame struct {
	event   string
	payload any
}

func (s *recordingSender) Send(event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, frame{event: event, payload: payload})
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// TestPublishScopedToRoom ensures a publish reaches subscribers of that
// room and nobody else.
func TestPublishScopedToRoom(t *testing.T) {
	h := New()
	a, b := &recordingSender{}, &recordingSender{}
	h.Connect("a", a)
	h.Connect("b", b)
	h.Subscribe("a", PublicRoom(1))
	h.Subscribe("b", PublicRoom(2))

	h.Publish(PublicRoom(1), EventCounterUpdate, CounterUpdate{EventID: 1, Total: 5})

	if a.count() != 1 {
		t.Fatalf("subscriber of event:1 received %d frames, want 1", a.count())
	}
	if b.count() != 0 {
		t.Fatalf("subscriber of event:2 received %d frames, want 0", b.count())
	}
}

// TestAdminRoomIsolation ensures admin-room publishes never reach the
// public room of the same event.
func TestAdminRoomIsolation(t *testing.T) {
	h := New()
	public, admin := &recordingSender{}, &recordingSender{}
	h.Connect("public", public)
	h.Connect("admin", admin)
	h.Subscribe("public", PublicRoom(1))
	h.Subscribe("admin", AdminRoom(1))

	h.Publish(AdminRoom(1), EventNewCheckin, NewCheckin{EventID: 1, UserName: "dana"})

	if admin.count() != 1 {
		t.Fatalf("admin subscriber received %d frames, want 1", admin.count())
	}
	if public.count() != 0 {
		t.Fatalf("public subscriber received %d admin frames, want 0", public.count())
	}
}

// TestDisconnectDropsMembership ensures publishing after a disconnect does
// not error and reaches no one.
func TestDisconnectDropsMembership(t *testing.T) {
	h := New()
	a := &recordingSender{}
	h.Connect("a", a)
	h.Subscribe("a", PublicRoom(1))
	h.Disconnect("a")

	h.Publish(PublicRoom(1), EventQRUpdate, QRUpdate{EventID: 1})

	if a.count() != 0 {
		t.Fatalf("disconnected client received %d frames, want 0", a.count())
	}
}

// TestSubscribeIdempotent ensures double subscription yields single
// delivery.
func TestSubscribeIdempotent(t *testing.T) {
	h := New()
	a := &recordingSender{}
	h.Connect("a", a)
	h.Subscribe("a", PublicRoom(1))
	h.Subscribe("a", PublicRoom(1))

	h.Publish(PublicRoom(1), EventStatusChange, StatusChange{EventID: 1})

	if a.count() != 1 {
		t.Fatalf("double-subscribed client received %d frames, want 1", a.count())
	}
}

// TestUnsubscribe ensures leaving a room stops delivery and that leaving a
// never-joined room is a no-op.
func TestUnsubscribe(t *testing.T) {
	h := New()
	a := &recordingSender{}
	h.Connect("a", a)
	h.Subscribe("a", PublicRoom(1))
	h.Unsubscribe("a", PublicRoom(1))
	h.Unsubscribe("a", PublicRoom(99)) // never joined

	h.Publish(PublicRoom(1), EventQRUpdate, QRUpdate{EventID: 1})

	if a.count() != 0 {
		t.Fatalf("unsubscribed client received %d frames, want 0", a.count())
	}
}

// TestUnknownClientOperations ensures subscribe/unsubscribe for clients
// that never connected are silent no-ops.
func TestUnknownClientOperations(t *testing.T) {
	h := New()
	h.Subscribe("ghost", PublicRoom(1))
	h.Unsubscribe("ghost", PublicRoom(1))
	h.Publish(PublicRoom(1), EventQRUpdate, QRUpdate{EventID: 1}) // no subscribers, no panic
}

// TestSendFailureDoesNotStopFanout ensures one failing connection does not
// block delivery to the rest of the room.
func TestSendFailureDoesNotStopFanout(t *testing.T) {
	h := New()
	bad := &recordingSender{err: errors.New("broken pipe")}
	good := &recordingSender{}
	h.Connect("bad", bad)
	h.Connect("good", good)
	h.Subscribe("bad", PublicRoom(1))
	h.Subscribe("good", PublicRoom(1))

	h.Publish(PublicRoom(1), EventCounterUpdate, CounterUpdate{EventID: 1})

	if good.count() != 1 {
		t.Fatalf("healthy client received %d frames, want 1", good.count())
	}
}

// TestConcurrentAccess exercises connect/subscribe/publish/disconnect under
// the race detector.
func TestConcurrentAccess(t *testing.T) {
	h := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			s := &recordingSender{}
			for j := 0; j < 100; j++ {
				h.Connect(id, s)
				h.Subscribe(id, PublicRoom(1))
				h.Publish(PublicRoom(1), EventQRUpdate, QRUpdate{EventID: 1})
				h.Unsubscribe(id, PublicRoom(1))
				h.Disconnect(id)
			}
		}(i)
	}
	wg.Wait()
}

// TestRoomNames pins the room naming scheme the clients depend on.
func TestRoomNames(t *testing.T) {
	if got := PublicRoom(42); got != "event:42" {
		t.Fatalf("PublicRoom(42) = %q, want %q", got, "event:42")
	}
	if got := AdminRoom(42); got != "event:42:admin" {
		t.Fatalf("AdminRoom(42) = %q, want %q", got, "event:42:admin")
	}
}
