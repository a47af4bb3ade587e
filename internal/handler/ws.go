package handler

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-event-checkin/internal/hub"
	"github.com/iliyamo/live-event-checkin/internal/utils"
)

// Package-level WebSocket upgrader. Displays are embedded on venue screens
// and kiosk browsers served from arbitrary origins, so the origin check is
// permissive; nothing privileged is reachable without a staff token.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsCommand is a client -> server frame.
type wsCommand struct {
	Action  string `json:"action"`          // "subscribe" or "unsubscribe"
	EventID uint64 `json:"event_id"`        // target event
	Scope   string `json:"scope,omitempty"` // "admin" for the staff room
}

// wsFrame is a server -> client frame wrapping a typed hub payload.
type wsFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// wsSender adapts one websocket connection to the hub's Sender interface.
// gorilla connections allow a single concurrent writer, so writes are
// serialized through a mutex.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSender) Send(event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(wsFrame{Event: event, Data: payload})
}

// WSHandler upgrades display and dashboard connections and relays their
// subscribe/unsubscribe commands to the hub. Room membership lives for
// exactly as long as the socket.
type WSHandler struct {
	Hub       *hub.Hub
	JWTSecret string
}

// Serve handles one websocket connection. A staff access token may be
// supplied via the "token" query parameter at upgrade time; only connections
// presenting a valid STAFF token may join admin rooms. The hub never
// validates event existence (subscribing to an unknown event is a silent
// success); existence checks belong to the display endpoints.
func (h *WSHandler) Serve(c echo.Context) error {
	staff := false
	if raw := c.QueryParam("token"); raw != "" {
		if _, role, err := utils.VerifyAccessToken(h.JWTSecret, raw); err == nil && role == "STAFF" {
			staff = true
		}
	}

	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	clientID := uuid.NewString()
	sender := &wsSender{conn: conn}
	h.Hub.Connect(clientID, sender)
	defer func() {
		h.Hub.Disconnect(clientID)
		_ = conn.Close()
	}()

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			// Disconnect, protocol violation or malformed frame: drop the
			// connection and let the client reconnect cleanly.
			return nil
		}
		switch cmd.Action {
		case "subscribe":
			room := hub.PublicRoom(cmd.EventID)
			if cmd.Scope == "admin" {
				if !staff {
					_ = sender.Send("error", echo.Map{"error": "admin scope requires a staff token"})
					continue
				}
				room = hub.AdminRoom(cmd.EventID)
			}
			h.Hub.Subscribe(clientID, room)
			_ = sender.Send("subscribed", echo.Map{"room": room})
		case "unsubscribe":
			room := hub.PublicRoom(cmd.EventID)
			if cmd.Scope == "admin" {
				room = hub.AdminRoom(cmd.EventID)
			}
			h.Hub.Unsubscribe(clientID, room)
			_ = sender.Send("unsubscribed", echo.Map{"ok": true})
		default:
			_ = sender.Send("error", echo.Map{"error": "unknown action"})
		}
	}
}
