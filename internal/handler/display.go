// Package handler exposes HTTP handlers for the live check-in service.
// This file serves the public display: an HTML page that renders the
// rotating QR token and live stats for one event, plus the JSON endpoint
// the page polls when its websocket is unavailable.
package handler

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-event-checkin/internal/checkin"
)

// DisplayHandler serves the display page and its data endpoint. Payloads
// are assembled fresh on every request; nothing here is cached.
type DisplayHandler struct {
	Assembler *checkin.Assembler
}

// GetDisplayPage renders the HTML display for an event. The initial
// DisplayPayload is embedded as inline JSON so the page paints immediately;
// the embedded script then subscribes over the websocket and falls back to
// polling the data endpoint every 30 seconds. Unknown event IDs render a
// 404 HTML page.
func (h *DisplayHandler) GetDisplayPage(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.HTML(http.StatusNotFound, notFoundPage)
	}
	payload, err := h.Assembler.Assemble(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, checkin.ErrEventNotFound) {
			return c.HTML(http.StatusNotFound, notFoundPage)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	initial, err := json.Marshal(payload)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode error"})
	}
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	w.WriteHeader(http.StatusOK)
	return displayTmpl.Execute(w, displayPageData{
		Title:       payload.Title,
		EventID:     payload.EventID,
		InitialJSON: template.JS(initial),
	})
}

// GetDisplayData returns the DisplayPayload as JSON. Unknown event IDs
// surface as a 404 JSON body.
func (h *DisplayHandler) GetDisplayData(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	payload, err := h.Assembler.Assemble(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, checkin.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, payload)
}

// displayPageData feeds the display template.
type displayPageData struct {
	Title       string
	EventID     uint64
	InitialJSON template.JS
}

var displayTmpl = template.Must(template.New("display").Parse(displayPage))

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Event not found</title></head>
<body>
  <main style="font-family:sans-serif;text-align:center;margin-top:20vh">
    <h1>404</h1>
    <p>This event does not exist or is no longer available.</p>
  </main>
</body>
</html>`

const displayPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} · Live Check-in</title>
  <style>
    body { font-family: sans-serif; text-align: center; margin-top: 8vh; }
    #qr { font-family: monospace; word-break: break-all; max-width: 32em; margin: 1em auto; }
    #status { color: #666; }
  </style>
</head>
<body>
  <main>
    <h1 id="title">{{.Title}}</h1>
    <p id="status"></p>
    <p>Check-in window <span id="window"></span> · <span id="points"></span> points</p>
    <div id="qr"></div>
    <p><span id="total"></span> check-ins · <span id="unique"></span> attendees</p>
  </main>
  <script>
    var eventId = {{.EventID}};
    var state = {{.InitialJSON}};
    var pollTimer = null;

    function render() {
      document.getElementById("status").textContent = state.is_paused ? "PAUSED" : state.status;
      document.getElementById("window").textContent = state.checkin_number + " / " + state.checkins_count;
      document.getElementById("points").textContent = state.points;
      document.getElementById("total").textContent = state.total;
      document.getElementById("unique").textContent = state.unique_users;
      document.getElementById("qr").textContent = state.security_token ? state.security_token.security_token : "";
    }

    function poll() {
      fetch("/display/" + eventId + "/data")
        .then(function (r) { return r.json(); })
        .then(function (p) { state = p; render(); })
        .catch(function () {});
    }

    function startPolling() {
      if (!pollTimer) { pollTimer = setInterval(poll, 30000); }
    }

    function connect() {
      var proto = location.protocol === "https:" ? "wss://" : "ws://";
      var ws;
      try { ws = new WebSocket(proto + location.host + "/ws/events"); }
      catch (e) { startPolling(); return; }
      ws.onopen = function () {
        ws.send(JSON.stringify({ action: "subscribe", event_id: eventId }));
      };
      ws.onmessage = function (msg) {
        var frame = JSON.parse(msg.data);
        if (frame.event === "qr_update") {
          state.checkin_number = frame.data.checkin_number;
          state.security_token = frame.data;
        } else if (frame.event === "checkin_change") {
          state.checkin_number = frame.data.checkin_number;
          state.points = frame.data.points;
        } else if (frame.event === "counter_update") {
          state.total = frame.data.total;
          state.unique_users = frame.data.unique_users;
        } else if (frame.event === "status_change") {
          state.status = frame.data.status;
          state.is_paused = frame.data.is_paused;
          if (frame.data.message) {
            document.getElementById("status").textContent = frame.data.message;
          }
        }
        render();
      };
      ws.onclose = function () { startPolling(); setTimeout(connect, 5000); };
      ws.onerror = function () { ws.close(); };
    }

    render();
    connect();
  </script>
</body>
</html>`
