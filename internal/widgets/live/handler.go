package live

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/shootcal/internal/middleware"
	"github.com/keyxmakerx/shootcal/internal/plugins/preferences"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is the only frame the server sends.
type Message struct {
	Type string `json:"type"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: sameOrigin,
}

// sameOrigin accepts requests with no Origin header (non-browser clients)
// or an Origin whose host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// Handler upgrades calendar pages to a refresh socket.
type Handler struct {
	hub   *Hub
	prefs preferences.Service
}

// NewHandler creates a new live handler.
func NewHandler(hub *Hub, prefs preferences.Service) *Handler {
	return &Handler{hub: hub, prefs: prefs}
}

// Socket serves GET /projects/:id/live?tab=<id>. The client is told to
// refresh when the project changes or when its prefs change in another tab.
// Changes made by the same tab are skipped because that tab already
// re-rendered from the response.
func (h *Handler) Socket(c echo.Context) error {
	projectID := c.Param("id")
	tab := c.QueryParam("tab")

	// Subscribe before upgrading so no refresh is lost in between.
	refresh, cancel := h.hub.Subscribe(projectID)
	defer cancel()

	var prefsCh <-chan preferences.Change
	if clientID := middleware.GetClientID(c); clientID != "" {
		ch, stop, err := h.prefs.Subscribe(c.Request().Context(), clientID)
		if err != nil {
			slog.Warn("prefs subscription failed", slog.Any("error", err))
		} else {
			prefsCh = ch
			defer stop()
		}
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return nil
	}
	defer conn.Close()

	closed := make(chan struct{})
	go readLoop(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return nil
		case <-refresh:
		case change, ok := <-prefsCh:
			if !ok {
				prefsCh = nil
				continue
			}
			if !shouldRefresh(change, tab) {
				continue
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
			continue
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(Message{Type: "refresh"}); err != nil {
			return nil
		}
	}
}

// shouldRefresh reports whether a prefs change should reach the tab. A
// change with no origin came from a plain form post and reaches everyone.
func shouldRefresh(change preferences.Change, tab string) bool {
	return change.Origin == "" || tab == "" || change.Origin != tab
}

// readLoop drains client frames so pongs and close frames are processed,
// and signals when the connection goes away.
func readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
