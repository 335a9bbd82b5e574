package realtime

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is the frame pushed to websocket clients.
type Message struct {
	Type    string              `json:"type"`
	Records []attendance.Record `json:"records"`
}

// WSHandler streams every published set to a websocket client.
type WSHandler struct {
	hub      *Hub
	log      *slog.Logger
	upgrader websocket.Upgrader
	gauge    interface{ Inc(); Dec() }
}

// NewWSHandler allows same-host and localhost origins plus the listed ones.
func NewWSHandler(hub *Hub, log *slog.Logger, allowedOrigins []string) *WSHandler {
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WSHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed[origin] {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				host := u.Hostname()
				return u.Host == r.Host || host == "localhost" || host == "127.0.0.1"
			},
		},
	}
}

// WithGauge tracks connected clients.
func (h *WSHandler) WithGauge(g interface{ Inc(); Dec() }) *WSHandler {
	h.gauge = g
	return h
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	id, sets, cancel := h.hub.Subscribe()
	defer cancel()
	if h.gauge != nil {
		h.gauge.Inc()
		defer h.gauge.Dec()
	}
	h.log.Debug("websocket subscribed", "id", id)

	// the read side only services pongs and notices the client leaving
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			h.log.Debug("websocket closed", "id", id)
			return
		case <-r.Context().Done():
			return
		case set, ok := <-sets:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Message{Type: "attendance", Records: set}); err != nil {
				h.log.Debug("websocket write failed", "id", id, "err", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
