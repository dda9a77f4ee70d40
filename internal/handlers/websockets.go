package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 2 * time.Second
	maxInterval      = 60 * time.Second
	maxIntervalMilli = 60_000
)

// wsEnvelope is the frame written to stream clients.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Stream device state
// @Description  Upgrades to a WebSocket and writes the device state every interval (default 2s, max 60s).
// @Tags         devices
// @Param        id           path   string  true   "Device id"
// @Param        interval     query  string  false  "Go duration, e.g. 5s"
// @Param        interval_ms  query  int     false  "Interval in milliseconds"
// @Router       /api/v1/devices/{id}/ws [get]
// @Security     BearerAuth
func (h *Handler) wsConnect(c *gin.Context) {
	id := c.Param("id")
	interval := h.parseInterval(c)

	// Unknown devices get a plain 404 instead of an upgraded connection.
	if _, err := h.services.GetDeviceState(c.Request.Context(), id); err != nil {
		h.serviceError(c, "ws_device_lookup_failed", err, "device_id", id)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "device_id", id, "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()
	if err := h.sendState(ctx, conn, id); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "device_id", id, "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "device_id", id, "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendState(ctx, conn, id); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "device_id", id, "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// sendState writes the current device state. A device removed while the
// stream is open gets an error frame and the stream ends.
func (h *Handler) sendState(ctx context.Context, conn *websocket.Conn, id string) error {
	st, err := h.services.GetDeviceState(ctx, id)
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err != nil {
		_, msg := statusFor(err)
		_ = conn.WriteJSON(wsEnvelope{Type: "error", Error: msg})
		return err
	}
	return conn.WriteJSON(wsEnvelope{Type: "state", Data: st})
}
