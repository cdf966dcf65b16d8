package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	natsadapter "github.com/samirrijal/geooffset/internal/adapters/nats"
	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/pkg/logging"
	"github.com/samirrijal/geooffset/internal/pkg/metrics"
)

const (
	wsPingInterval = 30 * time.Second
	wsRatePerSec   = 10
	wsBurst        = 5
)

// wsErrorMessage is the reply to a frame that could not be served.
type wsErrorMessage struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// wsConn serialises writes on a websocket connection and keeps it alive with pings.
type wsConn struct {
	c    *websocket.Conn
	mu   sync.Mutex
	done chan struct{}
}

func newWSConn(c *websocket.Conn) *wsConn {
	w := &wsConn{c: c, done: make(chan struct{})}
	go w.keepAlive()
	return w
}

func (w *wsConn) writeJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.writeRaw(data)
}

func (w *wsConn) writeRaw(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) keepAlive() {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.mu.Lock()
			err := w.c.WriteMessage(websocket.PingMessage, nil)
			w.mu.Unlock()
			if err != nil {
				return
			}
		case <-w.done:
			return
		}
	}
}

func (w *wsConn) close() {
	close(w.done)
}

// logContext carries the upgrade request's ID into service calls made on the socket.
func logContext(c *websocket.Conn) context.Context {
	ctx := context.Background()
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		ctx = logging.WithLogger(ctx, slog.Default().With("request_id", rid))
	}
	return ctx
}

// OffsetWebSocketHandler serves live offset computations. Each text frame is an
// offset request; the reply is the result or an error object. Frames beyond the
// per-connection rate are answered with {"error":"rate_limited"}.
func OffsetWebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Debug("ws offset client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		conn := newWSConn(c)
		defer conn.close()

		limiter := rate.NewLimiter(rate.Limit(wsRatePerSec), wsBurst)
		ctx := logContext(c)

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			if !limiter.Allow() {
				_ = conn.writeJSON(wsErrorMessage{Error: "rate_limited"})
				continue
			}

			var req domain.OffsetRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				_ = conn.writeJSON(wsErrorMessage{Error: "bad_request", Message: "invalid JSON"})
				continue
			}

			res, err := deps.Offsets.Compute(ctx, req)
			if err != nil {
				code := domain.ErrorCode(err)
				message := err.Error()
				if code == "internal_error" {
					slog.Error("ws offset", "remote", remoteAddr, "error", err)
					message = "internal error"
				}
				_ = conn.writeJSON(wsErrorMessage{Error: code, Message: message})
				continue
			}
			if err := conn.writeJSON(res); err != nil {
				break
			}
		}

		slog.Debug("ws offset client disconnected", "remote", remoteAddr)
	}
}

// ZoneEventsWebSocketHandler relays zone created/deleted events from NATS to the client.
func ZoneEventsWebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		conn := newWSConn(c)
		defer conn.close()

		if nc == nil {
			_ = conn.writeJSON(wsErrorMessage{Error: "unavailable", Message: "event stream not configured"})
			return
		}

		sub, err := natsadapter.SubscribeZoneEvents(nc, func(data []byte) {
			_ = conn.writeRaw(data)
		})
		if err != nil {
			slog.Warn("ws zone events subscribe", "error", err)
			_ = conn.writeJSON(wsErrorMessage{Error: "unavailable", Message: "subscribe failed"})
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Client frames are ignored; reading detects disconnects.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}
}
