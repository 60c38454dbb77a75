package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/zonemap/internal/adapters/nats"
	"github.com/samirrijal/zonemap/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe" | "render"
	Channel string `json:"channel"` // "zones" | "session"
}

// wsEvent wraps a relayed NATS message.
type wsEvent struct {
	Type    string          `json:"type"`
	Subject string          `json:"subject,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Payload any             `json:"payload,omitempty"`
}

// renderFrame is the body of GET /v1/render.
func renderFrame(deps *Dependencies) map[string]any {
	return map[string]any{
		"session": deps.Session.State(),
		"zones":   deps.Session.Render(),
	}
}

var wsChannels = map[string]string{
	"zones":   natsadapter.SubjectZones,
	"session": natsadapter.SubjectSession,
}

// WebSocketHandler returns a handler that upgrades to WebSocket, sends the
// current map frame, and relays zone and session events from NATS so the map
// can redraw. Clients send JSON: {"action":"unsubscribe","channel":"session"}
// or {"action":"render"} to request a fresh frame.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		sendFrame := func() error {
			return writeJSON(wsEvent{Type: "render", Payload: renderFrame(deps)})
		}
		subscribe := func(subject string) error {
			if deps.NATS == nil {
				return nats.ErrConnectionClosed
			}
			s, err := deps.NATS.Subscribe(subject, func(msg *nats.Msg) {
				_ = writeJSON(wsEvent{Type: "event", Subject: msg.Subject, Data: msg.Data})
			})
			if err != nil {
				return err
			}
			subs[subject] = s
			return nil
		}

		if err := sendFrame(); err != nil {
			return
		}

		// Auto-subscribe to every channel by default
		for _, subject := range wsChannels {
			if err := subscribe(subject); err != nil {
				slog.Warn("ws default subscribe failed", "subject", subject, "error", err)
			}
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read client messages for subscribe/unsubscribe
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			if m.Action == "render" {
				_ = sendFrame()
				continue
			}

			subject, ok := wsChannels[m.Channel]
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				if err := subscribe(subject); err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
