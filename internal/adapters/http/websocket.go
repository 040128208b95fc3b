package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/strollcast/strollcast/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "tours" | "metrics" | "feedback" (default: tours)
	TourID  string `json:"tour_id"` // metrics filter for a single tour (optional)
}

// wsClient tracks one WebSocket connection and its NATS subscriptions.
type wsClient struct {
	conn *websocket.Conn
	nc   *nats.Conn

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

func (w *wsClient) send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *wsClient) sendStatus(kv ...string) {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	_ = w.send(m)
}

func (w *wsClient) subscribe(subject string) {
	if _, exists := w.subs[subject]; exists {
		w.sendStatus("status", "already subscribed", "subject", subject)
		return
	}
	s, err := w.nc.Subscribe(subject, func(msg *nats.Msg) {
		_ = w.send(json.RawMessage(msg.Data))
	})
	if err != nil {
		w.sendStatus("error", "subscribe failed: "+err.Error())
		return
	}
	w.subs[subject] = s
	w.sendStatus("status", "subscribed", "subject", subject)
}

func (w *wsClient) unsubscribe(subject string) {
	s, exists := w.subs[subject]
	if !exists {
		w.sendStatus("error", "not subscribed to "+subject)
		return
	}
	_ = s.Unsubscribe()
	delete(w.subs, subject)
	w.sendStatus("status", "unsubscribed", "subject", subject)
}

func (w *wsClient) close() {
	for _, s := range w.subs {
		_ = s.Unsubscribe()
	}
}

// subjectFor maps a client channel request onto a NATS subject.
func subjectFor(m wsMessage) (string, bool) {
	channel := m.Channel
	if channel == "" {
		channel = "tours"
	}
	switch channel {
	case "tours":
		return "tours.published.>", true
	case "metrics":
		if m.TourID != "" {
			return "tours.metrics." + m.TourID, true
		}
		return "tours.metrics.>", true
	case "feedback":
		return "feedback.created", true
	}
	return "", false
}

// WebSocketHandler upgrades to WebSocket and relays real-time NATS events.
// Clients send JSON: {"action":"subscribe","channel":"metrics","tour_id":"..."}.
// An empty tour_id means all tours; every client starts on the broadcast feed.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		client := &wsClient{
			conn: c,
			nc:   nc,
			subs: make(map[string]*nats.Subscription),
		}
		defer client.close()

		client.subscribe("tours.updates.broadcast")

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					client.mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					client.mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				client.sendStatus("error", "invalid JSON")
				continue
			}

			subject, ok := subjectFor(m)
			if !ok {
				client.sendStatus("error", "unknown channel: "+m.Channel)
				continue
			}

			switch m.Action {
			case "subscribe":
				client.subscribe(subject)
			case "unsubscribe":
				client.unsubscribe(subject)
			default:
				client.sendStatus("error", "unknown action: "+m.Action)
			}
		}

		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
