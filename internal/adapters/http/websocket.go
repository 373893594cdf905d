package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/openroute/internal/adapters/nats"
	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/usecases"
	"github.com/samirrijal/openroute/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// wsSessionMessage is sent from client to drive a session.
type wsSessionMessage struct {
	Action  string  `json:"action"`  // "select" | "click"
	ID      string  `json:"id"`      // select: suggestion id
	Surface string  `json:"surface"` // select: chip | card | map | api (default)
	Lat     float64 `json:"lat"`     // click
	Lon     float64 `json:"lon"`     // click
}

// wsEventsMessage is sent from client to subscribe/unsubscribe to session events.
type wsEventsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Session string `json:"session"` // session id filter ("" = all sessions)
}

// wsWriter serialises writes to a connection.
type wsWriter struct {
	mu sync.Mutex
	c  *websocket.Conn
}

func (w *wsWriter) json(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.write(websocket.TextMessage, data)
}

func (w *wsWriter) write(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteMessage(messageType, data)
}

// keepAlive pings until done is closed or a write fails.
func (w *wsWriter) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := w.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// SessionWebSocketHandler streams the view of one session: the current view
// on connect and a new one after every settled change. Clients may send
// {"action":"select","id":"...","surface":"chip"} or
// {"action":"click","lat":48.1,"lon":11.5}.
func SessionWebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		w := &wsWriter{c: c}
		id := c.Params("id")
		s, err := deps.Sessions.Get(id)
		if err != nil {
			_ = w.json(map[string]string{"error": err.Error()})
			return
		}
		slog.Info("ws session client connected", "session", id, "remote", c.RemoteAddr().String())

		// Views are handed to a writer goroutine; a slow client only ever
		// misses intermediate views, never the latest one.
		views := make(chan usecases.SessionView, 1)
		push := func(v usecases.SessionView) {
			for {
				select {
				case views <- v:
					return
				default:
				}
				select {
				case <-views:
				default:
				}
			}
		}
		unsub := s.Subscribe(push)
		push(s.View())

		done := make(chan struct{})
		go w.keepAlive(done)
		go func() {
			for {
				select {
				case v := <-views:
					if err := w.json(v); err != nil {
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
			s.Touch(time.Now())

			var m wsSessionMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = w.json(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "select":
				surface := m.Surface
				if surface == "" {
					surface = usecases.SurfaceAPI
				}
				if !selectSurfaces[surface] {
					_ = w.json(map[string]string{"error": "unknown surface: " + surface})
					continue
				}
				if changed, _ := s.Select(context.Background(), surface, m.ID); !changed {
					_ = w.json(map[string]any{"status": "unchanged", "id": m.ID})
				}
			case "click":
				p := domain.GeoPoint{Lat: m.Lat, Lon: m.Lon}
				if !p.Valid() {
					_ = w.json(map[string]string{"error": "coordinate out of range"})
					continue
				}
				if changed, _ := s.ClickMap(context.Background(), p); !changed {
					_ = w.json(map[string]any{"status": "no route selected"})
				}
			default:
				_ = w.json(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		unsub()
		close(done)
		slog.Info("ws session client disconnected", "session", id)
	}
}

// EventsWebSocketHandler relays session events published on NATS to
// connected clients. All sessions are relayed by default; clients send
// {"action":"subscribe","session":"<id>"} to add a per-session feed.
func EventsWebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		w := &wsWriter{c: c}
		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws events client connected", "remote", remoteAddr)

		subs := make(map[string]*nats.Subscription) // subject -> subscription
		relay := func(msg *nats.Msg) {
			_ = w.json(map[string]any{
				"subject": msg.Subject,
				"event":   json.RawMessage(msg.Data),
			})
		}

		sub, err := nc.Subscribe(natsadapter.SubjectAll, relay)
		if err != nil {
			slog.Warn("ws default subscribe", "error", err)
			return
		}
		subs[natsadapter.SubjectAll] = sub

		done := make(chan struct{})
		go w.keepAlive(done)

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsEventsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = w.json(map[string]string{"error": "invalid JSON"})
				continue
			}
			subject := natsadapter.SessionSubjects(m.Session)

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = w.json(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = w.json(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = w.json(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = w.json(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = w.json(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = w.json(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws events client disconnected", "remote", remoteAddr)
	}
}
