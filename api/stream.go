package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/aouyang1/immichslideshow/slideshow"
)

const subscriberBuffer = 8

// Hub keeps the latest slideshow snapshot and fans it out to websocket subscribers. It
// implements slideshow.Publisher.
type Hub struct {
	mu     sync.RWMutex
	latest slideshow.Snapshot
	has    bool
	subs   map[chan slideshow.Snapshot]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan slideshow.Snapshot]struct{})}
}

// Publish never blocks. Slow subscribers miss snapshots. A snapshot without HTML keeps the
// surface of the latest one.
func (h *Hub) Publish(snap slideshow.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	latest := snap
	if latest.HTML == "" {
		latest.HTML = h.latest.HTML
	}
	h.latest = latest
	h.has = true
	for ch := range h.subs {
		select {
		case ch <- snap:
		default:
			slog.Debug("dropping snapshot for slow subscriber", "sequence", snap.Sequence)
		}
	}
}

func (h *Hub) Latest() (slideshow.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.has
}

func (h *Hub) Subscribe() chan slideshow.Snapshot {
	ch := make(chan slideshow.Snapshot, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan slideshow.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; !ok {
		return
	}
	delete(h.subs, ch)
	close(ch)
}

func (ws *WebServer) handleStream(c *gin.Context) {
	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	// Subscribe to snapshot changes
	updates := ws.hub.Subscribe()
	defer ws.hub.Unsubscribe(updates)

	// the client only sends close frames
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				ws.hub.Unsubscribe(updates)
				return
			}
		}
	}()

	// Send initial snapshot
	if current, ok := ws.hub.Latest(); ok {
		if err := conn.WriteJSON(current); err != nil {
			slog.Debug("websocket write error", "error", err)
			return
		}
	}

	// Stream updates
	for snap := range updates {
		if err := conn.WriteJSON(snap); err != nil {
			slog.Debug("websocket write error", "error", err)
			return
		}
	}
}

func (ws *WebServer) handleSurface(c *gin.Context) {
	snap, ok := ws.hub.Latest()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(snap.HTML))
}
