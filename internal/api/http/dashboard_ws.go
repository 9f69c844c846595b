package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/service"
)

const (
	clientSendBuffer = 4
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = pongWait * 9 / 10
)

// EventSource is the subscribing side of the change-event bus.
type EventSource interface {
	Subscribe() (<-chan domain.ChangeEvent, func())
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// DashboardHub pushes a fresh dashboard snapshot to every connected staff
// client after each burst of change events.
type DashboardHub struct {
	dashboardSvc service.DashboardService
	events       EventSource
	window       time.Duration
	upgrader     websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func NewDashboardHub(dashboardSvc service.DashboardService, events EventSource, window time.Duration, allowedOrigins []string) *DashboardHub {
	h := &DashboardHub{
		dashboardSvc: dashboardSvc,
		events:       events,
		window:       window,
		clients:      make(map[*wsClient]struct{}),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	return h
}

// originChecker allows any origin when the list is empty. Requests without an
// Origin header come from non-browser clients and are allowed.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimSpace(a), origin) {
				return true
			}
		}
		logger.Warn("Rejected websocket origin", "origin", origin)
		return false
	}
}

// Run coalesces change events into one snapshot per window until ctx is done.
func (h *DashboardHub) Run(ctx context.Context) {
	events, cancel := h.events.Subscribe()
	defer cancel()
	defer h.closeAll()

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending int
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			pending++
			logger.Debug("Dashboard change", "type", evt.Type, "subject", evt.SubjectID)
			if timer == nil {
				timer = time.NewTimer(h.window)
				timerCh = timer.C
			}
		case <-timerCh:
			timer, timerCh = nil, nil
			logger.Debug("Pushing dashboard snapshot", "events", pending, "clients", h.Clients())
			pending = 0
			h.push(ctx)
		}
	}
}

func (h *DashboardHub) snapshotMessage(ctx context.Context) ([]byte, error) {
	snap, err := h.dashboardSvc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

func (h *DashboardHub) push(ctx context.Context) {
	if h.Clients() == 0 {
		return
	}
	msg, err := h.snapshotMessage(ctx)
	if err != nil {
		logger.Error("Failed to build dashboard snapshot", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			logger.Warn("Dropping slow dashboard client")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Clients reports how many staff clients are connected.
func (h *DashboardHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *DashboardHub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *DashboardHub) unregister(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *DashboardHub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ServeWS upgrades the request, sends the current snapshot and then streams
// updates until the client goes away.
func (h *DashboardHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	initial, err := h.snapshotMessage(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Failed to upgrade websocket", "error", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, clientSendBuffer)}
	c.send <- initial
	h.register(c)
	logger.Info("Dashboard client connected", "staff", sessionFrom(r).Email, "clients", h.Clients())

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages and detects disconnects.
func (h *DashboardHub) readPump(c *wsClient) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		logger.Info("Dashboard client disconnected", "clients", h.Clients())
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Dashboard websocket error", "error", err)
			}
			return
		}
	}
}

func (h *DashboardHub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("Dashboard write failed", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
