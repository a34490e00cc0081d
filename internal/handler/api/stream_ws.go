package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"CrediScan/internal/domain/models"
	"CrediScan/internal/service/metrics"
	xlogger "CrediScan/pkg/logger"
)

const (
	streamSendBuffer = 16
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingEvery  = 50 * time.Second
)

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// StreamHub pushes every completed analysis to connected WebSocket clients.
// Slow clients lose messages instead of blocking the analysis path.
type StreamHub struct {
	logger   *xlogger.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

func NewStreamHub(logger *xlogger.Logger) *StreamHub {
	metrics.Register()
	return &StreamHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

func (h *StreamHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/analyses", h.Subscribe)
}

// Subscribe upgrades the request and streams analyses until the client goes away.
func (h *StreamHub) Subscribe(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already wrote the HTTP error
		h.logger.Warn("websocket upgrade", xlogger.Error(err))
		return nil
	}
	s := &subscriber{conn: conn, send: make(chan []byte, streamSendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	metrics.StreamClients.Inc()

	go h.writeLoop(s)
	h.readLoop(s)
	return nil
}

// Broadcast implements usecase.Broadcaster.
func (h *StreamHub) Broadcast(r *models.AnalysisResult) {
	b, err := json.Marshal(r)
	if err != nil {
		h.logger.Error("encode analysis for stream", xlogger.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.send <- b:
			metrics.StreamMessages.WithLabelValues("sent").Inc()
		default:
			metrics.StreamMessages.WithLabelValues("dropped").Inc()
		}
	}
}

// Clients returns the number of connected subscribers.
func (h *StreamHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber and refuses new ones.
func (h *StreamHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.subs {
		h.dropLocked(s)
	}
	return nil
}

func (h *StreamHub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(s)
}

func (h *StreamHub) dropLocked(s *subscriber) {
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.send)
	metrics.StreamClients.Dec()
}

// readLoop discards client frames; it exists to process pongs and notice disconnects.
func (h *StreamHub) readLoop(s *subscriber) {
	defer h.remove(s)
	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHub) writeLoop(s *subscriber) {
	ticker := time.NewTicker(streamPingEvery)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
