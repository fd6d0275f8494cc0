package graphview

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Surface is one live rendering surface instance. Post never blocks and
// never reports delivery; a closed surface silently drops everything.
type Surface interface {
	Post(msg OutboundMessage)
	Alive() bool
	Close()
}

// wsSurface adapts a WebSocket connection to the Surface interface. A single
// writer goroutine owns the connection; Post hands frames to it through a
// buffered channel and drops them when the buffer is full or the surface is
// closed.
type wsSurface struct {
	id     string
	conn   *websocket.Conn
	send   chan OutboundMessage
	done   chan struct{}
	closed atomic.Bool
	logger *slog.Logger
}

// NewSurface wraps an upgraded WebSocket connection and starts its writer.
func NewSurface(conn *websocket.Conn, logger *slog.Logger) Surface {
	s := &wsSurface{
		id:     uuid.New().String(),
		conn:   conn,
		send:   make(chan OutboundMessage, 64),
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.writeLoop()
	logger.Info("surface: connected", slog.String("surface_id", s.id))
	return s
}

func (s *wsSurface) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.send:
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Debug("surface: write failed",
					slog.String("surface_id", s.id),
					slog.String("error", err.Error()))
				s.Close()
				return
			}
		}
	}
}

// Post queues a frame for delivery. Frames posted after Close, or while the
// send buffer is full, are dropped.
func (s *wsSurface) Post(msg OutboundMessage) {
	if s.closed.Load() {
		return
	}
	select {
	case s.send <- msg:
	case <-s.done:
	default:
		// Buffer full; skip rather than block the caller.
	}
}

// Alive reports whether the surface can still accept frames.
func (s *wsSurface) Alive() bool {
	return !s.closed.Load()
}

// Close tears the surface down. Idempotent.
func (s *wsSurface) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.done)
		_ = s.conn.Close()
		s.logger.Info("surface: closed", slog.String("surface_id", s.id))
	}
}
