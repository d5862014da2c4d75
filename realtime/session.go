package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Session owns the websocket side of one connection: a buffered outbound
// queue drained by the write pump. Push never blocks the delivery path; a
// full queue drops the envelope, matching best-effort live delivery (the
// message itself is already persisted).
type Session struct {
	ws   *websocket.Conn
	send chan Envelope
	log  *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func NewSession(ws *websocket.Conn, bufferSize int, log *slog.Logger) *Session {
	return &Session{
		ws:   ws,
		send: make(chan Envelope, bufferSize),
		log:  log,
		done: make(chan struct{}),
	}
}

// Push queues an envelope for the write pump.
func (s *Session) Push(e Envelope) {
	select {
	case s.send <- e:
	case <-s.done:
	default:
		s.log.Warn("send buffer full, dropping envelope", "event", e.Event)
	}
}

// Close stops the write pump. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// WritePump serializes all writes to the websocket and keeps the
// connection alive with periodic pings. Must run in its own goroutine; it
// exits when Close is called or a write fails.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.ws.Close()
	}()

	for {
		select {
		case e := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteJSON(e); err != nil {
				s.log.Debug("write failed, closing session", "error", err)
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.ws.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}
