package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"chat-relay/auth"
	"chat-relay/errors"
)

// Handler upgrades HTTP requests to websocket sessions and runs the
// per-connection event loop. Events of one connection are dispatched
// inline from its read loop, which gives the in-order processing guarantee
// per connection; different connections run concurrently.
type Handler struct {
	log        *slog.Logger
	router     *Router
	tokens     *auth.TokenManager
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewHandler(log *slog.Logger, router *Router, tokens *auth.TokenManager, bufferSize int) *Handler {
	return &Handler{
		log:    log,
		router: router,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		bufferSize: bufferSize,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	session := NewSession(ws, h.bufferSize, h.log)
	conn := NewConn(session)
	go session.WritePump()

	defer func() {
		h.router.Disconnect(conn)
		session.Close()
	}()

	// A valid bearer token on the handshake pre-authenticates the
	// connection; the authenticate event stays available either way.
	if userID, ok := h.handshakeUser(r); ok {
		if err := h.router.Authenticate(conn, userID); err != nil {
			session.Push(errorEnvelope(err))
		}
	}

	h.readLoop(conn, session, ws)
}

func (h *Handler) handshakeUser(r *http.Request) (string, bool) {
	raw := r.Header.Get("Authorization")
	if raw == "" {
		raw = r.URL.Query().Get("token")
	}
	raw = strings.TrimPrefix(raw, "Bearer ")
	if raw == "" {
		return "", false
	}
	claims, err := h.tokens.Validate(raw)
	if err != nil {
		h.log.Debug("handshake token rejected", "error", err)
		return "", false
	}
	return claims.UserID, true
}

func (h *Handler) readLoop(conn *Conn, session *Session, ws *websocket.Conn) {
	ws.SetReadLimit(64 * 1024)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				h.log.Warn("unexpected websocket close", "conn_id", conn.ID, "error", err)
			}
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			session.Push(errorEnvelope(errors.ErrInvalidPayload))
			continue
		}
		h.dispatch(conn, session, envelope)
	}
}

// dispatch routes one inbound event. Every failure becomes an error push
// to the originating connection; nothing crashes the connection or the
// process.
func (h *Handler) dispatch(conn *Conn, session *Session, envelope Envelope) {
	var err error
	switch envelope.Event {
	case EventAuthenticate:
		var payload AuthenticatePayload
		if err = decode(envelope.Data, &payload); err == nil {
			err = h.router.Authenticate(conn, payload.UserID)
		}
	case EventDirectMessage:
		var payload DirectMessagePayload
		if err = decode(envelope.Data, &payload); err == nil {
			err = h.router.DirectMessage(conn, payload.RecipientID, payload.Content)
		}
	case EventGroupMessage:
		var payload GroupMessagePayload
		if err = decode(envelope.Data, &payload); err == nil {
			err = h.router.GroupMessage(conn, payload.GroupID, payload.Content)
		}
	case EventJoinGroup:
		var payload JoinGroupPayload
		if err = decode(envelope.Data, &payload); err == nil {
			err = h.router.JoinGroup(conn, payload.GroupID)
		}
	case EventLeaveGroup:
		var payload LeaveGroupPayload
		if err = decode(envelope.Data, &payload); err == nil {
			h.router.LeaveGroup(conn, payload.GroupID)
		}
	default:
		err = fmt.Errorf("%w: unknown event %q", errors.ErrInvalidPayload, envelope.Event)
	}

	if err != nil {
		h.log.Info("event failed",
			"event", envelope.Event,
			"conn_id", conn.ID,
			"code", errors.KindOf(err),
			"error", err)
		session.Push(errorEnvelope(err))
	}
}

func decode(data json.RawMessage, payload any) error {
	if len(data) == 0 {
		return errors.ErrInvalidPayload
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}
