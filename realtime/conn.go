package realtime

import (
	"sync"

	"github.com/google/uuid"

	"chat-relay/errors"
)

// EventSink delivers outbound envelopes to one live connection.
// Implementations must be safe for concurrent use and must not block the
// caller: push delivery is best-effort.
type EventSink interface {
	Push(e Envelope)
}

// Conn is the server-side state of one transport-level link: a unique id,
// the sink to reach it, and the user identity once authenticated.
type Conn struct {
	ID   uuid.UUID
	sink EventSink

	mu     sync.Mutex
	userID string
}

func NewConn(sink EventSink) *Conn {
	return &Conn{ID: uuid.New(), sink: sink}
}

// UserID returns the authenticated identity, or "" while unauthenticated.
func (c *Conn) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// bind attaches the identity. Rebinding to the same identity is a no-op so
// repeated authenticate events stay idempotent; switching identities on a
// live connection is refused.
func (c *Conn) bind(userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID != "" && c.userID != userID {
		return errors.ErrAlreadyBound
	}
	c.userID = userID
	return nil
}

func (c *Conn) Push(e Envelope) {
	c.sink.Push(e)
}
