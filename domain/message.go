// Package domain contains core concepts of the messaging system.
// Messages are immutable once persisted and validated by the domain.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"chat-relay/errors"
)

type MessageKind string

const (
	MessageDirect MessageKind = "direct"
	MessageGroup  MessageKind = "group"
)

// Message represents one persisted chat event. Exactly one of Recipient
// and Group is set, matching the Kind.
type Message struct {
	ID        uuid.UUID
	Sender    string
	Recipient string
	Group     string
	Content   string
	Kind      MessageKind
	Read      bool
	Language  string // ISO 639-1 code, best effort
	CreatedAt time.Time
}

func NewDirectMessage(sender, recipient, content string) (Message, error) {
	m := Message{
		ID:        uuid.New(),
		Sender:    sender,
		Recipient: recipient,
		Content:   content,
		Kind:      MessageDirect,
		CreatedAt: time.Now().UTC(),
	}
	return m, m.Validate()
}

func NewGroupMessage(sender, groupID, content string) (Message, error) {
	m := Message{
		ID:        uuid.New(),
		Sender:    sender,
		Group:     groupID,
		Content:   content,
		Kind:      MessageGroup,
		CreatedAt: time.Now().UTC(),
	}
	return m, m.Validate()
}

// Validate enforces the target invariant before persistence: non-empty
// content and exactly one of recipient/group.
func (m Message) Validate() error {
	if strings.TrimSpace(m.Content) == "" {
		return errors.ErrEmptyContent
	}
	hasRecipient := m.Recipient != ""
	hasGroup := m.Group != ""
	if hasRecipient == hasGroup {
		return errors.ErrAmbiguousTarget
	}
	return nil
}
