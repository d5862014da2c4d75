package realtime

import (
	"encoding/json"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"
)

// Socket event names, both directions. The wire frame is a JSON envelope
// {event, data}.
const (
	EventAuthenticate  = "authenticate"
	EventDirectMessage = "direct_message"
	EventGroupMessage  = "group_message"
	EventJoinGroup     = "join_group"
	EventLeaveGroup    = "leave_group"

	EventNewMessage  = "new_message"
	EventMessageSent = "message_sent"
	EventError       = "error"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type AuthenticatePayload struct {
	UserID string `json:"userId"`
}

type DirectMessagePayload struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

type GroupMessagePayload struct {
	GroupID string `json:"groupId"`
	Content string `json:"content"`
}

type JoinGroupPayload struct {
	GroupID string `json:"groupId"`
}

type LeaveGroupPayload struct {
	GroupID string `json:"groupId"`
}

// MessageBody is the wire form of a persisted message.
type MessageBody struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient,omitempty"`
	Group     string    `json:"group,omitempty"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	Language  string    `json:"language,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type MessagePayload struct {
	Type    domain.MessageKind `json:"type"`
	Message MessageBody        `json:"message"`
}

// ErrorPayload carries a machine-readable code next to the description so
// clients can branch without string-matching.
type ErrorPayload struct {
	Code    errors.Kind `json:"code"`
	Message string      `json:"message"`
}

func toMessageBody(m domain.Message) MessageBody {
	return MessageBody{
		ID:        m.ID.String(),
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Group:     m.Group,
		Content:   m.Content,
		Read:      m.Read,
		Language:  m.Language,
		CreatedAt: m.CreatedAt,
	}
}

func newEnvelope(event string, payload any) Envelope {
	data, err := json.Marshal(payload)
	if err != nil {
		// Payload types are all marshal-safe structs; this cannot fire at
		// runtime with valid inputs.
		panic(err)
	}
	return Envelope{Event: event, Data: data}
}

func messageEnvelope(event string, m domain.Message) Envelope {
	return newEnvelope(event, MessagePayload{Type: m.Kind, Message: toMessageBody(m)})
}

func errorEnvelope(err error) Envelope {
	return newEnvelope(EventError, ErrorPayload{Code: errors.KindOf(err), Message: err.Error()})
}
