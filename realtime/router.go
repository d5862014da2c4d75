// Package realtime implements the live delivery core: connection
// authentication, presence bookkeeping, room subscriptions, and the
// persist-then-fan-out routing of direct and group messages.
package realtime

import (
	"fmt"
	"log/slog"

	"github.com/abadojack/whatlanggo"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/repositories"
)

// Router validates inbound socket events, persists the resulting message,
// and resolves the delivery target: the recipient's registered connections
// for direct messages, the subscribed room for group messages.
//
// Persistence always precedes any push (durability precedes visibility);
// pushes after a successful store are best-effort and never retried.
type Router struct {
	log       *slog.Logger
	registry  *Registry
	users     repositories.IUserRepository
	groups    repositories.IGroupRepository
	messages  repositories.IMessageRepository
	index     *repositories.SearchIndex
	moderator *moderation.Moderator
}

func NewRouter(log *slog.Logger, registry *Registry,
	users repositories.IUserRepository,
	groups repositories.IGroupRepository,
	messages repositories.IMessageRepository) *Router {
	return &Router{
		log:      log,
		registry: registry,
		users:    users,
		groups:   groups,
		messages: messages,
	}
}

// WithSearchIndex enables best-effort indexing of delivered messages.
func (r *Router) WithSearchIndex(index *repositories.SearchIndex) *Router {
	r.index = index
	return r
}

// WithModerator enables content censoring before persistence.
func (r *Router) WithModerator(moderator *moderation.Moderator) *Router {
	r.moderator = moderator
	return r
}

// Authenticate attaches a user identity to the connection, registers it in
// the presence registry, and joins the per-user private room. Repeating
// the call with the same identity is idempotent. On failure the connection
// stays open and unauthenticated so the caller may retry.
func (r *Router) Authenticate(c *Conn, userID string) error {
	if _, err := r.users.GetByID(userID); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrUnknownUser, userID)
	}
	if err := c.bind(userID); err != nil {
		return err
	}

	r.registry.Register(userID, c)
	r.registry.Join(c, domain.RoomForUser(userID))
	r.log.Debug("connection authenticated", "user_id", userID, "conn_id", c.ID)
	return nil
}

// JoinGroup subscribes an authenticated connection to a group's room after
// checking current membership. Idempotent if already joined.
func (r *Router) JoinGroup(c *Conn, groupID string) error {
	userID := c.UserID()
	if userID == "" {
		return errors.ErrNotAuthenticated
	}
	if err := r.authorizeMember(userID, groupID); err != nil {
		return err
	}

	r.registry.Join(c, domain.RoomForGroup(groupID))
	r.log.Debug("joined group room", "user_id", userID, "group_id", groupID)
	return nil
}

// LeaveGroup unsubscribes unconditionally: leaving is always safe, no
// membership check needed. Idempotent if not joined.
func (r *Router) LeaveGroup(c *Conn, groupID string) {
	r.registry.Leave(c, domain.RoomForGroup(groupID))
}

// DirectMessage persists a direct message and pushes it to every live
// connection of the recipient, then acknowledges the sender. An offline
// recipient is not an error: the message is durably stored for the REST
// read path.
func (r *Router) DirectMessage(c *Conn, recipientID, content string) error {
	sender := c.UserID()
	if sender == "" {
		return errors.ErrNotAuthenticated
	}

	message, err := domain.NewDirectMessage(sender, recipientID, r.sanitize(content))
	if err != nil {
		return err
	}
	message.Language = detectLanguage(message.Content)

	if err := r.messages.Store(message); err != nil {
		return err
	}
	r.indexMessage(message)

	pushed := 0
	for _, rc := range r.registry.ConnectionsFor(recipientID) {
		rc.Push(messageEnvelope(EventNewMessage, message))
		pushed++
	}
	c.Push(messageEnvelope(EventMessageSent, message))

	r.log.Debug("direct message delivered",
		"message_id", message.ID,
		"sender", sender,
		"recipient", recipientID,
		"live_pushes", pushed)
	return nil
}

// GroupMessage authorizes the sender against persisted membership,
// persists the message, and broadcasts it to every connection subscribed
// to the group's room. The sender's own connection receives the broadcast
// too when it has joined the room; broadcast is not sender-excluding.
func (r *Router) GroupMessage(c *Conn, groupID, content string) error {
	sender := c.UserID()
	if sender == "" {
		return errors.ErrNotAuthenticated
	}
	if err := r.authorizeMember(sender, groupID); err != nil {
		return err
	}

	message, err := domain.NewGroupMessage(sender, groupID, r.sanitize(content))
	if err != nil {
		return err
	}
	message.Language = detectLanguage(message.Content)

	if err := r.messages.Store(message); err != nil {
		return err
	}
	r.indexMessage(message)

	subscribers := r.registry.RoomConnections(domain.RoomForGroup(groupID))
	for _, rc := range subscribers {
		rc.Push(messageEnvelope(EventNewMessage, message))
	}

	r.log.Debug("group message broadcast",
		"message_id", message.ID,
		"sender", sender,
		"group_id", groupID,
		"live_pushes", len(subscribers))
	return nil
}

// Disconnect releases all registry state held by the connection. No
// persisted state changes.
func (r *Router) Disconnect(c *Conn) {
	userID := c.UserID()
	r.registry.Unregister(userID, c)
	if userID != "" {
		r.log.Debug("connection closed", "user_id", userID, "conn_id", c.ID)
	}
}

func (r *Router) authorizeMember(userID, groupID string) error {
	group, err := r.groups.GetByID(groupID)
	if err != nil {
		return err
	}
	if !group.IsMember(userID) {
		return fmt.Errorf("%w: %s in group %s", errors.ErrUserNotInGroup, userID, groupID)
	}
	return nil
}

func (r *Router) sanitize(content string) string {
	if r.moderator == nil {
		return content
	}
	sanitized, found := r.moderator.Censor(content)
	if len(found) > 0 {
		r.log.Warn("censored message content", "words", len(found))
	}
	return sanitized
}

func (r *Router) indexMessage(message domain.Message) {
	if r.index == nil {
		return
	}
	if err := r.index.Index(message); err != nil {
		r.log.Warn("failed to index message", "message_id", message.ID, "error", err)
	}
}

func detectLanguage(content string) string {
	info := whatlanggo.Detect(content)
	return info.Lang.Iso6391()
}
