//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"chat-relay/domain"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	Conversation(userA, userB string, cursor *string) ([]domain.Message, *string, error)
	GroupHistory(groupID string, cursor *string) ([]domain.Message, *string, error)
	MarkConversationRead(owner, peer string) (int, error)
}

// MessageRepository persists messages in BadgerDB.
// The key is formatted as "msg:{scope}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the UUID as a collision disconnector if
//     two messages arrive at the same nanosecond.
//
// The scope isolates one conversation or one group per prefix.
type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) *MessageRepository {
	return &MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// conversationScope is symmetric: both directions of a direct exchange
// land under the same prefix.
func conversationScope(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("dm:%s:%s", userA, userB)
}

func groupScope(groupID string) string {
	return "grp:" + groupID
}

func (m *MessageRepository) scopeOf(message domain.Message) string {
	if message.Kind == domain.MessageGroup {
		return groupScope(message.Group)
	}
	return conversationScope(message.Sender, message.Recipient)
}

func (m *MessageRepository) Store(message domain.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	key := fmt.Sprintf("msg:%s:%019d:%s",
		m.scopeOf(message),
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (m *MessageRepository) Conversation(userA, userB string, cursor *string) ([]domain.Message, *string, error) {
	return m.scan(conversationScope(userA, userB), cursor)
}

func (m *MessageRepository) GroupHistory(groupID string, cursor *string) ([]domain.Message, *string, error) {
	return m.scan(groupScope(groupID), cursor)
}

// scan retrieves messages for a scope using a reverse prefix scan, newest
// first. Thanks to the padded timestamp in the key, ordering is free. It
// stops once the configured limitMessages is reached and returns the last
// key suffix as the cursor for the next page; a nil cursor means the page
// was not full and there is nothing older to fetch.
func (m *MessageRepository) scan(scope string, cursor *string) ([]domain.Message, *string, error) {
	var messages []domain.Message
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", scope)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible timestamp, then walk back.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			// Memorize the cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				var message domain.Message
				if err := json.Unmarshal(value, &message); err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if m.limitMessages == nil || len(messages) < *m.limitMessages {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}

// MarkConversationRead flips the read flag on every message the owner
// received from the peer and reports how many were updated.
func (m *MessageRepository) MarkConversationRead(owner, peer string) (int, error) {
	updated := 0
	err := m.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", conversationScope(owner, peer)))
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			var message domain.Message
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &message)
			})
			if err != nil {
				return err
			}
			if message.Recipient != owner || message.Read {
				continue
			}
			message.Read = true
			data, err := json.Marshal(message)
			if err != nil {
				return err
			}
			if err := txn.Set(key, data); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
