package repositories

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
)

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func directAt(sender, recipient, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Sender:    sender,
		Recipient: recipient,
		Content:   content,
		Kind:      domain.MessageDirect,
		CreatedAt: at,
	}
}

func groupAt(sender, groupID, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Sender:    sender,
		Group:     groupID,
		Content:   content,
		Kind:      domain.MessageGroup,
		CreatedAt: at,
	}
}

func TestMessageRepository_Conversation(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), discardLogger(), nil)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Given three messages exchanged in both directions
	req.NoError(repo.Store(directAt("alice", "bob", "first", base)))
	req.NoError(repo.Store(directAt("bob", "alice", "second", base.Add(time.Second))))
	req.NoError(repo.Store(directAt("alice", "bob", "third", base.Add(2*time.Second))))

	// When reading the conversation, from either side
	messages, cursor, err := repo.Conversation("alice", "bob", nil)
	req.NoError(err)
	mirrored, _, err := repo.Conversation("bob", "alice", nil)
	req.NoError(err)

	// Then both directions land in the same scope, newest first, and an
	// unlimited read has no next page
	contents := lo.Map(messages, func(m domain.Message, _ int) string { return m.Content })
	req.Equal([]string{"third", "second", "first"}, contents)
	req.Len(mirrored, 3)
	req.Nil(cursor)
}

func TestMessageRepository_Conversation_Pagination(t *testing.T) {
	req := require.New(t)
	limit := 2
	repo := NewMessageRepository(newTestDB(t), discardLogger(), &limit)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, content := range []string{"m1", "m2", "m3", "m4", "m5"} {
		req.NoError(repo.Store(directAt("alice", "bob", content, base.Add(time.Duration(i)*time.Second))))
	}

	// When paging through the conversation
	page1, cursor1, err := repo.Conversation("alice", "bob", nil)
	req.NoError(err)
	req.NotNil(cursor1)
	page2, cursor2, err := repo.Conversation("alice", "bob", cursor1)
	req.NoError(err)
	req.NotNil(cursor2)
	page3, cursor3, err := repo.Conversation("alice", "bob", cursor2)
	req.NoError(err)

	// Then pages walk backwards in time without overlap and the short
	// final page carries no cursor
	contents := func(messages []domain.Message) []string {
		return lo.Map(messages, func(m domain.Message, _ int) string { return m.Content })
	}
	req.Equal([]string{"m5", "m4"}, contents(page1))
	req.Equal([]string{"m3", "m2"}, contents(page2))
	req.Equal([]string{"m1"}, contents(page3))
	req.Nil(cursor3)
}

func TestMessageRepository_Conversation_Empty_Scope_Has_No_Cursor(t *testing.T) {
	req := require.New(t)
	limit := 2
	repo := NewMessageRepository(newTestDB(t), discardLogger(), &limit)

	messages, cursor, err := repo.Conversation("alice", "bob", nil)

	req.NoError(err)
	req.Empty(messages)
	req.Nil(cursor)
}

func TestMessageRepository_GroupHistory_Is_Isolated(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), discardLogger(), nil)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Given traffic in a group, in another group, and in a direct exchange
	req.NoError(repo.Store(groupAt("alice", "dev", "deploy done", base)))
	req.NoError(repo.Store(groupAt("bob", "ops", "disk alert", base.Add(time.Second))))
	req.NoError(repo.Store(directAt("alice", "bob", "lunch?", base.Add(2*time.Second))))

	// When reading one group's history
	messages, _, err := repo.GroupHistory("dev", nil)

	// Then only that group's messages come back
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("deploy done", messages[0].Content)
}

func TestMessageRepository_Store_Rejects_Invalid_Message(t *testing.T) {
	repo := NewMessageRepository(newTestDB(t), discardLogger(), nil)

	err := repo.Store(domain.Message{
		ID:        uuid.New(),
		Sender:    "alice",
		Recipient: "bob",
		Group:     "dev",
		Content:   "both targets",
		CreatedAt: time.Now().UTC(),
	})

	require.Error(t, err)
}

func TestMessageRepository_MarkConversationRead(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), discardLogger(), nil)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Given two unread messages towards bob and one towards alice
	req.NoError(repo.Store(directAt("alice", "bob", "one", base)))
	req.NoError(repo.Store(directAt("alice", "bob", "two", base.Add(time.Second))))
	req.NoError(repo.Store(directAt("bob", "alice", "reply", base.Add(2*time.Second))))

	// When bob marks the conversation read
	updated, err := repo.MarkConversationRead("bob", "alice")

	// Then only the messages bob received flip
	req.NoError(err)
	req.Equal(2, updated)

	messages, _, err := repo.Conversation("alice", "bob", nil)
	req.NoError(err)
	for _, m := range messages {
		req.Equal(m.Recipient == "bob", m.Read)
	}

	// And a second pass finds nothing left to update
	updated, err = repo.MarkConversationRead("bob", "alice")
	req.NoError(err)
	req.Equal(0, updated)
}
