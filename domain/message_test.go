package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/errors"
)

func TestMessage_Validate(t *testing.T) {
	t.Run("should accept a direct message with a recipient only", func(t *testing.T) {
		req := require.New(t)

		m, err := NewDirectMessage("alice", "bob", "hello")

		req.NoError(err)
		req.Equal(MessageDirect, m.Kind)
		req.NotEqual("", m.ID.String())
		req.False(m.CreatedAt.IsZero())
	})

	t.Run("should accept a group message with a group only", func(t *testing.T) {
		req := require.New(t)

		m, err := NewGroupMessage("alice", "g1", "hello all")

		req.NoError(err)
		req.Equal(MessageGroup, m.Kind)
	})

	t.Run("should reject empty content", func(t *testing.T) {
		_, err := NewDirectMessage("alice", "bob", "")
		require.ErrorIs(t, err, errors.ErrEmptyContent)
	})

	t.Run("should reject whitespace-only content", func(t *testing.T) {
		_, err := NewGroupMessage("alice", "g1", " \t\n ")
		require.ErrorIs(t, err, errors.ErrEmptyContent)
	})

	t.Run("should reject a message with both targets", func(t *testing.T) {
		m := Message{Sender: "alice", Recipient: "bob", Group: "g1", Content: "hi"}
		require.ErrorIs(t, m.Validate(), errors.ErrAmbiguousTarget)
	})

	t.Run("should reject a message with no target", func(t *testing.T) {
		m := Message{Sender: "alice", Content: "hi"}
		require.ErrorIs(t, m.Validate(), errors.ErrAmbiguousTarget)
	})
}

func TestGroup_IsMember(t *testing.T) {
	req := require.New(t)
	group := Group{ID: "g1", Members: []string{"alice", "bob"}}

	req.True(group.IsMember("alice"))
	req.False(group.IsMember("mallory"))
}

func TestRoomNames(t *testing.T) {
	req := require.New(t)

	req.Equal(RoomID("group_42"), RoomForGroup("42"))
	req.Equal(RoomID("user_alice"), RoomForUser("alice"))
}
