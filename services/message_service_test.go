package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"
)

func TestMessageService_GroupHistory(t *testing.T) {
	group := domain.Group{ID: "g1", Members: []string{"alice", "bob"}}

	t.Run("should return history for a member", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		messages := mocks.NewMockIMessageRepository(ctrl)
		groups := mocks.NewMockIGroupRepository(ctrl)
		service := NewMessageService(messages, groups, nil)

		groups.EXPECT().GetByID("g1").Return(group, nil)
		messages.EXPECT().GroupHistory("g1", nil).
			Return([]domain.Message{{Content: "hello"}}, nil, nil)

		history, _, err := service.GroupHistory("alice", "g1", nil)

		req.NoError(err)
		req.Len(history, 1)
	})

	t.Run("should refuse a non-member without reading history", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		messages := mocks.NewMockIMessageRepository(ctrl)
		groups := mocks.NewMockIGroupRepository(ctrl)
		service := NewMessageService(messages, groups, nil)

		groups.EXPECT().GetByID("g1").Return(group, nil)
		messages.EXPECT().GroupHistory(gomock.Any(), gomock.Any()).Times(0)

		_, _, err := service.GroupHistory("mallory", "g1", nil)

		req.ErrorIs(err, errors.ErrUserNotInGroup)
	})
}

func TestMessageService_Search_Without_Index(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service := NewMessageService(
		mocks.NewMockIMessageRepository(ctrl),
		mocks.NewMockIGroupRepository(ctrl),
		nil,
	)

	hits, err := service.Search(context.Background(), "anything", 10)

	req.NoError(err)
	req.Nil(hits)
}
