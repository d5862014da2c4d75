package services

import (
	"context"
	"fmt"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
)

type IMessageService interface {
	Conversation(userID, peerID string, cursor *string) ([]domain.Message, *string, error)
	GroupHistory(userID, groupID string, cursor *string) ([]domain.Message, *string, error)
	MarkRead(userID, peerID string) (int, error)
	Search(ctx context.Context, terms string, limit int) ([]repositories.SearchHit, error)
}

// MessageService is the REST read path over persisted messages. Group
// history is authorized against current membership, mirroring the
// real-time broadcast authorization.
type MessageService struct {
	messages repositories.IMessageRepository
	groups   repositories.IGroupRepository
	index    *repositories.SearchIndex
}

func NewMessageService(messages repositories.IMessageRepository,
	groups repositories.IGroupRepository,
	index *repositories.SearchIndex) IMessageService {
	return &MessageService{messages: messages, groups: groups, index: index}
}

func (s *MessageService) Conversation(userID, peerID string, cursor *string) ([]domain.Message, *string, error) {
	return s.messages.Conversation(userID, peerID, cursor)
}

func (s *MessageService) GroupHistory(userID, groupID string, cursor *string) ([]domain.Message, *string, error) {
	group, err := s.groups.GetByID(groupID)
	if err != nil {
		return nil, nil, err
	}
	if !group.IsMember(userID) {
		return nil, nil, fmt.Errorf("%w: %s in group %s", errors.ErrUserNotInGroup, userID, groupID)
	}
	return s.messages.GroupHistory(groupID, cursor)
}

func (s *MessageService) MarkRead(userID, peerID string) (int, error) {
	return s.messages.MarkConversationRead(userID, peerID)
}

func (s *MessageService) Search(ctx context.Context, terms string, limit int) ([]repositories.SearchHit, error) {
	if s.index == nil {
		return nil, nil
	}
	return s.index.Search(ctx, terms, limit)
}
