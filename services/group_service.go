package services

import (
	"fmt"

	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
)

type IGroupService interface {
	Create(creatorID, name string, members []string) (domain.Group, error)
	ForUser(userID string) ([]domain.Group, error)
	Detail(callerID, groupID string) (domain.Group, error)
	AddMembers(callerID, groupID string, members []string) (domain.Group, error)
}

type GroupService struct {
	groups repositories.IGroupRepository
	users  repositories.IUserRepository
}

func NewGroupService(groups repositories.IGroupRepository, users repositories.IUserRepository) IGroupService {
	return &GroupService{groups: groups, users: users}
}

// Create verifies every listed member exists, adds the creator to the
// member set, and persists the group.
func (s *GroupService) Create(creatorID, name string, members []string) (domain.Group, error) {
	if name == "" {
		return domain.Group{}, fmt.Errorf("%w: group name is required", errors.ErrInvalidPayload)
	}

	for _, memberID := range members {
		exists, err := s.users.Exists(memberID)
		if err != nil {
			return domain.Group{}, err
		}
		if !exists {
			return domain.Group{}, fmt.Errorf("%w: %s", errors.ErrUserNotFound, memberID)
		}
	}

	group := domain.Group{
		Name:      name,
		Members:   lo.Uniq(append(members, creatorID)),
		CreatedBy: creatorID,
	}
	groupID, err := s.groups.Create(group)
	if err != nil {
		return domain.Group{}, err
	}
	group.ID = groupID
	return group, nil
}

func (s *GroupService) ForUser(userID string) ([]domain.Group, error) {
	return s.groups.ForUser(userID)
}

// Detail returns one group, visible to its members only.
func (s *GroupService) Detail(callerID, groupID string) (domain.Group, error) {
	group, err := s.groups.GetByID(groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if !group.IsMember(callerID) {
		return domain.Group{}, fmt.Errorf("%w: %s in group %s", errors.ErrUserNotInGroup, callerID, groupID)
	}
	return group, nil
}

// AddMembers extends the member set. Only the creator may do so, every new
// member must exist, and duplicates are dropped.
func (s *GroupService) AddMembers(callerID, groupID string, members []string) (domain.Group, error) {
	if len(members) == 0 {
		return domain.Group{}, fmt.Errorf("%w: members are required", errors.ErrInvalidPayload)
	}

	group, err := s.groups.GetByID(groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if group.CreatedBy != callerID {
		return domain.Group{}, errors.ErrNotGroupCreator
	}

	for _, memberID := range members {
		exists, err := s.users.Exists(memberID)
		if err != nil {
			return domain.Group{}, err
		}
		if !exists {
			return domain.Group{}, fmt.Errorf("%w: %s", errors.ErrUserNotFound, memberID)
		}
	}

	group.Members = lo.Uniq(append(group.Members, members...))
	if err := s.groups.Update(group); err != nil {
		return domain.Group{}, err
	}
	return group, nil
}
