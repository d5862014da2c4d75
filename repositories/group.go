//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-relay/domain"
	"chat-relay/errors"
)

type IGroupRepository interface {
	Create(group domain.Group) (string, error)
	GetByID(id string) (domain.Group, error)
	ForUser(userID string) ([]domain.Group, error)
	Update(group domain.Group) error
}

// GroupRepository persists groups in BadgerDB under "group:<id>".
// Membership reads authorize both group delivery and room joins.
type GroupRepository struct {
	db *badger.DB
}

func NewGroupRepository(db *badger.DB) IGroupRepository {
	return &GroupRepository{db: db}
}

func (g *GroupRepository) Create(group domain.Group) (string, error) {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(group)
	if err != nil {
		return "", err
	}
	err = g.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("group:"+group.ID), data)
	})
	if err != nil {
		return "", err
	}
	return group.ID, nil
}

func (g *GroupRepository) GetByID(id string) (domain.Group, error) {
	var group domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("group:" + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &group)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

// Update rewrites the stored group. Callers read the group first, so the
// id is known to exist.
func (g *GroupRepository) Update(group domain.Group) error {
	data, err := json.Marshal(group)
	if err != nil {
		return err
	}
	return g.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("group:"+group.ID), data)
	})
}

// ForUser scans the group prefix and keeps the groups the user belongs to.
// Group counts stay small enough that a prefix scan beats maintaining a
// secondary membership index.
func (g *GroupRepository) ForUser(userID string) ([]domain.Group, error) {
	var groups []domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		prefix := []byte("group:")
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var group domain.Group
				if err := json.Unmarshal(val, &group); err != nil {
					return err
				}
				if group.IsMember(userID) {
					groups = append(groups, group)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return groups, err
}
