//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
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

type IUserRepository interface {
	Create(user domain.User) (string, error)
	GetByEmail(email string) (domain.User, error)
	GetByID(id string) (domain.User, error)
	SetVerified(email string) error
	Exists(id string) (bool, error)
}

// UserRepository persists users in BadgerDB under two keys: "user:<email>"
// holds the record, "userid:<id>" points back to the email so the socket
// layer can authenticate by id.
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

func (u *UserRepository) Create(user domain.User) (string, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if len(user.Roles) == 0 {
		user.Roles = []string{"user"}
	}

	data, err := json.Marshal(user)
	if err != nil {
		return "", err
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte("user:" + user.Email)
		if _, err := txn.Get(emailKey); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey, data); err != nil {
			return err
		}
		return txn.Set([]byte("userid:"+user.ID), []byte(user.Email))
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (u *UserRepository) GetByEmail(email string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:" + email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u *UserRepository) GetByID(id string) (domain.User, error) {
	var email string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("userid:" + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			email = string(val)
			return nil
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u.GetByEmail(email)
}

func (u *UserRepository) SetVerified(email string) error {
	user, err := u.GetByEmail(email)
	if err != nil {
		return err
	}
	user.Verified = true

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("user:"+email), data)
	})
}

func (u *UserRepository) Exists(id string) (bool, error) {
	_, err := u.GetByID(id)
	if stderrors.Is(err, errors.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
