package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/errors"
)

type stubGroupService struct {
	create     func(creatorID, name string, members []string) (domain.Group, error)
	forUser    func(userID string) ([]domain.Group, error)
	detail     func(callerID, groupID string) (domain.Group, error)
	addMembers func(callerID, groupID string, members []string) (domain.Group, error)
}

func (s stubGroupService) Create(creatorID, name string, members []string) (domain.Group, error) {
	return s.create(creatorID, name, members)
}

func (s stubGroupService) ForUser(userID string) ([]domain.Group, error) {
	return s.forUser(userID)
}

func (s stubGroupService) Detail(callerID, groupID string) (domain.Group, error) {
	return s.detail(callerID, groupID)
}

func (s stubGroupService) AddMembers(callerID, groupID string, members []string) (domain.Group, error) {
	return s.addMembers(callerID, groupID, members)
}

func groupParams(id string) httprouter.Params {
	return httprouter.Params{{Key: "id", Value: id}}
}

func TestGroupHandler_Detail(t *testing.T) {
	t.Run("should return the group to a member", func(t *testing.T) {
		req := require.New(t)
		handler := NewGroupHandler(testLogger(), stubGroupService{
			detail: func(callerID, groupID string) (domain.Group, error) {
				req.Equal("user-1", callerID)
				req.Equal("g1", groupID)
				return domain.Group{ID: "g1", Name: "dev", Members: []string{"user-1"}}, nil
			},
		})

		r := asUser(httptest.NewRequest(http.MethodGet, "/api/groups/g1", nil), "user-1")
		w := httptest.NewRecorder()

		handler.Detail(w, r, groupParams("g1"))

		req.Equal(http.StatusOK, w.Code)
		var response groupResponse
		req.NoError(json.Unmarshal(w.Body.Bytes(), &response))
		req.Equal("dev", response.Name)
	})

	t.Run("should return 403 for an outsider", func(t *testing.T) {
		req := require.New(t)
		handler := NewGroupHandler(testLogger(), stubGroupService{
			detail: func(string, string) (domain.Group, error) {
				return domain.Group{}, errors.ErrUserNotInGroup
			},
		})

		r := asUser(httptest.NewRequest(http.MethodGet, "/api/groups/g1", nil), "mallory")
		w := httptest.NewRecorder()

		handler.Detail(w, r, groupParams("g1"))

		req.Equal(http.StatusForbidden, w.Code)
	})

	t.Run("should return 404 for an unknown id", func(t *testing.T) {
		req := require.New(t)
		handler := NewGroupHandler(testLogger(), stubGroupService{
			detail: func(string, string) (domain.Group, error) {
				return domain.Group{}, errors.ErrGroupNotFound
			},
		})

		r := asUser(httptest.NewRequest(http.MethodGet, "/api/groups/ghost", nil), "user-1")
		w := httptest.NewRecorder()

		handler.Detail(w, r, groupParams("ghost"))

		req.Equal(http.StatusNotFound, w.Code)
	})
}

func TestGroupHandler_AddMembers(t *testing.T) {
	t.Run("should return the extended group", func(t *testing.T) {
		req := require.New(t)
		handler := NewGroupHandler(testLogger(), stubGroupService{
			addMembers: func(callerID, groupID string, members []string) (domain.Group, error) {
				req.Equal("user-1", callerID)
				req.Equal([]string{"bob"}, members)
				return domain.Group{ID: groupID, Members: []string{"user-1", "bob"}}, nil
			},
		})

		body := `{"members":["bob"]}`
		r := asUser(httptest.NewRequest(http.MethodPost, "/api/groups/g1/members", strings.NewReader(body)), "user-1")
		w := httptest.NewRecorder()

		handler.AddMembers(w, r, groupParams("g1"))

		req.Equal(http.StatusOK, w.Code)
		var response groupResponse
		req.NoError(json.Unmarshal(w.Body.Bytes(), &response))
		req.ElementsMatch([]string{"user-1", "bob"}, response.Members)
	})

	t.Run("should return 403 when the caller did not create the group", func(t *testing.T) {
		req := require.New(t)
		handler := NewGroupHandler(testLogger(), stubGroupService{
			addMembers: func(string, string, []string) (domain.Group, error) {
				return domain.Group{}, errors.ErrNotGroupCreator
			},
		})

		body := `{"members":["bob"]}`
		r := asUser(httptest.NewRequest(http.MethodPost, "/api/groups/g1/members", strings.NewReader(body)), "user-2")
		w := httptest.NewRecorder()

		handler.AddMembers(w, r, groupParams("g1"))

		req.Equal(http.StatusForbidden, w.Code)
	})

	t.Run("should return 400 on malformed JSON", func(t *testing.T) {
		req := require.New(t)
		handler := NewGroupHandler(testLogger(), stubGroupService{})

		r := asUser(httptest.NewRequest(http.MethodPost, "/api/groups/g1/members", strings.NewReader("{not json")), "user-1")
		w := httptest.NewRecorder()

		handler.AddMembers(w, r, groupParams("g1"))

		req.Equal(http.StatusBadRequest, w.Code)
	})
}
