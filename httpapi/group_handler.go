package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/services"
)

type GroupHandler struct {
	log    *slog.Logger
	groups services.IGroupService
}

func NewGroupHandler(log *slog.Logger, groups services.IGroupService) *GroupHandler {
	return &GroupHandler{log: log, groups: groups}
}

type groupResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedBy string   `json:"createdBy"`
}

func toGroupResponse(group domain.Group) groupResponse {
	return groupResponse{
		ID:        group.ID,
		Name:      group.Name,
		Members:   group.Members,
		CreatedBy: group.CreatedBy,
	}
}

type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Create registers a new group; the caller becomes a member automatically.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.ErrInvalidPayload)
		return
	}

	group, err := h.groups.Create(UserID(r), req.Name, req.Members)
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

// Detail returns one group. Membership gates visibility: outsiders get a
// 403, unknown ids a 404.
func (h *GroupHandler) Detail(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	group, err := h.groups.Detail(UserID(r), params.ByName("id"))
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

type addMembersRequest struct {
	Members []string `json:"members"`
}

// AddMembers lets the group creator extend the member set.
func (h *GroupHandler) AddMembers(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	var req addMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.ErrInvalidPayload)
		return
	}

	group, err := h.groups.AddMembers(UserID(r), params.ByName("id"), req.Members)
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

// List returns the caller's groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	groups, err := h.groups.ForUser(UserID(r))
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(groups, func(group domain.Group, _ int) groupResponse {
		return toGroupResponse(group)
	}))
}
