package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/repositories"
	"chat-relay/services"
)

const defaultSearchLimit = 20

type MessageHandler struct {
	log      *slog.Logger
	messages services.IMessageService
}

func NewMessageHandler(log *slog.Logger, messages services.IMessageService) *MessageHandler {
	return &MessageHandler{log: log, messages: messages}
}

type messageResponse struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient,omitempty"`
	Group     string    `json:"group,omitempty"`
	Content   string    `json:"content"`
	Kind      string    `json:"kind"`
	Read      bool      `json:"read"`
	Language  string    `json:"language,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type historyResponse struct {
	Messages []messageResponse `json:"messages"`
	Cursor   *string           `json:"cursor,omitempty"`
}

func toHistoryResponse(messages []domain.Message, cursor *string) historyResponse {
	return historyResponse{
		Cursor: cursor,
		Messages: lo.Map(messages, func(m domain.Message, _ int) messageResponse {
			return messageResponse{
				ID:        m.ID.String(),
				Sender:    m.Sender,
				Recipient: m.Recipient,
				Group:     m.Group,
				Content:   m.Content,
				Kind:      string(m.Kind),
				Read:      m.Read,
				Language:  m.Language,
				CreatedAt: m.CreatedAt,
			}
		}),
	}
}

func cursorParam(r *http.Request) *string {
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		return &cursor
	}
	return nil
}

// Conversation returns the caller's direct exchange with one peer, newest
// first, cursor-paginated.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	messages, cursor, err := h.messages.Conversation(UserID(r), params.ByName("userId"), cursorParam(r))
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(messages, cursor))
}

// GroupHistory returns a group's messages for a current member.
func (h *MessageHandler) GroupHistory(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	messages, cursor, err := h.messages.GroupHistory(UserID(r), params.ByName("groupId"), cursorParam(r))
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(messages, cursor))
}

// MarkRead flips the read flag on messages received from the given peer.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	updated, err := h.messages.MarkRead(UserID(r), params.ByName("userId"))
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

type searchHitResponse struct {
	MessageID string  `json:"messageId"`
	Score     float64 `json:"score"`
}

// Search runs a full-text query over message content.
func (h *MessageHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	hits, err := h.messages.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(hits, func(hit repositories.SearchHit, _ int) searchHitResponse {
		return searchHitResponse{MessageID: hit.MessageID, Score: hit.Score}
	}))
}
