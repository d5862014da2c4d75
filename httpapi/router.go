// Package httpapi exposes the REST surface: account signup/verification,
// login, group management, and the message read path. The real-time
// socket endpoint is mounted alongside it.
package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"chat-relay/auth"
)

// NewRouter wires every route. Authenticated routes require a bearer
// token; the websocket handler does its own handshake/event auth.
func NewRouter(tokens *auth.TokenManager,
	authHandler *AuthHandler,
	groupHandler *GroupHandler,
	messageHandler *MessageHandler,
	socket http.Handler) *httprouter.Router {
	router := httprouter.New()

	router.POST("/api/auth/signup", authHandler.Signup)
	router.POST("/api/auth/verify", authHandler.Verify)
	router.POST("/api/auth/login", authHandler.Login)

	router.GET("/api/users/profile", Authenticated(tokens, authHandler.Profile))

	router.POST("/api/groups", Authenticated(tokens, groupHandler.Create))
	router.GET("/api/groups", Authenticated(tokens, groupHandler.List))
	router.GET("/api/groups/:id", Authenticated(tokens, groupHandler.Detail))
	router.POST("/api/groups/:id/members", Authenticated(tokens, groupHandler.AddMembers))

	router.GET("/api/messages/direct/:userId", Authenticated(tokens, messageHandler.Conversation))
	router.PUT("/api/messages/direct/:userId/read", Authenticated(tokens, messageHandler.MarkRead))
	router.GET("/api/messages/group/:groupId", Authenticated(tokens, messageHandler.GroupHistory))
	router.GET("/api/messages/search", Authenticated(tokens, messageHandler.Search))

	router.Handler(http.MethodGet, "/ws", socket)

	return router
}
