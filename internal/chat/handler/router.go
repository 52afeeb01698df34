package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"camerpulse/internal/common"
	"camerpulse/internal/ratelimit"
)

// Limiters throttles the chatty routes per user.
type Limiters struct {
	Send      *ratelimit.LimiterStore
	Keystroke *ratelimit.LimiterStore
}

func (l Limiters) Stop() {
	if l.Send != nil {
		l.Send.Stop()
	}
	if l.Keystroke != nil {
		l.Keystroke.Stop()
	}
}

// RouteRegistrar adds routes to the authenticated /api/v1 subrouter.
type RouteRegistrar interface {
	RegisterRoutes(r *mux.Router)
}

func NewRouter(h *ChatHandler, ws *WSHandler, secret []byte, limits Limiters, extra ...RouteRegistrar) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "chat-svc"})
	}).Methods(http.MethodGet)

	auth := common.AuthMiddleware(secret)
	r.Handle("/ws", auth(ws))

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(mux.MiddlewareFunc(auth))

	sendLimit := limitWith(limits.Send)
	keystrokeLimit := limitWith(limits.Keystroke)

	api.HandleFunc("/conversations", h.CreateConversation).Methods(http.MethodPost)
	api.HandleFunc("/conversations/{id}/messages", h.GetMessages).Methods(http.MethodGet)
	api.Handle("/conversations/{id}/messages", sendLimit(http.HandlerFunc(h.SendMessage))).Methods(http.MethodPost)
	api.Handle("/conversations/{id}/attachments", sendLimit(http.HandlerFunc(h.UploadAttachment))).Methods(http.MethodPost)
	api.HandleFunc("/conversations/{id}/read", h.MarkConversationRead).Methods(http.MethodPost)
	api.HandleFunc("/conversations/{id}/unread", h.GetUnreadCount).Methods(http.MethodGet)
	api.Handle("/conversations/{id}/typing", keystrokeLimit(http.HandlerFunc(h.Keystroke))).Methods(http.MethodPost)
	api.HandleFunc("/conversations/{id}/typing", h.GetTyping).Methods(http.MethodGet)
	api.HandleFunc("/messages/{id}/read", h.MarkMessageRead).Methods(http.MethodPost)

	for _, registrar := range extra {
		registrar.RegisterRoutes(api)
	}

	return r
}

func limitWith(store *ratelimit.LimiterStore) func(http.Handler) http.Handler {
	if store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimit.Middleware(store)
}
