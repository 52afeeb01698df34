// Package handler exposes the chat services over HTTP and websockets.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"camerpulse/internal/chat/service"
	"camerpulse/internal/common"
	"camerpulse/internal/config"
	"camerpulse/internal/dbmongo"
	"camerpulse/internal/dbsql"
)

//go:generate mockgen -source=chat_handler.go -destination=mocks/mock_typing.go -package=mocks

// TypingReader lists who is typing in a conversation.
type TypingReader interface {
	Typers(ctx context.Context, viewerID, conversationID string) ([]service.Typer, error)
}

// TypingWriter records a keystroke for a user without a live session.
type TypingWriter interface {
	Keystroke(ctx context.Context, userID, conversationID string) error
}

type ChatHandler struct {
	sync         service.MessageSync
	receipts     service.ReadReceipts
	typers       TypingReader
	keystrokes   TypingWriter
	attachments  dbmongo.AttachmentStore
	mediaBaseURL string
	maxUpload    int64
	logger       *slog.Logger
}

// NewChatHandler builds the REST handler. attachments may be nil, in which
// case uploads answer 503.
func NewChatHandler(
	cfg *config.Config,
	sync service.MessageSync,
	receipts service.ReadReceipts,
	typers TypingReader,
	keystrokes TypingWriter,
	attachments dbmongo.AttachmentStore,
	logger *slog.Logger,
) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	maxUpload := cfg.Chat.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &ChatHandler{
		sync:         sync,
		receipts:     receipts,
		typers:       typers,
		keystrokes:   keystrokes,
		attachments:  attachments,
		mediaBaseURL: cfg.Server.MediaBaseURL,
		maxUpload:    maxUpload,
		logger:       logger,
	}
}

type createConversationRequest struct {
	ParticipantIDs []string               `json:"participant_ids"`
	Type           dbsql.ConversationType `json:"type"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type typingResponse struct {
	Typers []service.Typer `json:"typers"`
	Text   string          `json:"text"`
}

func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("invalid request body: %w", common.ErrValidation))
		return
	}

	conv, err := h.sync.FindOrCreateConversation(r.Context(), userID, req.ParticipantIDs, req.Type)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	messages, err := h.sync.Load(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("invalid request body: %w", common.ErrValidation))
		return
	}

	if err := h.sync.Send(r.Context(), userID, mux.Vars(r)["id"], req.Content); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// UploadAttachment stores the "file" part in GridFS and sends its URL as a
// media message.
func (h *ChatHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if h.attachments == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "attachments are disabled"})
		return
	}

	conversationID := mux.Vars(r)["id"]
	if err := h.sync.CheckAccess(r.Context(), userID, conversationID); err != nil {
		h.writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "attachment too large"})
			return
		}
		h.writeError(w, fmt.Errorf("invalid upload: %w", common.ErrValidation))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, fmt.Errorf("file is required: %w", common.ErrValidation))
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	attachment, err := h.attachments.Upload(r.Context(), conversationID, userID, header.Filename, mimeType, file)
	if err != nil {
		h.writeError(w, common.Remote("upload attachment", err))
		return
	}

	url := strings.TrimRight(h.mediaBaseURL, "/") + "/" + attachment.ID
	if err := h.sync.SendMedia(r.Context(), userID, conversationID, url); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"attachment": attachment, "url": url})
}

// MarkConversationRead marks every loaded inbound message as read.
func (h *ChatHandler) MarkConversationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	messages, err := h.sync.Load(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	marked := h.receipts.MarkAllRead(r.Context(), userID, messages)
	writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}

func (h *ChatHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	count, err := h.receipts.UnreadCount(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func (h *ChatHandler) Keystroke(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	conversationID := mux.Vars(r)["id"]
	if err := h.sync.CheckAccess(r.Context(), userID, conversationID); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.keystrokes.Keystroke(r.Context(), userID, conversationID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) GetTyping(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	conversationID := mux.Vars(r)["id"]
	if err := h.sync.CheckAccess(r.Context(), userID, conversationID); err != nil {
		h.writeError(w, err)
		return
	}
	typers, err := h.typers.Typers(r.Context(), userID, conversationID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, typingResponse{Typers: typers, Text: service.TypingText(typers)})
}

func (h *ChatHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.receipts.MarkRead(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
	}
	return userID, ok
}

func (h *ChatHandler) writeError(w http.ResponseWriter, err error) {
	status := common.HTTPStatus(err)
	message := err.Error()
	switch {
	case status == http.StatusServiceUnavailable:
		message = "temporarily unavailable, please retry"
	case status >= http.StatusInternalServerError:
		message = "internal server error"
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("chat request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
