package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"camerpulse/internal/chat/repository"
	"camerpulse/internal/common"
	"camerpulse/internal/config"
	"camerpulse/internal/dbsql"
	"camerpulse/internal/realtime"
)

const notificationPreviewRunes = 120

// MessageView is a stored message enriched for one viewer.
type MessageView struct {
	ID             string             `json:"id"`
	ConversationID string             `json:"conversation_id"`
	SenderID       string             `json:"sender_id"`
	SenderName     string             `json:"sender_name"`
	SenderAvatar   string             `json:"sender_avatar,omitempty"`
	Content        string             `json:"content"`
	MessageType    common.MessageType `json:"message_type"`
	CreatedAt      time.Time          `json:"created_at"`
	IsRead         bool               `json:"is_read"`
}

// MessageSync is the conversation history projection: reads always come
// back from the store in server order, writes never return the record.
type MessageSync interface {
	Load(ctx context.Context, userID, conversationID string) ([]*MessageView, error)
	LoadSince(ctx context.Context, userID, conversationID string, since time.Time) ([]*MessageView, error)
	Send(ctx context.Context, userID, conversationID, content string) error
	SendMedia(ctx context.Context, userID, conversationID, attachmentURL string) error
	FindOrCreateConversation(ctx context.Context, creatorID string, participantIDs []string, convType dbsql.ConversationType) (*dbsql.Conversation, error)
	// CheckAccess fails with ErrNotFound unless userID participates.
	CheckAccess(ctx context.Context, userID, conversationID string) error
}

type messageSync struct {
	repo     repository.ChatRepository
	receipts repository.ReceiptRepository
	feed     realtime.Feed
	queue    common.NotificationQueue
	maxLen   int
	logger   *slog.Logger
	now      func() time.Time
}

func NewMessageSync(
	repo repository.ChatRepository,
	receipts repository.ReceiptRepository,
	feed realtime.Feed,
	queue common.NotificationQueue,
	cfg config.ChatConfig,
	logger *slog.Logger,
) MessageSync {
	if logger == nil {
		logger = slog.Default()
	}
	return &messageSync{
		repo:     repo,
		receipts: receipts,
		feed:     feed,
		queue:    queue,
		maxLen:   cfg.MaxMessageLength,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *messageSync) Load(ctx context.Context, userID, conversationID string) ([]*MessageView, error) {
	if err := s.CheckAccess(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	messages, err := s.repo.FetchHistory(ctx, conversationID)
	if err != nil {
		return nil, common.Remote("load history", err)
	}
	return s.enrich(ctx, userID, messages)
}

func (s *messageSync) LoadSince(ctx context.Context, userID, conversationID string, since time.Time) ([]*MessageView, error) {
	if err := s.CheckAccess(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	messages, err := s.repo.FetchSince(ctx, conversationID, since)
	if err != nil {
		return nil, common.Remote("load new messages", err)
	}
	return s.enrich(ctx, userID, messages)
}

func (s *messageSync) Send(ctx context.Context, userID, conversationID, content string) error {
	if err := common.ValidateContent(content, s.maxLen); err != nil {
		return err
	}
	return s.send(ctx, userID, conversationID, content, common.MessageTypeText)
}

func (s *messageSync) SendMedia(ctx context.Context, userID, conversationID, attachmentURL string) error {
	if err := common.ValidateID("attachment url", attachmentURL); err != nil {
		return err
	}
	return s.send(ctx, userID, conversationID, attachmentURL, common.MessageTypeMedia)
}

func (s *messageSync) send(ctx context.Context, userID, conversationID, content string, msgType common.MessageType) error {
	if err := s.CheckAccess(ctx, userID, conversationID); err != nil {
		return err
	}

	msg := &dbsql.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
		MessageType:    msgType,
		CreatedAt:      s.now(),
	}
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return common.Remote("send message", err)
	}

	if err := s.feed.Publish(ctx, realtime.ConversationSubject(conversationID), realtime.Event{
		Type:           realtime.EventMessageCreated,
		ConversationID: conversationID,
		UserID:         userID,
		MessageID:      msg.ID,
		At:             msg.CreatedAt,
	}); err != nil {
		s.logger.Warn("Failed to publish message event", "conversation", conversationID, "error", err)
	}

	s.notifyParticipants(ctx, msg)
	return nil
}

// notifyParticipants queues a direct-message notification for everyone but
// the sender. Best-effort: the message is already stored.
func (s *messageSync) notifyParticipants(ctx context.Context, msg *dbsql.Message) {
	if s.queue == nil {
		return
	}

	participants, err := s.repo.Participants(ctx, msg.ConversationID)
	if err != nil {
		s.logger.Warn("Failed to list participants for notification", "conversation", msg.ConversationID, "error", err)
		return
	}

	senderName := s.displayName(ctx, msg.SenderID)
	body := msg.Content
	if msg.MessageType == common.MessageTypeMedia {
		body = "Sent an attachment"
	} else if utf8.RuneCountInString(body) > notificationPreviewRunes {
		body = string([]rune(body)[:notificationPreviewRunes]) + "..."
	}

	for _, recipient := range participants {
		if recipient == msg.SenderID {
			continue
		}
		ev := common.NotificationEvent{
			Category:    common.CategoryDirectMessage,
			Channel:     common.ChannelPush,
			RecipientID: recipient,
			EntityName:  senderName,
			Subject:     fmt.Sprintf("New message from %s", senderName),
			Body:        body,
			Priority:    common.PriorityNormal,
			Metadata: common.NotificationMetadata{
				"conversation_id": msg.ConversationID,
				"message_id":      msg.ID,
			},
		}
		if err := s.queue.Enqueue(ctx, ev); err != nil {
			s.logger.Warn("Failed to enqueue message notification", "recipient", recipient, "error", err)
		}
	}
}

func (s *messageSync) displayName(ctx context.Context, userID string) string {
	profiles, err := s.repo.ProfilesByIDs(ctx, []string{userID})
	if err != nil || profiles[userID] == nil || profiles[userID].DisplayName == "" {
		return unknownSender
	}
	return profiles[userID].DisplayName
}

func (s *messageSync) FindOrCreateConversation(
	ctx context.Context,
	creatorID string,
	participantIDs []string,
	convType dbsql.ConversationType,
) (*dbsql.Conversation, error) {
	if err := common.ValidateID("creator id", creatorID); err != nil {
		return nil, err
	}
	if convType == "" {
		convType = dbsql.ConversationDirect
	}
	if !convType.IsValid() {
		return nil, fmt.Errorf("unknown conversation type %q: %w", convType, common.ErrValidation)
	}

	members := uniqueIDs(append([]string{creatorID}, participantIDs...))
	if len(members) < 2 {
		return nil, fmt.Errorf("a conversation needs at least two participants: %w", common.ErrValidation)
	}

	conv, _, err := s.repo.FindOrCreateConversation(ctx, &dbsql.Conversation{
		ID:             uuid.NewString(),
		Type:           convType,
		ParticipantKey: dbsql.ParticipantKey(convType, members),
	}, members)
	if err != nil {
		return nil, common.Remote("find or create conversation", err)
	}
	return conv, nil
}

func (s *messageSync) CheckAccess(ctx context.Context, userID, conversationID string) error {
	if err := common.ValidateID("conversation id", conversationID); err != nil {
		return err
	}
	if err := common.ValidateID("user id", userID); err != nil {
		return err
	}

	ok, err := s.repo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return common.Remote("check participant", err)
	}
	if !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, common.ErrNotFound)
	}
	return nil
}

// enrich resolves senders with one batched profile lookup and the viewer's
// read flags with one batched receipt lookup.
func (s *messageSync) enrich(ctx context.Context, viewerID string, messages []*dbsql.Message) ([]*MessageView, error) {
	views := make([]*MessageView, 0, len(messages))
	if len(messages) == 0 {
		return views, nil
	}

	senderIDs := make([]string, 0, len(messages))
	inbound := make([]string, 0, len(messages))
	for _, m := range messages {
		senderIDs = append(senderIDs, m.SenderID)
		if m.SenderID != viewerID {
			inbound = append(inbound, m.ID)
		}
	}

	profiles, err := s.repo.ProfilesByIDs(ctx, uniqueIDs(senderIDs))
	if err != nil {
		return nil, common.Remote("load sender profiles", err)
	}
	read, err := s.receipts.ReadMessageIDs(ctx, viewerID, inbound)
	if err != nil {
		return nil, common.Remote("load read status", err)
	}

	for _, m := range messages {
		v := &MessageView{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			SenderName:     unknownSender,
			Content:        m.Content,
			MessageType:    m.MessageType,
			CreatedAt:      m.CreatedAt,
			IsRead:         m.SenderID == viewerID || read[m.ID],
		}
		if p := profiles[m.SenderID]; p != nil {
			if p.DisplayName != "" {
				v.SenderName = p.DisplayName
			}
			v.SenderAvatar = p.AvatarURL
		}
		views = append(views, v)
	}
	return views, nil
}

// MergeMessages inserts incoming messages that current does not hold yet
// and keeps server order (created_at, then id).
func MergeMessages(current, incoming []*MessageView) []*MessageView {
	seen := make(map[string]struct{}, len(current))
	merged := make([]*MessageView, 0, len(current)+len(incoming))
	for _, m := range current {
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range incoming {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})
	return merged
}

const unknownSender = "Someone"

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
