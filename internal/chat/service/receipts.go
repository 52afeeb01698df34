package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"camerpulse/internal/chat/repository"
	"camerpulse/internal/common"
	"camerpulse/internal/realtime"
)

type ReadReceipts interface {
	MarkRead(ctx context.Context, userID, messageID string) error
	// MarkAllRead marks every loaded inbound message the user has not read
	// yet, one at a time. Failures are logged and skipped.
	MarkAllRead(ctx context.Context, userID string, messages []*MessageView) int
	UnreadCount(ctx context.Context, userID, conversationID string) (int64, error)
}

type readReceipts struct {
	repo   repository.ReceiptRepository
	chat   repository.ChatRepository
	feed   realtime.Feed
	logger *slog.Logger
	now    func() time.Time
}

func NewReadReceipts(
	repo repository.ReceiptRepository,
	chat repository.ChatRepository,
	feed realtime.Feed,
	logger *slog.Logger,
) ReadReceipts {
	if logger == nil {
		logger = slog.Default()
	}
	return &readReceipts{
		repo:   repo,
		chat:   chat,
		feed:   feed,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *readReceipts) MarkRead(ctx context.Context, userID, messageID string) error {
	conversationID, written, err := r.markRead(ctx, userID, messageID)
	if err != nil {
		return err
	}
	if written {
		r.announce(ctx, conversationID, userID, messageID)
	}
	return nil
}

func (r *readReceipts) markRead(ctx context.Context, userID, messageID string) (string, bool, error) {
	if err := common.ValidateID("message id", messageID); err != nil {
		return "", false, err
	}
	if err := common.ValidateID("user id", userID); err != nil {
		return "", false, err
	}

	msg, written, err := r.repo.MarkMessageRead(ctx, messageID, userID, r.now())
	if err != nil {
		return "", false, common.Remote("mark read", err)
	}
	return msg.ConversationID, written, nil
}

func (r *readReceipts) MarkAllRead(ctx context.Context, userID string, messages []*MessageView) int {
	marked := 0
	conversationID := ""
	for _, m := range messages {
		if m.SenderID == userID || m.IsRead {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if _, _, err := r.markRead(ctx, userID, m.ID); err != nil {
			r.logger.Warn("Failed to mark message read", "message", m.ID, "user", userID, "error", err)
			continue
		}
		m.IsRead = true
		conversationID = m.ConversationID
		marked++
	}

	// one event for the batch, not one per message
	if marked > 0 {
		r.announce(ctx, conversationID, userID, "")
	}
	return marked
}

func (r *readReceipts) UnreadCount(ctx context.Context, userID, conversationID string) (int64, error) {
	if err := common.ValidateID("conversation id", conversationID); err != nil {
		return 0, err
	}
	ok, err := r.chat.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return 0, common.Remote("check participant", err)
	}
	if !ok {
		return 0, fmt.Errorf("conversation %s: %w", conversationID, common.ErrNotFound)
	}

	count, err := r.repo.UnreadCount(ctx, conversationID, userID)
	if err != nil {
		return 0, common.Remote("unread count", err)
	}
	return count, nil
}

func (r *readReceipts) announce(ctx context.Context, conversationID, userID, messageID string) {
	err := r.feed.Publish(ctx, realtime.ConversationSubject(conversationID), realtime.Event{
		Type:           realtime.EventReceiptUpdated,
		ConversationID: conversationID,
		UserID:         userID,
		MessageID:      messageID,
		At:             r.now(),
	})
	if err != nil {
		r.logger.Debug("Receipt event publish failed", "conversation", conversationID, "error", err)
	}
}
