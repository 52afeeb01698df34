//go:generate mockgen -source=receipt_repository.go -destination=../service/mocks/mock_receipt_repository.go -package=mocks

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"camerpulse/internal/common"
	"camerpulse/internal/dbsql"
)

type ReceiptRepository interface {
	// MarkMessageRead is the mark-read procedure. It reports whether a new
	// receipt was written; repeated calls and the sender's own calls are no-ops.
	MarkMessageRead(ctx context.Context, messageID, userID string, at time.Time) (*dbsql.Message, bool, error)
	ReadMessageIDs(ctx context.Context, userID string, messageIDs []string) (map[string]bool, error)
	UnreadCount(ctx context.Context, conversationID, userID string) (int64, error)
}

type receiptRepo struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepo{db: db}
}

func (r *receiptRepo) MarkMessageRead(ctx context.Context, messageID, userID string, at time.Time) (*dbsql.Message, bool, error) {
	var msg dbsql.Message
	written := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", messageID).First(&msg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("message %s: %w", messageID, common.ErrNotFound)
			}
			return err
		}
		if msg.SenderID == userID {
			return nil
		}

		var count int64
		if err := tx.Model(&dbsql.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id = ?", msg.ConversationID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("message %s: %w", messageID, common.ErrNotFound)
		}

		readAt := at.UTC()
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&dbsql.MessageReadStatus{
			MessageID: messageID,
			UserID:    userID,
			IsRead:    true,
			ReadAt:    &readAt,
		})
		if res.Error != nil {
			return res.Error
		}
		written = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("failed to mark message read: %w", err)
	}
	return &msg, written, nil
}

func (r *receiptRepo) ReadMessageIDs(ctx context.Context, userID string, messageIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(messageIDs))
	if len(messageIDs) == 0 {
		return result, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&dbsql.MessageReadStatus{}).
		Where("user_id = ? AND message_id IN ? AND is_read = ?", userID, messageIDs, true).
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get read status: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *receiptRepo) UnreadCount(ctx context.Context, conversationID, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbsql.Message{}).
		Where("conversation_id = ? AND sender_id <> ?", conversationID, userID).
		Where("NOT EXISTS (SELECT 1 FROM message_read_status rs WHERE rs.message_id = messages.id AND rs.user_id = ? AND rs.is_read = ?)", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return count, nil
}
