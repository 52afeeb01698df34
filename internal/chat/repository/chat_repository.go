//go:generate mockgen -source=chat_repository.go -destination=../service/mocks/mock_chat_repository.go -package=mocks

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"camerpulse/internal/common"
	"camerpulse/internal/dbsql"
)

type ChatRepository interface {
	FindOrCreateConversation(ctx context.Context, conv *dbsql.Conversation, participantIDs []string) (*dbsql.Conversation, bool, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	Participants(ctx context.Context, conversationID string) ([]string, error)
	SaveMessage(ctx context.Context, msg *dbsql.Message) error
	FetchHistory(ctx context.Context, conversationID string) ([]*dbsql.Message, error)
	FetchSince(ctx context.Context, conversationID string, since time.Time) ([]*dbsql.Message, error)
	ProfilesByIDs(ctx context.Context, userIDs []string) (map[string]*dbsql.Profile, error)
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

// FindOrCreateConversation looks the conversation up by its participant key
// and creates it with its participants when missing. The bool reports
// whether a new row was written.
func (r *chatRepo) FindOrCreateConversation(
	ctx context.Context,
	conv *dbsql.Conversation,
	participantIDs []string,
) (*dbsql.Conversation, bool, error) {
	existing, err := r.findByKey(ctx, conv.ParticipantKey)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		members := make([]dbsql.ConversationParticipant, 0, len(participantIDs))
		for _, id := range participantIDs {
			members = append(members, dbsql.ConversationParticipant{ConversationID: conv.ID, UserID: id})
		}
		return tx.Create(&members).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost the race against a concurrent first message
		existing, err := r.findByKey(ctx, conv.ParticipantKey)
		return existing, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, true, nil
}

func (r *chatRepo) findByKey(ctx context.Context, key string) (*dbsql.Conversation, error) {
	var conv dbsql.Conversation
	err := r.db.WithContext(ctx).Where("participant_key = ?", key).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("conversation %s: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

func (r *chatRepo) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbsql.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return count > 0, nil
}

func (r *chatRepo) Participants(ctx context.Context, conversationID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&dbsql.ConversationParticipant{}).
		Where("conversation_id = ?", conversationID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return ids, nil
}

func (r *chatRepo) SaveMessage(ctx context.Context, msg *dbsql.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// FetchHistory returns the whole conversation in server order.
func (r *chatRepo) FetchHistory(ctx context.Context, conversationID string) ([]*dbsql.Message, error) {
	var messages []*dbsql.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return messages, nil
}

// FetchSince returns messages created at or after since, for incremental merges.
func (r *chatRepo) FetchSince(ctx context.Context, conversationID string, since time.Time) ([]*dbsql.Message, error) {
	var messages []*dbsql.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND created_at >= ?", conversationID, since).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages since %s: %w", since.Format(time.RFC3339Nano), err)
	}
	return messages, nil
}

// ProfilesByIDs is the batched sender lookup: one query for all ids.
func (r *chatRepo) ProfilesByIDs(ctx context.Context, userIDs []string) (map[string]*dbsql.Profile, error) {
	result := make(map[string]*dbsql.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var profiles []*dbsql.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	for _, p := range profiles {
		result[p.UserID] = p
	}
	return result, nil
}
