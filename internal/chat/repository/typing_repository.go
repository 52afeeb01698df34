//go:generate mockgen -source=typing_repository.go -destination=../service/mocks/mock_typing_repository.go -package=mocks

package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"camerpulse/internal/dbsql"
)

type TypingRepository interface {
	Upsert(ctx context.Context, ind *dbsql.TypingIndicator) error
	// Delete removes the user's indicator only while its stored seq is not
	// newer than maxSeq, so a late Idle cannot erase a newer Typing.
	Delete(ctx context.Context, conversationID, userID string, maxSeq int64) error
	Active(ctx context.Context, conversationID string, since time.Time) ([]*dbsql.TypingIndicator, error)
	CleanupStale(ctx context.Context, before time.Time) (int64, error)
}

type typingRepo struct {
	db *gorm.DB
}

func NewTypingRepository(db *gorm.DB) TypingRepository {
	return &typingRepo{db: db}
}

func (r *typingRepo) Upsert(ctx context.Context, ind *dbsql.TypingIndicator) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_typing", "last_activity", "seq"}),
		}).
		Create(ind).Error
	if err != nil {
		return fmt.Errorf("failed to upsert typing indicator: %w", err)
	}
	return nil
}

func (r *typingRepo) Delete(ctx context.Context, conversationID, userID string, maxSeq int64) error {
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ? AND seq <= ?", conversationID, userID, maxSeq).
		Delete(&dbsql.TypingIndicator{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete typing indicator: %w", err)
	}
	return nil
}

func (r *typingRepo) Active(ctx context.Context, conversationID string, since time.Time) ([]*dbsql.TypingIndicator, error) {
	var rows []*dbsql.TypingIndicator
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND is_typing = ? AND last_activity >= ?", conversationID, true, since).
		Order("last_activity DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get typing indicators: %w", err)
	}
	return rows, nil
}

// CleanupStale is the purge procedure for indicators nobody refreshed.
func (r *typingRepo) CleanupStale(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("last_activity < ?", before).
		Delete(&dbsql.TypingIndicator{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to cleanup typing indicators: %w", res.Error)
	}
	return res.RowsAffected, nil
}
