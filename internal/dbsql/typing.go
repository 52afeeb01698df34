package dbsql

import "time"

// TypingIndicator is ephemeral: rows older than the silence window are
// treated as absent whatever IsTyping says.
type TypingIndicator struct {
	ConversationID string    `gorm:"primaryKey;size:36" json:"conversation_id"`
	UserID         string    `gorm:"primaryKey;size:36" json:"user_id"`
	IsTyping       bool      `gorm:"not null" json:"is_typing"`
	LastActivity   time.Time `gorm:"not null;index" json:"last_activity"`
	Seq            int64     `gorm:"not null" json:"seq"`
}

func (t TypingIndicator) ActiveAt(now time.Time, window time.Duration) bool {
	return t.IsTyping && now.Sub(t.LastActivity) <= window
}
