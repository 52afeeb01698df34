package dbsql

import (
	"time"

	"camerpulse/internal/common"
)

// Message is immutable once created.
type Message struct {
	ID             string             `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string             `gorm:"not null;size:36;index:idx_messages_conversation_created,priority:1" json:"conversation_id"`
	SenderID       string             `gorm:"not null;size:36;index" json:"sender_id"`
	Content        string             `gorm:"not null;type:text" json:"content"`
	MessageType    common.MessageType `gorm:"not null;size:10;default:'text'" json:"message_type"`
	CreatedAt      time.Time          `gorm:"index:idx_messages_conversation_created,priority:2" json:"created_at"`
}

// MessageReadStatus exists only once a participant has read the message.
// A missing row means unread.
type MessageReadStatus struct {
	MessageID string     `gorm:"primaryKey;size:36" json:"message_id"`
	UserID    string     `gorm:"primaryKey;size:36;index" json:"user_id"`
	IsRead    bool       `gorm:"not null;default:true" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

func (MessageReadStatus) TableName() string {
	return "message_read_status"
}

type Profile struct {
	UserID      string `gorm:"primaryKey;size:36" json:"user_id"`
	DisplayName string `gorm:"size:120" json:"display_name"`
	AvatarURL   string `gorm:"size:512" json:"avatar_url"`
}
