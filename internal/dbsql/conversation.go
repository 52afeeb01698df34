package dbsql

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

type ConversationType string

const (
	ConversationDirect        ConversationType = "direct"
	ConversationInquiry       ConversationType = "inquiry"
	ConversationCollaboration ConversationType = "collaboration"
	ConversationFeedback      ConversationType = "feedback"
)

func (t ConversationType) IsValid() bool {
	switch t {
	case ConversationDirect, ConversationInquiry, ConversationCollaboration, ConversationFeedback:
		return true
	}
	return false
}

type Conversation struct {
	ID             string           `gorm:"primaryKey;size:36" json:"id"`
	Type           ConversationType `gorm:"not null;size:20;default:'direct'" json:"type"`
	ParticipantKey string           `gorm:"size:64;uniqueIndex:idx_conversation_key" json:"-"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

type ConversationParticipant struct {
	ConversationID string    `gorm:"primaryKey;size:36" json:"conversation_id"`
	UserID         string    `gorm:"primaryKey;size:36;index" json:"user_id"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// ParticipantKey is the find-or-create key of a conversation: a sha256 hex
// digest of the type and the sorted, de-duplicated participant ids, so any
// group size fits the column.
func ParticipantKey(convType ConversationType, userIDs []string) string {
	sum := sha256.Sum256([]byte(canonicalParticipants(convType, userIDs)))
	return hex.EncodeToString(sum[:])
}

func canonicalParticipants(convType ConversationType, userIDs []string) string {
	seen := make(map[string]struct{}, len(userIDs))
	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return string(convType) + "|" + strings.Join(ids, ":")
}
