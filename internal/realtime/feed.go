// Package realtime is the change feed between writers and mounted
// conversation views. Consumers re-query on each event; payloads only
// say what changed and where.
package realtime

import (
	"context"
	"time"
)

type EventType string

const (
	EventMessageCreated EventType = "message.created"
	EventReceiptUpdated EventType = "receipt.updated"
	EventTypingUpdated  EventType = "typing.updated"
	EventToast          EventType = "toast"
)

type Event struct {
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	MessageID      string    `json:"message_id,omitempty"`
	Text           string    `json:"text,omitempty"`
	At             time.Time `json:"at"`
}

type Handler func(Event)

type Subscription interface {
	Unsubscribe() error
}

// Feed publishes and delivers events by subject.
type Feed interface {
	Publish(ctx context.Context, subject string, ev Event) error
	Subscribe(subject string, h Handler) (Subscription, error)
	Close()
}

const subjectPrefix = "camerpulse."

// ConversationSubject scopes events to one conversation.
func ConversationSubject(conversationID string) string {
	return subjectPrefix + "conversation." + conversationID
}

// UserSubject carries per-user events such as toasts.
func UserSubject(userID string) string {
	return subjectPrefix + "user." + userID
}
