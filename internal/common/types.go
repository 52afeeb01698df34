package common

import (
	"time"
)

type NotificationCategory string

const (
	CategoryClaimStatusChange NotificationCategory = "claim-status-change"
	CategoryReportFiled       NotificationCategory = "report-filed"
	CategoryDirectMessage     NotificationCategory = "direct-message"
	CategoryGeneric           NotificationCategory = "generic"
)

func (c NotificationCategory) IsValid() bool {
	switch c {
	case CategoryClaimStatusChange, CategoryReportFiled, CategoryDirectMessage, CategoryGeneric:
		return true
	}
	return false
}

// DeliveryChannel is declared by the caller; the dispatcher never picks one itself.
type DeliveryChannel string

const (
	ChannelEmail DeliveryChannel = "email"
	ChannelPush  DeliveryChannel = "push"
)

func (c DeliveryChannel) IsValid() bool {
	return c == ChannelEmail || c == ChannelPush
}

type NotificationStatus string

const (
	StatusSent    NotificationStatus = "sent"
	StatusSkipped NotificationStatus = "skipped"
	StatusFailed  NotificationStatus = "failed"
)

type NotificationPriority string

const (
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

type NotificationMetadata map[string]string

type NotificationEvent struct {
	Category       NotificationCategory `json:"category"`
	Channel        DeliveryChannel      `json:"channel"`
	RecipientID    string               `json:"recipient_id"`
	RecipientEmail string               `json:"recipient_email,omitempty"`
	EntityName     string               `json:"entity_name,omitempty"`
	Status         string               `json:"status,omitempty"`
	Subject        string               `json:"subject,omitempty"`
	Body           string               `json:"body,omitempty"`
	Link           string               `json:"link,omitempty"`
	Priority       NotificationPriority `json:"priority,omitempty"`
	Metadata       NotificationMetadata `json:"metadata,omitempty"`
}

type NotificationResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Channel   string    `json:"channel"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
