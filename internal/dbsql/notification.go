package dbsql

import (
	"time"

	"camerpulse/internal/common"
)

// NotificationPreference holds the per-user channel and category toggles.
// A user without a row gets DefaultPreference.
type NotificationPreference struct {
	UserID         string    `gorm:"primaryKey;size:36" json:"user_id"`
	PushEnabled    bool      `gorm:"not null;default:true" json:"push_enabled"`
	EmailEnabled   bool      `gorm:"not null;default:true" json:"email_enabled"`
	ClaimUpdates   bool      `gorm:"not null;default:true" json:"claim_updates"`
	ReportUpdates  bool      `gorm:"not null;default:true" json:"report_updates"`
	DirectMessages bool      `gorm:"not null;default:true" json:"direct_messages"`
	GenericUpdates bool      `gorm:"not null;default:true" json:"generic_updates"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func DefaultPreference(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserID:         userID,
		PushEnabled:    true,
		EmailEnabled:   true,
		ClaimUpdates:   true,
		ReportUpdates:  true,
		DirectMessages: true,
		GenericUpdates: true,
	}
}

func (p *NotificationPreference) AllowsCategory(c common.NotificationCategory) bool {
	switch c {
	case common.CategoryClaimStatusChange:
		return p.ClaimUpdates
	case common.CategoryReportFiled:
		return p.ReportUpdates
	case common.CategoryDirectMessage:
		return p.DirectMessages
	case common.CategoryGeneric:
		return p.GenericUpdates
	}
	return false
}

func (p *NotificationPreference) AllowsChannel(c common.DeliveryChannel) bool {
	switch c {
	case common.ChannelEmail:
		return p.EmailEnabled
	case common.ChannelPush:
		return p.PushEnabled
	}
	return false
}

type Device struct {
	DeviceToken  string    `gorm:"primaryKey;size:255" json:"device_token"`
	UserID       string    `gorm:"not null;index;size:36" json:"user_id"`
	Platform     string    `gorm:"not null;size:10" json:"platform"`
	IsActive     bool      `gorm:"not null;default:true;index" json:"is_active"`
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`
	LastActive   time.Time `gorm:"index" json:"last_active"`
}

func (Device) TableName() string {
	return "devices"
}

// Notification is the delivery log, one row per dispatch attempt.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"not null;index;size:36"`
	Category  string    `gorm:"not null;size:50"`
	Channel   string    `gorm:"not null;size:10"`
	Subject   string    `gorm:"size:255"`
	Body      string    `gorm:"type:text"`
	Status    string    `gorm:"not null;size:20"`
	Error     string    `gorm:"size:512"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
