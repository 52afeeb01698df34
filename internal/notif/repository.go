package notif

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"camerpulse/internal/dbsql"
)

type PreferenceRepository interface {
	// Get returns the stored toggles, or all-enabled defaults when the user
	// never saved any.
	Get(ctx context.Context, userID string) (*dbsql.NotificationPreference, error)
	Save(ctx context.Context, pref *dbsql.NotificationPreference) error
}

type DeviceRepository interface {
	Register(ctx context.Context, userID, deviceToken, platform string) error
	ActiveByUserID(ctx context.Context, userID string) ([]*dbsql.Device, error)
	Deactivate(ctx context.Context, deviceToken string) error
}

type NotificationLogRepository interface {
	Create(ctx context.Context, n *dbsql.Notification) error
	ByUserID(ctx context.Context, userID string, limit, offset int) ([]*dbsql.Notification, error)
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(ctx context.Context, userID string) (*dbsql.NotificationPreference, error) {
	var pref dbsql.NotificationPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dbsql.DefaultPreference(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return &pref, nil
}

func (r *preferenceRepository) Save(ctx context.Context, pref *dbsql.NotificationPreference) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(pref).Error
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

type deviceRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Register stores the token, moving it to userID and reactivating it if it
// was already known.
func (r *deviceRepository) Register(ctx context.Context, userID, deviceToken, platform string) error {
	device := &dbsql.Device{
		DeviceToken: deviceToken,
		UserID:      userID,
		Platform:    platform,
		IsActive:    true,
		LastActive:  r.now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "is_active", "last_active"}),
	}).Create(device).Error
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (r *deviceRepository) ActiveByUserID(ctx context.Context, userID string) ([]*dbsql.Device, error) {
	var devices []*dbsql.Device
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("last_active DESC").
		Find(&devices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load devices: %w", err)
	}
	return devices, nil
}

func (r *deviceRepository) Deactivate(ctx context.Context, deviceToken string) error {
	err := r.db.WithContext(ctx).
		Model(&dbsql.Device{}).
		Where("device_token = ?", deviceToken).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate device: %w", err)
	}
	return nil
}

type notificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

func (r *notificationLogRepository) Create(ctx context.Context, n *dbsql.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to write notification log: %w", err)
	}
	return nil
}

func (r *notificationLogRepository) ByUserID(ctx context.Context, userID string, limit, offset int) ([]*dbsql.Notification, error) {
	var rows []*dbsql.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	return rows, nil
}
