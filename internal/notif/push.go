package notif

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"camerpulse/internal/common"
	"camerpulse/internal/config"
	"camerpulse/internal/dbsql"
)

// ErrNoDevices means the recipient has no active push token.
var ErrNoDevices = errors.New("no active devices")

type PushMessage struct {
	Title        string
	Body         string
	Data         map[string]string
	HighPriority bool
}

type PushSender interface {
	// SendPush fans out to every active device and returns how many
	// accepted the message.
	SendPush(ctx context.Context, userID string, msg PushMessage) (int, error)
}

// MulticastClient is the part of *messaging.Client used for delivery.
type MulticastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// NewFirebaseMessaging returns nil, nil when push delivery is disabled.
func NewFirebaseMessaging(ctx context.Context, cfg *config.Config) (*messaging.Client, error) {
	if !cfg.Firebase.Enabled {
		return nil, nil
	}

	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFilePath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFilePath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return client, nil
}

type fcmPushSender struct {
	client  MulticastClient
	devices DeviceRepository
	logger  *slog.Logger
}

// NewFCMPushSender returns nil when client is nil.
func NewFCMPushSender(client *messaging.Client, devices DeviceRepository, logger *slog.Logger) PushSender {
	if client == nil {
		return nil
	}
	return newFCMPushSender(client, devices, logger)
}

func newFCMPushSender(client MulticastClient, devices DeviceRepository, logger *slog.Logger) *fcmPushSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &fcmPushSender{client: client, devices: devices, logger: logger}
}

func (f *fcmPushSender) SendPush(ctx context.Context, userID string, msg PushMessage) (int, error) {
	devices, err := f.devices.ActiveByUserID(ctx, userID)
	if err != nil {
		return 0, common.Remote("load devices", err)
	}
	if len(devices) == 0 {
		return 0, ErrNoDevices
	}

	tokens := make([]string, len(devices))
	for i, d := range devices {
		tokens[i] = d.DeviceToken
	}

	message := &messaging.MulticastMessage{
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data:   msg.Data,
		Tokens: tokens,
	}
	if msg.HighPriority {
		message.Android = &messaging.AndroidConfig{Priority: "high"}
		message.APNS = &messaging.APNSConfig{Headers: map[string]string{"apns-priority": "10"}}
	}

	response, err := f.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return 0, common.Remote("send push", err)
	}

	f.handleFailedTokens(ctx, response, devices)

	f.logger.Info("push sent", "user_id", userID, "success", response.SuccessCount, "failure", response.FailureCount)
	if response.SuccessCount == 0 {
		return 0, fmt.Errorf("push rejected by all %d devices: %w", len(devices), common.ErrTransient)
	}
	return response.SuccessCount, nil
}

// handleFailedTokens deactivates tokens FCM reports as unregistered or
// malformed.
func (f *fcmPushSender) handleFailedTokens(ctx context.Context, response *messaging.BatchResponse, devices []*dbsql.Device) {
	for i, result := range response.Responses {
		if result.Success || i >= len(devices) {
			continue
		}
		if !messaging.IsUnregistered(result.Error) && !messaging.IsInvalidArgument(result.Error) {
			continue
		}

		token := devices[i].DeviceToken
		if err := f.devices.Deactivate(ctx, token); err != nil {
			f.logger.Warn("failed to deactivate token", "error", err)
			continue
		}
		f.logger.Info("deactivated invalid push token", "user_id", devices[i].UserID)
	}
}
