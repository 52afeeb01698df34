// Package notif delivers out-of-band notifications over exactly one
// declared channel, honouring the recipient's preferences.
package notif

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"camerpulse/internal/common"
	"camerpulse/internal/config"
	"camerpulse/internal/dbsql"
)

const deliveryFailedToast = "We couldn't deliver a notification. Please try again later."

var validPlatforms = map[string]bool{"ios": true, "android": true, "web": true}

type Result struct {
	ID      string                    `json:"id"`
	Status  common.NotificationStatus `json:"status"`
	Channel common.DeliveryChannel    `json:"channel"`
	Reason  string                    `json:"reason,omitempty"`
}

type Dispatcher struct {
	prefs   PreferenceRepository
	devices DeviceRepository
	logs    NotificationLogRepository
	email   EmailSender
	push    PushSender
	toaster common.Toaster
	appURL  string
	logger  *slog.Logger
	newID   func() string
}

// NewDispatcher wires the senders; a nil sender means that channel is
// disabled and events declaring it are skipped.
func NewDispatcher(
	cfg *config.Config,
	prefs PreferenceRepository,
	devices DeviceRepository,
	logs NotificationLogRepository,
	email EmailSender,
	push PushSender,
	toaster common.Toaster,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		prefs:   prefs,
		devices: devices,
		logs:    logs,
		email:   email,
		push:    push,
		toaster: toaster,
		appURL:  strings.TrimRight(cfg.Notification.AppURL, "/"),
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// SendNotification delivers ev on its declared channel. Disabled
// categories or channels and recipients without devices are skipped
// without error. Failures are never retried.
func (d *Dispatcher) SendNotification(ctx context.Context, ev common.NotificationEvent) (Result, error) {
	result := Result{ID: d.newID(), Channel: ev.Channel}

	if err := validateEvent(ev); err != nil {
		result.Status = common.StatusFailed
		result.Reason = err.Error()
		return result, err
	}

	pref, err := d.prefs.Get(ctx, ev.RecipientID)
	if err != nil {
		return d.fail(ctx, ev, result, common.Remote("load preferences", err))
	}
	if !pref.AllowsCategory(ev.Category) {
		return d.skip(ctx, ev, result, "category disabled"), nil
	}
	if !pref.AllowsChannel(ev.Channel) {
		return d.skip(ctx, ev, result, "channel disabled"), nil
	}

	subject := subjectFor(ev)
	switch ev.Channel {
	case common.ChannelEmail:
		if d.email == nil {
			return d.skip(ctx, ev, result, "email delivery unavailable"), nil
		}
		err = d.sendEmail(ctx, ev, subject)
	case common.ChannelPush:
		if d.push == nil {
			return d.skip(ctx, ev, result, "push delivery unavailable"), nil
		}
		err = d.sendPush(ctx, ev, subject)
	}

	if errors.Is(err, ErrNoDevices) {
		return d.skip(ctx, ev, result, "no active devices"), nil
	}
	if err != nil {
		return d.fail(ctx, ev, result, err)
	}

	result.Status = common.StatusSent
	d.record(ctx, ev, result, subject)
	d.logger.Info("📨 notification sent", "id", result.ID, "category", ev.Category, "channel", ev.Channel, "user_id", ev.RecipientID)
	return result, nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, ev common.NotificationEvent, subject string) error {
	html, err := renderEmail(ev, subject, d.link(ev))
	if err != nil {
		return err
	}
	return d.email.SendEmail(ctx, EmailMessage{
		To:           ev.RecipientEmail,
		Subject:      subject,
		HTML:         html,
		HighPriority: ev.Priority == common.PriorityHigh,
	})
}

func (d *Dispatcher) sendPush(ctx context.Context, ev common.NotificationEvent, subject string) error {
	data := map[string]string{
		"category": string(ev.Category),
		"user_id":  ev.RecipientID,
	}
	for k, v := range ev.Metadata {
		data[k] = v
	}
	if link := d.link(ev); link != "" {
		data["link"] = link
	}

	_, err := d.push.SendPush(ctx, ev.RecipientID, PushMessage{
		Title:        subject,
		Body:         pushBody(ev),
		Data:         data,
		HighPriority: ev.Priority == common.PriorityHigh,
	})
	return err
}

func (d *Dispatcher) skip(ctx context.Context, ev common.NotificationEvent, result Result, reason string) Result {
	result.Status = common.StatusSkipped
	result.Reason = reason
	d.record(ctx, ev, result, subjectFor(ev))
	d.logger.Info("notification skipped", "id", result.ID, "category", ev.Category, "reason", reason, "user_id", ev.RecipientID)
	return result
}

func (d *Dispatcher) fail(ctx context.Context, ev common.NotificationEvent, result Result, err error) (Result, error) {
	if !errors.Is(err, common.ErrTransient) {
		err = fmt.Errorf("%w: %w", common.ErrTransient, err)
	}
	result.Status = common.StatusFailed
	result.Reason = err.Error()
	d.record(ctx, ev, result, subjectFor(ev))
	d.logger.Error("❌ notification failed", "id", result.ID, "category", ev.Category, "channel", ev.Channel, "error", err)

	if d.toaster != nil {
		d.toaster.Toast(ctx, ev.RecipientID, deliveryFailedToast)
	}
	return result, fmt.Errorf("failed to deliver %s notification: %w", ev.Category, err)
}

// record writes the outcome to the delivery log. Failures only get logged.
func (d *Dispatcher) record(ctx context.Context, ev common.NotificationEvent, result Result, subject string) {
	if d.logs == nil {
		return
	}
	row := &dbsql.Notification{
		ID:       result.ID,
		UserID:   ev.RecipientID,
		Category: string(ev.Category),
		Channel:  string(ev.Channel),
		Subject:  subject,
		Body:     ev.Body,
		Status:   string(result.Status),
		Error:    truncate(result.Reason, 512),
	}
	if err := d.logs.Create(ctx, row); err != nil {
		d.logger.Warn("failed to record notification", "id", result.ID, "error", err)
	}
}

func (d *Dispatcher) link(ev common.NotificationEvent) string {
	switch {
	case ev.Link == "":
		return ""
	case strings.HasPrefix(ev.Link, "http://"), strings.HasPrefix(ev.Link, "https://"):
		return ev.Link
	default:
		return d.appURL + "/" + strings.TrimLeft(ev.Link, "/")
	}
}

func (d *Dispatcher) GetPreferences(ctx context.Context, userID string) (*dbsql.NotificationPreference, error) {
	if err := common.ValidateID("user id", userID); err != nil {
		return nil, err
	}
	pref, err := d.prefs.Get(ctx, userID)
	if err != nil {
		return nil, common.Remote("load preferences", err)
	}
	return pref, nil
}

func (d *Dispatcher) UpdatePreferences(ctx context.Context, pref *dbsql.NotificationPreference) error {
	if pref == nil {
		return fmt.Errorf("preferences are required: %w", common.ErrValidation)
	}
	if err := common.ValidateID("user id", pref.UserID); err != nil {
		return err
	}
	return common.Remote("save preferences", d.prefs.Save(ctx, pref))
}

func (d *Dispatcher) RegisterDevice(ctx context.Context, userID, deviceToken, platform string) error {
	if err := common.ValidateID("user id", userID); err != nil {
		return err
	}
	if err := common.ValidateID("device token", deviceToken); err != nil {
		return err
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	if !validPlatforms[platform] {
		return fmt.Errorf("unsupported platform %q: %w", platform, common.ErrValidation)
	}
	return common.Remote("register device", d.devices.Register(ctx, userID, deviceToken, platform))
}

func (d *Dispatcher) History(ctx context.Context, userID string, limit, offset int) ([]*common.NotificationResponse, error) {
	if err := common.ValidateID("user id", userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := d.logs.ByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, common.Remote("load notifications", err)
	}

	responses := make([]*common.NotificationResponse, len(rows))
	for i, n := range rows {
		responses[i] = &common.NotificationResponse{
			ID:        n.ID,
			Category:  n.Category,
			Channel:   n.Channel,
			Subject:   n.Subject,
			Body:      n.Body,
			Status:    n.Status,
			Error:     n.Error,
			CreatedAt: n.CreatedAt,
		}
	}
	return responses, nil
}

func validateEvent(ev common.NotificationEvent) error {
	if err := common.ValidateID("recipient id", ev.RecipientID); err != nil {
		return err
	}
	if !ev.Category.IsValid() {
		return fmt.Errorf("unknown category %q: %w", ev.Category, common.ErrValidation)
	}
	if !ev.Channel.IsValid() {
		return fmt.Errorf("unknown channel %q: %w", ev.Channel, common.ErrValidation)
	}
	if ev.Channel == common.ChannelEmail {
		if err := common.ValidateEmail(ev.RecipientEmail); err != nil {
			return err
		}
	}
	if ev.Priority != "" && ev.Priority != common.PriorityNormal && ev.Priority != common.PriorityHigh {
		return fmt.Errorf("unknown priority %q: %w", ev.Priority, common.ErrValidation)
	}
	return nil
}

func subjectFor(ev common.NotificationEvent) string {
	if ev.Subject != "" {
		return ev.Subject
	}
	switch ev.Category {
	case common.CategoryClaimStatusChange:
		return fmt.Sprintf("Claim update: %s", ev.EntityName)
	case common.CategoryReportFiled:
		return fmt.Sprintf("New report on %s", ev.EntityName)
	case common.CategoryDirectMessage:
		return "You have a new message"
	default:
		return "CamerPulse notification"
	}
}

func pushBody(ev common.NotificationEvent) string {
	if ev.Body != "" {
		return ev.Body
	}
	if ev.Category == common.CategoryClaimStatusChange && ev.Status != "" {
		return fmt.Sprintf("%s is now %s", ev.EntityName, ev.Status)
	}
	return ""
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
