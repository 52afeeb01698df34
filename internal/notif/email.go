package notif

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"camerpulse/internal/common"
	"camerpulse/internal/config"
)

type EmailMessage struct {
	To           string
	Subject      string
	HTML         string
	HighPriority bool
}

type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

type resendEmailSender struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

// NewResendEmailSender returns nil when email delivery is disabled.
func NewResendEmailSender(cfg *config.Config, logger *slog.Logger) EmailSender {
	if !cfg.Email.Enabled || cfg.Email.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return newResendEmailSender(resend.NewClient(cfg.Email.APIKey), cfg.Email, logger)
}

func newResendEmailSender(client *resend.Client, cfg config.EmailConfig, logger *slog.Logger) *resendEmailSender {
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return &resendEmailSender{client: client, from: from, logger: logger}
}

func (s *resendEmailSender) SendEmail(ctx context.Context, msg EmailMessage) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.HighPriority {
		params.Headers = map[string]string{"X-Priority": "1"}
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return common.Remote("send email", err)
	}
	s.logger.Debug("email sent", "id", sent.Id, "to", msg.To)
	return nil
}

// Per-category bodies, each wrapped by the "layout" template.
const emailTemplateText = `
{{define "layout"}}<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <h2>{{.Subject}}</h2>
  {{.Content}}
  {{if .Link}}<p><a href="{{.Link}}">Open CamerPulse</a></p>{{end}}
  <p style="font-size: 12px; color: #7b8794;">You can change which emails you receive in your notification settings.</p>
</body>
</html>{{end}}

{{define "claim-status-change"}}<p>Your claim for <strong>{{.EntityName}}</strong> is now <strong>{{.Status}}</strong>.</p>
{{if .Body}}<p>{{.Body}}</p>{{end}}{{end}}

{{define "report-filed"}}<p>A new report was filed about <strong>{{.EntityName}}</strong>.</p>
{{if .Body}}<p>{{.Body}}</p>{{end}}{{end}}

{{define "direct-message"}}<p>{{.Body}}</p>{{end}}

{{define "generic"}}<p>{{.Body}}</p>{{end}}
`

var emailTemplates = template.Must(template.New("email").Parse(emailTemplateText))

type emailContent struct {
	Subject    string
	EntityName string
	Status     string
	Body       string
	Link       string
	Content    template.HTML
}

func renderEmail(ev common.NotificationEvent, subject, link string) (string, error) {
	data := emailContent{
		Subject:    subject,
		EntityName: ev.EntityName,
		Status:     ev.Status,
		Body:       ev.Body,
		Link:       link,
	}

	var content bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&content, string(ev.Category), data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", ev.Category, err)
	}
	// content was produced by html/template and is already escaped
	data.Content = template.HTML(content.String())

	var page bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&page, "layout", data); err != nil {
		return "", fmt.Errorf("failed to render email layout: %w", err)
	}
	return page.String(), nil
}
