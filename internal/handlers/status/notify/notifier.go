// Package notify alerts staff when a new status record arrives.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/microcosm-cc/bluemonday"

	awsclients "maglinc-site/internal/common/aws"
	"maglinc-site/internal/common/config"
	"maglinc-site/internal/common/errors"
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/models"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"

	// SMS bodies longer than this are truncated.
	maxSMSLength = 140
)

// Notifier is what the status handler calls after a record is stored.
type Notifier interface {
	Notify(ctx context.Context, rec models.StatusRecord) []models.StaffNotification
}

// Nop notifies nobody.
type Nop struct{}

func (Nop) Notify(context.Context, models.StatusRecord) []models.StaffNotification {
	return nil
}

// StaffNotifier emails and texts staff through SES and SNS. A channel is
// skipped when disabled in config or when its client is nil.
type StaffNotifier struct {
	ses    awsclients.SESService
	sns    awsclients.SNSService
	cfg    config.NotificationConfig
	logger logger.Logger
}

func NewStaffNotifier(sesClient awsclients.SESService, snsClient awsclients.SNSService, cfg config.NotificationConfig, log logger.Logger) *StaffNotifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &StaffNotifier{ses: sesClient, sns: snsClient, cfg: cfg, logger: log}
}

// Enabled reports whether any channel is switched on.
func Enabled(cfg config.NotificationConfig) bool {
	return cfg.Email.Enabled || cfg.SMS.Enabled
}

// Notify sends on every enabled channel. Failures are logged and reported
// in the result, never returned.
func (n *StaffNotifier) Notify(ctx context.Context, rec models.StatusRecord) []models.StaffNotification {
	return []models.StaffNotification{
		n.sendEmail(ctx, rec),
		n.sendSMS(ctx, rec),
	}
}

func (n *StaffNotifier) sendEmail(ctx context.Context, rec models.StatusRecord) models.StaffNotification {
	result := models.StaffNotification{RecordID: rec.ID, Channel: ChannelEmail, Status: StatusDisabled}
	if !n.cfg.Email.Enabled || n.ses == nil {
		return result
	}

	out, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{n.cfg.Email.ToEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String("New website inquiry")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(emailBody(rec))},
				Html: &types.Content{Data: aws.String(emailHTML(rec))},
			},
		},
		Source: aws.String(n.cfg.Email.FromEmail),
	})
	if err != nil {
		return n.failed(result, err)
	}

	result.Status = StatusSent
	if out != nil && out.MessageId != nil {
		result.MessageID = *out.MessageId
	}
	return result
}

func (n *StaffNotifier) sendSMS(ctx context.Context, rec models.StatusRecord) models.StaffNotification {
	result := models.StaffNotification{RecordID: rec.ID, Channel: ChannelSMS, Status: StatusDisabled}
	if !n.cfg.SMS.Enabled || n.sns == nil {
		return result
	}

	out, err := n.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(n.cfg.SMS.PhoneNumber),
		Message:     aws.String(smsBody(rec)),
	})
	if err != nil {
		return n.failed(result, err)
	}

	result.Status = StatusSent
	if out != nil && out.MessageId != nil {
		result.MessageID = *out.MessageId
	}
	return result
}

func (n *StaffNotifier) failed(result models.StaffNotification, err error) models.StaffNotification {
	stdErr := errors.NewNotificationSendFailedError(result.Channel, err)
	n.logger.Error("Failed to notify staff", map[string]interface{}{
		"recordId":  result.RecordID,
		"channel":   result.Channel,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})
	result.Status = StatusFailed
	result.Error = stdErr.Details
	return result
}

func emailBody(rec models.StatusRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new inquiry was submitted on the website.\n\n")
	fmt.Fprintf(&b, "Record: %s\n", rec.ID)
	fmt.Fprintf(&b, "Received: %s\n\n", rec.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))
	b.WriteString(rec.ClientName)
	b.WriteString("\n")
	return b.String()
}

var (
	emailPolicyOnce sync.Once
	emailPolicy     *bluemonday.Policy
)

// emailSanitizer allows only the few elements the HTML body is built from.
func emailSanitizer() *bluemonday.Policy {
	emailPolicyOnce.Do(func() {
		emailPolicy = bluemonday.NewPolicy()
		emailPolicy.AllowElements("p", "br", "strong", "pre")
	})
	return emailPolicy
}

// emailHTML renders the HTML alternative of the staff email. The client
// name is escaped, so markup a visitor typed shows up as text.
func emailHTML(rec models.StatusRecord) string {
	var b strings.Builder
	b.WriteString("<p><strong>A new inquiry was submitted on the website.</strong></p>")
	fmt.Fprintf(&b, "<p>Record: %s<br>", html.EscapeString(rec.ID))
	fmt.Fprintf(&b, "Received: %s</p>", rec.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "<pre>%s</pre>", html.EscapeString(rec.ClientName))
	return emailSanitizer().Sanitize(b.String())
}

func smsBody(rec models.StatusRecord) string {
	msg := "New inquiry: " + rec.ClientName
	if r := []rune(msg); len(r) > maxSMSLength {
		msg = string(r[:maxSMSLength-3]) + "..."
	}
	return msg
}
