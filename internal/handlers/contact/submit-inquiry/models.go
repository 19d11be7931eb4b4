package submitinquiry

import (
	"maglinc-site/internal/common/logger"
	"maglinc-site/internal/common/observability"
)

// Inquiry is what a prospective client types into the contact form.
type Inquiry struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Practice   string `json:"practice,omitempty"`
	CaseVolume string `json:"caseVolume,omitempty"`
	Message    string `json:"message,omitempty"`
}

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

const (
	SuccessText    = "Thank you! We'll be in touch within 24 hours."
	ErrorText      = "Something went wrong. Please try again or email us directly."
	ValidationText = "Please fill in your name and email address."
	TooLongText    = "Some of your answers are too long. Please shorten them and try again."
)

// Notification is the transient toast shown after a submit attempt.
type Notification struct {
	Kind NotificationKind `json:"kind"`
	Text string           `json:"text"`
}

func successNotification() *Notification {
	return &Notification{Kind: NotificationSuccess, Text: SuccessText}
}

func errorNotification() *Notification {
	return &Notification{Kind: NotificationError, Text: ErrorText}
}

func validationNotification() *Notification {
	return &Notification{Kind: NotificationError, Text: ValidationText}
}

func tooLongNotification() *Notification {
	return &Notification{Kind: NotificationError, Text: TooLongText}
}

// Output is the result of one successful delivery to the status endpoint.
type Output struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ClientName string `json:"clientName,omitempty"`
	StatusID   string `json:"statusId,omitempty"`
}

// APIResponse is the body returned by POST /api/inquiries.
type APIResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	StatusID string `json:"statusId,omitempty"`
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Client        StatusPoster
	Observability *observability.Observability
}
