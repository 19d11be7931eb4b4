// internal/models/notification.go
package models

// StaffNotification is the outcome of alerting staff about a new status record.
type StaffNotification struct {
	RecordID  string `json:"recordId"`
	Channel   string `json:"channel"` // "email", "sms"
	Status    string `json:"status"`  // "sent", "failed", "disabled"
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}
