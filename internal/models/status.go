// internal/models/status.go
package models

import "time"

// StatusRecord is one stored client_name submission.
type StatusRecord struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatusPayload is the body accepted by POST /api/status.
type StatusPayload struct {
	ClientName string `json:"client_name"`
}
