package models

import "time"

// TestSendStatus defines the set of allowed statuses for a TestSend.
type TestSendStatus string

const (
	TestSendStatusSent   TestSendStatus = "sent"
	TestSendStatusFailed TestSendStatus = "failed"
)

// TestSend records one attempt to email a rendered template to a recipient
// for review.
type TestSend struct {
	ID           string         `json:"id"`
	TemplateID   string         `json:"template_id"`
	Recipient    string         `json:"recipient"`
	Provider     string         `json:"provider"`
	Status       TestSendStatus `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
