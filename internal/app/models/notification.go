package models

import "time"

type Notification struct {
	ID          string            `json:"id"`
	RecipientID string            `json:"recipientId"`
	Event       string            `json:"event"`
	Message     string            `json:"message"`
	Context     map[string]string `json:"context,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}
