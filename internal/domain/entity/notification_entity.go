package entity

import "time"

type NotificationType string

const (
	NotificationMatch    NotificationType = "MATCH"
	NotificationDeadline NotificationType = "DEADLINE"
	NotificationSystem   NotificationType = "SYSTEM"
)

// Notification is visible to its recipient only.
type Notification struct {
	ID          string
	RecipientID string
	Title       string
	Message     string
	Type        NotificationType
	IsRead      bool
	CreatedAt   time.Time
}
