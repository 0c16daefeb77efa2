package types

import "time"

type NotificationType string

const (
	NotificationTypeEmergency   NotificationType = "emergency"
	NotificationTypeReminder    NotificationType = "reminder"
	NotificationTypeMessage     NotificationType = "message"
	NotificationTypeAchievement NotificationType = "achievement"
)

type Notification struct {
	ID        string            `db:"id"`
	UserID    string            `db:"user_id"`
	Title     string            `db:"title"`
	Message   string            `db:"message"`
	Type      *NotificationType `db:"type"`
	IsRead    *bool             `db:"is_read"`
	CreatedAt time.Time         `db:"created_at"`
}
