package domain

import "time"

type NotificationType string

const (
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationUrgent  NotificationType = "urgent"
)

// NotificationAction is an optional call to action; Target is the in-app
// route the client navigates to.
type NotificationAction struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

// NotificationItem is an advisory derived from customers and jobs. ID names
// the kind of notification (e.g. "overdue-payments"), not the instance.
type NotificationItem struct {
	ID          string              `json:"id"`
	Type        NotificationType    `json:"type"`
	Title       string              `json:"title"`
	Message     string              `json:"message"`
	Action      *NotificationAction `json:"action,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
	Dismissible bool                `json:"dismissible"`
	Read        bool                `json:"read"`
}

// Dismissal records that notification kind ID was dismissed on Date.
type Dismissal struct {
	ID   string `json:"id"`
	Date Date   `json:"date"`
}
