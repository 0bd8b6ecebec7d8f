package model

import "time"

// NotificationPriority orders notifications for display.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

// NotificationCategory groups notifications for preference filtering.
type NotificationCategory string

const (
	CategoryPartner      NotificationCategory = "partner"
	CategorySubscription NotificationCategory = "subscription"
	CategorySecurity     NotificationCategory = "security"
	CategorySystem       NotificationCategory = "system"
)

// Notification is a single in-app notification. Data carries optional
// type-specific JSON payload (e.g. the subscription id a share event refers
// to); ActionURL is a client-side deep link.
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Message   string
	Data      string // JSON, empty when none
	Read      bool
	Priority  NotificationPriority
	Category  NotificationCategory
	ActionURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
