package driven

import (
	"context"

	"github.com/subcircle/subcircle/internal/domain/model"
)

// NotificationStore defines the driven port for notifications and per-user
// notification preferences.
type NotificationStore interface {
	// Create inserts a notification and returns the stored form.
	Create(ctx context.Context, n model.Notification) (*model.Notification, error)

	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Notification, error)

	// MarkRead marks one notification read. Scoped to the user so one user
	// cannot mark another's notifications.
	MarkRead(ctx context.Context, userID, notificationID string) error

	// MarkAllRead marks all of a user's notifications read and returns the
	// number affected.
	MarkAllRead(ctx context.Context, userID string) (int64, error)

	// GetPreferences retrieves a user's saved preferences. Returns (nil, nil)
	// when the user has never saved any; callers apply defaults.
	GetPreferences(ctx context.Context, userID string) (*model.NotificationPreferences, error)

	// UpsertPreferences inserts or replaces a user's preferences.
	UpsertPreferences(ctx context.Context, prefs model.NotificationPreferences) (*model.NotificationPreferences, error)
}
