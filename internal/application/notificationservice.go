package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/subcircle/subcircle/internal/domain/model"
	"github.com/subcircle/subcircle/internal/domain/port/driven"
)

// NotificationService persists notifications and fans them out to the
// external push capability when the target user's preferences allow it.
// Delivery is best-effort: push failures are logged and never fail the
// operation that produced the notification.
type NotificationService struct {
	store    driven.NotificationStore
	push     driven.PushStore
	notifier driven.Notifier
	logger   *slog.Logger
}

// NewNotificationService creates a NotificationService with the required
// dependencies.
func NewNotificationService(store driven.NotificationStore, push driven.PushStore, notifier driven.Notifier, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		store:    store,
		push:     push,
		notifier: notifier,
		logger:   logger,
	}
}

// Notify stores the notification and pushes it to the user's registered
// endpoints unless preferences say otherwise (push disabled, category muted,
// or inside quiet hours). The stored notification is returned either way so
// the in-app list stays complete.
func (s *NotificationService) Notify(ctx context.Context, n model.Notification) (*model.Notification, error) {
	if n.UserID == "" || n.Title == "" || n.Message == "" {
		return nil, fmt.Errorf("%w: user id, title, and message are required", ErrValidation)
	}

	stored, err := s.store.Create(ctx, n)
	if err != nil {
		return nil, err
	}

	prefs := s.preferences(ctx, n.UserID)
	if !prefs.PushEnabled || !prefs.AllowsCategory(stored.Category) || prefs.InQuietHours(time.Now()) {
		return stored, nil
	}

	targets, err := s.push.ListByUser(ctx, n.UserID)
	if err != nil {
		s.logger.Error("list push targets failed", "user_id", n.UserID, "error", err)
		return stored, nil
	}
	if len(targets) == 0 {
		return stored, nil
	}

	if err := s.notifier.SendPush(ctx, targets, *stored); err != nil {
		s.logger.Error("push delivery failed", "user_id", n.UserID, "error", err)
	}

	return stored, nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]model.Notification, error) {
	return s.store.ListByUser(ctx, userID)
}

// MarkRead marks one of the user's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.store.MarkRead(ctx, userID, notificationID); err != nil {
		return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
	}
	return nil
}

// MarkAllRead marks all of the user's notifications read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}

// Preferences returns the user's saved preferences, or the defaults when the
// user has never saved any.
func (s *NotificationService) Preferences(ctx context.Context, userID string) (model.NotificationPreferences, error) {
	prefs, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		return model.NotificationPreferences{}, err
	}
	if prefs == nil {
		return model.DefaultPreferences(userID), nil
	}
	return *prefs, nil
}

// UpdatePreferences upserts the user's preferences.
func (s *NotificationService) UpdatePreferences(ctx context.Context, prefs model.NotificationPreferences) (*model.NotificationPreferences, error) {
	if prefs.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.store.UpsertPreferences(ctx, prefs)
}

// preferences resolves preferences for delivery decisions, falling back to
// defaults on store errors so a read failure never blocks notification
// creation.
func (s *NotificationService) preferences(ctx context.Context, userID string) model.NotificationPreferences {
	prefs, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		s.logger.Error("load preferences failed", "user_id", userID, "error", err)
		return model.DefaultPreferences(userID)
	}
	if prefs == nil {
		return model.DefaultPreferences(userID)
	}
	return *prefs
}
