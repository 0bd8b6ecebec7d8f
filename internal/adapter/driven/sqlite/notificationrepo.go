package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/subcircle/subcircle/internal/domain/model"
	"github.com/subcircle/subcircle/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.NotificationStore = (*NotificationRepo)(nil)

// NotificationRepo is the SQLite implementation of the NotificationStore port.
type NotificationRepo struct {
	db *DB
}

// NewNotificationRepo creates a new NotificationRepo backed by the given DB.
func NewNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

const notificationColumns = `id, user_id, type, title, message, data, read, priority, category, action_url, created_at, updated_at`

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n model.Notification) (*model.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Priority == "" {
		n.Priority = model.PriorityLow
	}
	if n.Category == "" {
		n.Category = model.CategoryPartner
	}

	const query = `
		INSERT INTO notifications
			(id, user_id, type, title, message, data, read, priority, category, action_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := nowString()
	_, err := r.db.Writer.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, nullable(n.Data),
		n.Read, string(n.Priority), string(n.Category), nullable(n.ActionURL),
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	return r.get(ctx, n.ID)
}

func (r *NotificationRepo) get(ctx context.Context, id string) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`

	n, err := scanNotification(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification %s: %w", id, err)
	}

	return n, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead marks one of the user's notifications read.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	const query = `UPDATE notifications SET read = 1, updated_at = ? WHERE id = ? AND user_id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, nowString(), notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", notificationID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", notificationID, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead marks all of a user's notifications read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	const query = `UPDATE notifications SET read = 1, updated_at = ? WHERE user_id = ? AND read = 0`

	res, err := r.db.Writer.ExecContext(ctx, query, nowString(), userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return affected, nil
}

// GetPreferences retrieves a user's saved preferences. Returns (nil, nil) when
// the user has never saved any.
func (r *NotificationRepo) GetPreferences(ctx context.Context, userID string) (*model.NotificationPreferences, error) {
	const query = `
		SELECT id, user_id, email_enabled, push_enabled, partner_notifications,
		       subscription_notifications, security_notifications, system_notifications,
		       email_frequency, quiet_hours_enabled, quiet_hours_start, quiet_hours_end,
		       created_at, updated_at
		FROM notification_preferences
		WHERE user_id = ?
	`

	prefs, err := scanPreferences(r.db.Reader.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences for %s: %w", userID, err)
	}

	return prefs, nil
}

// UpsertPreferences inserts or replaces a user's preferences, keyed by the
// UNIQUE user_id.
func (r *NotificationRepo) UpsertPreferences(ctx context.Context, prefs model.NotificationPreferences) (*model.NotificationPreferences, error) {
	if prefs.ID == "" {
		prefs.ID = uuid.NewString()
	}

	const query = `
		INSERT INTO notification_preferences
			(id, user_id, email_enabled, push_enabled, partner_notifications,
			 subscription_notifications, security_notifications, system_notifications,
			 email_frequency, quiet_hours_enabled, quiet_hours_start, quiet_hours_end,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email_enabled = excluded.email_enabled,
			push_enabled = excluded.push_enabled,
			partner_notifications = excluded.partner_notifications,
			subscription_notifications = excluded.subscription_notifications,
			security_notifications = excluded.security_notifications,
			system_notifications = excluded.system_notifications,
			email_frequency = excluded.email_frequency,
			quiet_hours_enabled = excluded.quiet_hours_enabled,
			quiet_hours_start = excluded.quiet_hours_start,
			quiet_hours_end = excluded.quiet_hours_end,
			updated_at = excluded.updated_at
	`

	now := nowString()
	_, err := r.db.Writer.ExecContext(ctx, query,
		prefs.ID, prefs.UserID, prefs.EmailEnabled, prefs.PushEnabled,
		prefs.PartnerNotifications, prefs.SubscriptionNotifications,
		prefs.SecurityNotifications, prefs.SystemNotifications,
		prefs.EmailFrequency, prefs.QuietHoursEnabled,
		prefs.QuietHoursStart, prefs.QuietHoursEnd,
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert preferences for %s: %w", prefs.UserID, err)
	}

	return r.GetPreferences(ctx, prefs.UserID)
}

func scanNotification(s scanner) (*model.Notification, error) {
	var n model.Notification
	var data, actionURL sql.NullString
	var priority, category string
	var createdAt, updatedAt string

	err := s.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &data,
		&n.Read, &priority, &category, &actionURL, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	n.Data = data.String
	n.ActionURL = actionURL.String
	n.Priority = model.NotificationPriority(priority)
	n.Category = model.NotificationCategory(category)

	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &n, nil
}

func scanPreferences(s scanner) (*model.NotificationPreferences, error) {
	var p model.NotificationPreferences
	var createdAt, updatedAt string

	err := s.Scan(&p.ID, &p.UserID, &p.EmailEnabled, &p.PushEnabled,
		&p.PartnerNotifications, &p.SubscriptionNotifications,
		&p.SecurityNotifications, &p.SystemNotifications,
		&p.EmailFrequency, &p.QuietHoursEnabled,
		&p.QuietHoursStart, &p.QuietHoursEnd, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &p, nil
}
