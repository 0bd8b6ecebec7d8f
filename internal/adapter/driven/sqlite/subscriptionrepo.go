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
var _ driven.SubscriptionStore = (*SubscriptionRepo)(nil)

// SubscriptionRepo is the SQLite implementation of the SubscriptionStore port.
type SubscriptionRepo struct {
	db *DB
}

// NewSubscriptionRepo creates a new SubscriptionRepo backed by the given DB.
func NewSubscriptionRepo(db *DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

const subscriptionColumns = `id, user_id, service_id, is_active, shared_with_partners, share_credentials, created_at, updated_at`

// Create inserts a new subscription. Sharing flags are normalized before the
// write so an inconsistent pair is never persisted.
func (r *SubscriptionRepo) Create(ctx context.Context, sub model.Subscription) (*model.Subscription, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.ShareSettings = sub.ShareSettings.Normalize()

	const query = `
		INSERT INTO user_subscriptions
			(id, user_id, service_id, is_active, shared_with_partners, share_credentials, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := nowString()
	_, err := r.db.Writer.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.ServiceID, sub.IsActive,
		sub.SharedWithPartners, sub.ShareCredentials, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	return r.Get(ctx, sub.ID)
}

// Get retrieves a subscription by id. Returns (nil, nil) when not found.
func (r *SubscriptionRepo) Get(ctx context.Context, id string) (*model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions WHERE id = ?`

	sub, err := scanSubscription(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription %s: %w", id, err)
	}

	return sub, nil
}

// ListByUser returns all subscriptions owned by a user, newest first.
func (r *SubscriptionRepo) ListByUser(ctx context.Context, userID string) ([]model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions WHERE user_id = ? ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListSharedByUser returns the subscriptions a user shares with partners,
// newest first. Inactive subscriptions are excluded: a lapsed subscription is
// not offered to partners even if its flags are still set.
func (r *SubscriptionRepo) ListSharedByUser(ctx context.Context, userID string) ([]model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM user_subscriptions
		WHERE user_id = ? AND shared_with_partners = 1 AND is_active = 1
		ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// UpdateShareSettings persists both sharing flags in a single statement.
func (r *SubscriptionRepo) UpdateShareSettings(ctx context.Context, id string, settings model.ShareSettings) error {
	settings = settings.Normalize()

	const query = `
		UPDATE user_subscriptions
		SET shared_with_partners = ?, share_credentials = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := r.db.Writer.ExecContext(ctx, query,
		settings.SharedWithPartners, settings.ShareCredentials, nowString(), id,
	)
	if err != nil {
		return fmt.Errorf("update share settings for %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update share settings for %s: %w", id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetActive toggles the is_active flag.
func (r *SubscriptionRepo) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE user_subscriptions SET is_active = ?, updated_at = ? WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, active, nowString(), id); err != nil {
		return fmt.Errorf("set active for %s: %w", id, err)
	}
	return nil
}

// Delete removes a subscription. The credential record follows via FK cascade.
func (r *SubscriptionRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM user_subscriptions WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete subscription %s: %w", id, err)
	}
	return nil
}

func (r *SubscriptionRepo) list(ctx context.Context, query string, args ...any) ([]model.Subscription, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return subs, nil
}

func scanSubscription(s scanner) (*model.Subscription, error) {
	var sub model.Subscription
	var createdAt, updatedAt string

	err := s.Scan(&sub.ID, &sub.UserID, &sub.ServiceID, &sub.IsActive,
		&sub.SharedWithPartners, &sub.ShareCredentials, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if sub.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &sub, nil
}
