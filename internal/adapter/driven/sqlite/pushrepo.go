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
var _ driven.PushStore = (*PushRepo)(nil)

// PushRepo is the SQLite implementation of the PushStore port.
type PushRepo struct {
	db *DB
}

// NewPushRepo creates a new PushRepo backed by the given DB.
func NewPushRepo(db *DB) *PushRepo {
	return &PushRepo{db: db}
}

const pushColumns = `id, user_id, endpoint, p256dh_key, auth_key, user_agent, created_at, updated_at`

// Upsert inserts or refreshes a push registration keyed by (user_id, endpoint).
// Re-subscribing the same endpoint rotates the keys in place.
func (r *PushRepo) Upsert(ctx context.Context, sub model.WebPushSubscription) (*model.WebPushSubscription, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	const query = `
		INSERT INTO web_push_subscriptions
			(id, user_id, endpoint, p256dh_key, auth_key, user_agent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, endpoint) DO UPDATE SET
			p256dh_key = excluded.p256dh_key,
			auth_key = excluded.auth_key,
			user_agent = excluded.user_agent,
			updated_at = excluded.updated_at
	`

	now := nowString()
	_, err := r.db.Writer.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.Endpoint, sub.P256dhKey, sub.AuthKey,
		nullable(sub.UserAgent), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert push subscription: %w", err)
	}

	return r.get(ctx, sub.UserID, sub.Endpoint)
}

func (r *PushRepo) get(ctx context.Context, userID, endpoint string) (*model.WebPushSubscription, error) {
	query := `SELECT ` + pushColumns + ` FROM web_push_subscriptions WHERE user_id = ? AND endpoint = ?`

	sub, err := scanPushSubscription(r.db.Reader.QueryRowContext(ctx, query, userID, endpoint))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}

	return sub, nil
}

// ListByUser returns all push registrations for a user.
func (r *PushRepo) ListByUser(ctx context.Context, userID string) ([]model.WebPushSubscription, error) {
	query := `SELECT ` + pushColumns + ` FROM web_push_subscriptions WHERE user_id = ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.WebPushSubscription
	for rows.Next() {
		sub, err := scanPushSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate push subscriptions: %w", err)
	}

	return subs, nil
}

// Delete removes the registration for (userID, endpoint). Idempotent.
func (r *PushRepo) Delete(ctx context.Context, userID, endpoint string) error {
	const query = `DELETE FROM web_push_subscriptions WHERE user_id = ? AND endpoint = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, userID, endpoint); err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

func scanPushSubscription(s scanner) (*model.WebPushSubscription, error) {
	var sub model.WebPushSubscription
	var userAgent sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey,
		&sub.AuthKey, &userAgent, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	sub.UserAgent = userAgent.String

	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if sub.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &sub, nil
}
