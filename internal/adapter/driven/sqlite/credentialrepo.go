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
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// Rows hold ciphertext only; encryption and decryption happen in the
// application layer with the owner's master password, which this adapter
// never sees.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Upsert inserts or replaces the credential record for its subscription.
// The UNIQUE constraint on subscription_id plus ON CONFLICT gives whole-record
// last-write-wins; id and created_at survive an update.
func (r *CredentialRepo) Upsert(ctx context.Context, record model.CredentialRecord) (*model.CredentialRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	const query = `
		INSERT INTO subscription_credentials
			(id, subscription_id, user_id, encrypted_username, encrypted_password,
			 encrypted_notes, encryption_key_hint, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(subscription_id) DO UPDATE SET
			user_id = excluded.user_id,
			encrypted_username = excluded.encrypted_username,
			encrypted_password = excluded.encrypted_password,
			encrypted_notes = excluded.encrypted_notes,
			encryption_key_hint = excluded.encryption_key_hint,
			updated_at = excluded.updated_at
	`

	now := nowString()
	_, err := r.db.Writer.ExecContext(ctx, query,
		record.ID, record.SubscriptionID, record.OwnerUserID,
		record.EncryptedUsername, record.EncryptedPassword,
		nullable(record.EncryptedNotes), nullable(record.EncryptionKeyHint),
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert credentials for subscription %s: %w", record.SubscriptionID, err)
	}

	return r.Get(ctx, record.SubscriptionID)
}

// Get retrieves the credential record for a subscription. Returns (nil, nil)
// when no record exists.
func (r *CredentialRepo) Get(ctx context.Context, subscriptionID string) (*model.CredentialRecord, error) {
	const query = `
		SELECT id, subscription_id, user_id, encrypted_username, encrypted_password,
		       encrypted_notes, encryption_key_hint, created_at, updated_at
		FROM subscription_credentials
		WHERE subscription_id = ?
	`

	record, err := scanCredentialRecord(r.db.Reader.QueryRowContext(ctx, query, subscriptionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credentials for subscription %s: %w", subscriptionID, err)
	}

	return record, nil
}

// Delete removes the credential record for a subscription. Deleting a
// non-existent record is a no-op.
func (r *CredentialRepo) Delete(ctx context.Context, subscriptionID string) error {
	const query = `DELETE FROM subscription_credentials WHERE subscription_id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, subscriptionID); err != nil {
		return fmt.Errorf("delete credentials for subscription %s: %w", subscriptionID, err)
	}
	return nil
}

func scanCredentialRecord(s scanner) (*model.CredentialRecord, error) {
	var record model.CredentialRecord
	var notes, hint sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&record.ID, &record.SubscriptionID, &record.OwnerUserID,
		&record.EncryptedUsername, &record.EncryptedPassword,
		&notes, &hint, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.EncryptedNotes = notes.String
	record.EncryptionKeyHint = hint.String

	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if record.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &record, nil
}

// nullable maps "" to NULL so optional columns stay NULL instead of holding
// empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
