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
var _ driven.PartnerStore = (*PartnerRepo)(nil)

// PartnerRepo is the SQLite implementation of the PartnerStore port.
type PartnerRepo struct {
	db *DB
}

// NewPartnerRepo creates a new PartnerRepo backed by the given DB.
func NewPartnerRepo(db *DB) *PartnerRepo {
	return &PartnerRepo{db: db}
}

const partnerColumns = `id, user_id, partner_id, status, created_at, updated_at`

// Create inserts a new connection.
func (r *PartnerRepo) Create(ctx context.Context, conn model.PartnerConnection) (*model.PartnerConnection, error) {
	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	if conn.Status == "" {
		conn.Status = model.PartnerStatusPending
	}

	const query = `
		INSERT INTO partner_connections (id, user_id, partner_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := nowString()
	_, err := r.db.Writer.ExecContext(ctx, query,
		conn.ID, conn.UserID, conn.PartnerID, string(conn.Status), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create partner connection: %w", err)
	}

	return r.Get(ctx, conn.ID)
}

// Get retrieves a connection by id. Returns (nil, nil) when not found.
func (r *PartnerRepo) Get(ctx context.Context, id string) (*model.PartnerConnection, error) {
	query := `SELECT ` + partnerColumns + ` FROM partner_connections WHERE id = ?`

	conn, err := scanPartnerConnection(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get partner connection %s: %w", id, err)
	}

	return conn, nil
}

// GetBetween retrieves the connection between two users in either direction.
// Returns (nil, nil) when none exists. Should more than one row ever exist
// for the pair, the newest wins so a stale row cannot shadow a live one.
func (r *PartnerRepo) GetBetween(ctx context.Context, userA, userB string) (*model.PartnerConnection, error) {
	query := `SELECT ` + partnerColumns + ` FROM partner_connections
		WHERE (user_id = ? AND partner_id = ?) OR (user_id = ? AND partner_id = ?)
		ORDER BY updated_at DESC, rowid DESC LIMIT 1`

	conn, err := scanPartnerConnection(r.db.Reader.QueryRowContext(ctx, query, userA, userB, userB, userA))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get partner connection between %s and %s: %w", userA, userB, err)
	}

	return conn, nil
}

// ListByUser returns every connection the user is on either side of, newest
// first.
func (r *PartnerRepo) ListByUser(ctx context.Context, userID string) ([]model.PartnerConnection, error) {
	query := `SELECT ` + partnerColumns + ` FROM partner_connections
		WHERE user_id = ? OR partner_id = ?
		ORDER BY created_at DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list partner connections: %w", err)
	}
	defer rows.Close()

	var conns []model.PartnerConnection
	for rows.Next() {
		conn, err := scanPartnerConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partner connection: %w", err)
		}
		conns = append(conns, *conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partner connections: %w", err)
	}

	return conns, nil
}

// UpdateStatus sets the connection status.
func (r *PartnerRepo) UpdateStatus(ctx context.Context, id string, status model.PartnerStatus) error {
	const query = `UPDATE partner_connections SET status = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, string(status), nowString(), id)
	if err != nil {
		return fmt.Errorf("update partner connection %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update partner connection %s: %w", id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a connection. Idempotent.
func (r *PartnerRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM partner_connections WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete partner connection %s: %w", id, err)
	}
	return nil
}

func scanPartnerConnection(s scanner) (*model.PartnerConnection, error) {
	var conn model.PartnerConnection
	var status string
	var createdAt, updatedAt string

	err := s.Scan(&conn.ID, &conn.UserID, &conn.PartnerID, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	conn.Status = model.PartnerStatus(status)

	if conn.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if conn.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &conn, nil
}
