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
var _ driven.ServiceStore = (*ServiceRepo)(nil)

// ServiceRepo is the SQLite implementation of the ServiceStore port.
type ServiceRepo struct {
	db *DB
}

// NewServiceRepo creates a new ServiceRepo backed by the given DB.
func NewServiceRepo(db *DB) *ServiceRepo {
	return &ServiceRepo{db: db}
}

const serviceColumns = `id, name, logo_url, category, monthly_price, website_url, description, created_at, updated_at`

// Create inserts a catalog entry.
func (r *ServiceRepo) Create(ctx context.Context, svc model.StreamingService) (*model.StreamingService, error) {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}

	const query = `
		INSERT INTO streaming_services
			(id, name, logo_url, category, monthly_price, website_url, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := nowString()
	_, err := r.db.Writer.ExecContext(ctx, query,
		svc.ID, svc.Name, nullable(svc.LogoURL), nullable(svc.Category),
		svc.MonthlyPrice, nullable(svc.WebsiteURL), nullable(svc.Description),
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create service %q: %w", svc.Name, err)
	}

	return r.Get(ctx, svc.ID)
}

// Get retrieves a catalog entry by id. Returns (nil, nil) when not found.
func (r *ServiceRepo) Get(ctx context.Context, id string) (*model.StreamingService, error) {
	query := `SELECT ` + serviceColumns + ` FROM streaming_services WHERE id = ?`

	svc, err := scanService(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get service %s: %w", id, err)
	}

	return svc, nil
}

// List returns the whole catalog ordered by name.
func (r *ServiceRepo) List(ctx context.Context) ([]model.StreamingService, error) {
	query := `SELECT ` + serviceColumns + ` FROM streaming_services ORDER BY name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []model.StreamingService
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, *svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return services, nil
}

func scanService(s scanner) (*model.StreamingService, error) {
	var svc model.StreamingService
	var logoURL, category, websiteURL, description sql.NullString
	var price sql.NullFloat64
	var createdAt, updatedAt string

	err := s.Scan(&svc.ID, &svc.Name, &logoURL, &category, &price,
		&websiteURL, &description, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	svc.LogoURL = logoURL.String
	svc.Category = category.String
	svc.MonthlyPrice = price.Float64
	svc.WebsiteURL = websiteURL.String
	svc.Description = description.String

	if svc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if svc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &svc, nil
}
