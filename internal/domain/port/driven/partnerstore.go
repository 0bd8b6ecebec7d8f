package driven

import (
	"context"

	"github.com/subcircle/subcircle/internal/domain/model"
)

// PartnerStore defines the driven port for partner connection persistence.
type PartnerStore interface {
	// Create inserts a new (pending) connection and returns the stored form.
	Create(ctx context.Context, conn model.PartnerConnection) (*model.PartnerConnection, error)

	// Get retrieves a connection by id. Returns (nil, nil) when not found.
	Get(ctx context.Context, id string) (*model.PartnerConnection, error)

	// GetBetween retrieves the connection between two users regardless of
	// which side initiated it. Returns (nil, nil) when none exists.
	GetBetween(ctx context.Context, userA, userB string) (*model.PartnerConnection, error)

	// ListByUser returns every connection the user is on either side of,
	// newest first.
	ListByUser(ctx context.Context, userID string) ([]model.PartnerConnection, error)

	// UpdateStatus sets the connection status.
	UpdateStatus(ctx context.Context, id string, status model.PartnerStatus) error

	// Delete removes a connection by id. Deleting a non-existent connection
	// is not an error.
	Delete(ctx context.Context, id string) error
}
