package driven

import (
	"context"

	"github.com/subcircle/subcircle/internal/domain/model"
)

// ServiceStore defines the driven port for the streaming-service catalog.
type ServiceStore interface {
	// Create inserts a catalog entry and returns the stored form.
	Create(ctx context.Context, svc model.StreamingService) (*model.StreamingService, error)

	// Get retrieves a catalog entry by id. Returns (nil, nil) when not found.
	Get(ctx context.Context, id string) (*model.StreamingService, error)

	// List returns the whole catalog ordered by name.
	List(ctx context.Context) ([]model.StreamingService, error)
}
