package driven

import (
	"context"

	"github.com/subcircle/subcircle/internal/domain/model"
)

// SubscriptionStore defines the driven port for user subscription persistence.
type SubscriptionStore interface {
	// Create inserts a new subscription and returns the stored form.
	Create(ctx context.Context, sub model.Subscription) (*model.Subscription, error)

	// Get retrieves a subscription by id. Returns (nil, nil) when not found.
	Get(ctx context.Context, id string) (*model.Subscription, error)

	// ListByUser returns all subscriptions owned by a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Subscription, error)

	// ListSharedByUser returns the subscriptions a user has marked
	// shared_with_partners, newest first.
	ListSharedByUser(ctx context.Context, userID string) ([]model.Subscription, error)

	// UpdateShareSettings persists both sharing flags atomically for one
	// subscription. Callers normalize the pair first; the store never writes
	// one flag without the other.
	UpdateShareSettings(ctx context.Context, id string, settings model.ShareSettings) error

	// SetActive toggles the is_active flag.
	SetActive(ctx context.Context, id string, active bool) error

	// Delete removes a subscription. The credential record, if any, goes with
	// it (FK cascade).
	Delete(ctx context.Context, id string) error
}
