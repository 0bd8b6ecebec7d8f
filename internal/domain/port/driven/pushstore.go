package driven

import (
	"context"

	"github.com/subcircle/subcircle/internal/domain/model"
)

// PushStore defines the driven port for web-push endpoint registrations.
type PushStore interface {
	// Upsert inserts or refreshes a registration keyed by (userID, endpoint)
	// and returns the stored form.
	Upsert(ctx context.Context, sub model.WebPushSubscription) (*model.WebPushSubscription, error)

	// ListByUser returns all registrations for a user.
	ListByUser(ctx context.Context, userID string) ([]model.WebPushSubscription, error)

	// Delete removes the registration for (userID, endpoint). Idempotent.
	Delete(ctx context.Context, userID, endpoint string) error
}
