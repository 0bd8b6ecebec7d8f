package driven

import (
	"context"

	"github.com/subcircle/subcircle/internal/domain/model"
)

// CredentialStore defines the driven port for credential-record persistence.
// Records are stored as-is: field encryption happens in the application layer,
// so the adapter only ever sees ciphertext.
type CredentialStore interface {
	// Upsert inserts or replaces the record keyed by SubscriptionID and
	// returns the stored form. The store guarantees at most one record per
	// subscription.
	Upsert(ctx context.Context, record model.CredentialRecord) (*model.CredentialRecord, error)

	// Get retrieves the record for a subscription. Returns (nil, nil) when no
	// record exists.
	Get(ctx context.Context, subscriptionID string) (*model.CredentialRecord, error)

	// Delete removes the record for a subscription. Deleting a non-existent
	// record is not an error.
	Delete(ctx context.Context, subscriptionID string) error
}
