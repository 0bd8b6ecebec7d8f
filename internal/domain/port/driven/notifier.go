package driven

import (
	"context"

	"github.com/subcircle/subcircle/internal/domain/model"
)

// Notifier is the external push-delivery capability. Actual delivery
// (service workers, VAPID, browser push services) lives outside this system;
// implementations receive the stored endpoints and the notification to carry.
// Delivery failures are logged, never surfaced to the operation that created
// the notification.
type Notifier interface {
	// SendPush delivers a notification to every registered endpoint of the
	// target user on a best-effort basis.
	SendPush(ctx context.Context, targets []model.WebPushSubscription, n model.Notification) error
}
