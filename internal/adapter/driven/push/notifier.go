// Package push contains the driven adapter behind the Notifier port. The
// current implementation logs deliveries instead of talking to browser push
// services; swapping in a real Web Push sender only touches this package.
package push

import (
	"context"
	"log/slog"

	"github.com/subcircle/subcircle/internal/domain/model"
)

// LogNotifier records each would-be push delivery in the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendPush logs one entry per target endpoint. Notification titles are
// logged; bodies are not, since they may reference what a user shares.
func (n *LogNotifier) SendPush(ctx context.Context, targets []model.WebPushSubscription, notification model.Notification) error {
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		n.logger.Info("push delivery",
			"user_id", target.UserID,
			"endpoint", target.Endpoint,
			"notification_id", notification.ID,
			"title", notification.Title,
			"category", notification.Category,
		)
	}
	return nil
}
