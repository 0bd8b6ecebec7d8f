package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/subcircle/subcircle/internal/domain/model"
	"github.com/subcircle/subcircle/internal/domain/port/driven"
)

// PartnerService manages the partner connection lifecycle:
// pending -> accepted | declined. Only the invitee may respond, and a pair of
// users holds at most one connection in either direction.
type PartnerService struct {
	partners      driven.PartnerStore
	notifications *NotificationService
	logger        *slog.Logger
}

// NewPartnerService creates a PartnerService with the required dependencies.
func NewPartnerService(partners driven.PartnerStore, notifications *NotificationService, logger *slog.Logger) *PartnerService {
	return &PartnerService{
		partners:      partners,
		notifications: notifications,
		logger:        logger,
	}
}

// Invite creates a pending connection from inviter to invitee and notifies
// the invitee.
func (s *PartnerService) Invite(ctx context.Context, inviterID, inviteeID string) (*model.PartnerConnection, error) {
	if inviteeID == "" {
		return nil, fmt.Errorf("%w: partner id is required", ErrValidation)
	}
	if inviterID == inviteeID {
		return nil, fmt.Errorf("%w: cannot partner with yourself", ErrValidation)
	}

	existing, err := s.partners.GetBetween(ctx, inviterID, inviteeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status != model.PartnerStatusDeclined {
			return nil, fmt.Errorf("%w: connection already exists", ErrValidation)
		}
		// A declined connection may be retried, but the stale row has to go
		// first: the pair must never hold two connections, and the new invite
		// may run in the opposite direction.
		if err := s.partners.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
	}

	conn, err := s.partners.Create(ctx, model.PartnerConnection{
		UserID:    inviterID,
		PartnerID: inviteeID,
		Status:    model.PartnerStatusPending,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.notifications.Notify(ctx, model.Notification{
		UserID:   inviteeID,
		Type:     "partner_invite",
		Title:    "New partner request",
		Message:  "Someone wants to share subscriptions with you",
		Data:     fmt.Sprintf(`{"connection_id":%q}`, conn.ID),
		Priority: model.PriorityMedium,
		Category: model.CategoryPartner,
	}); err != nil {
		s.logger.Error("invite notification failed", "user_id", inviteeID, "error", err)
	}

	return conn, nil
}

// Respond accepts or declines a pending invitation. Only the invited side may
// respond, and only while the connection is still pending.
func (s *PartnerService) Respond(ctx context.Context, userID, connectionID string, accept bool) (*model.PartnerConnection, error) {
	conn, err := s.partners.Get(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, fmt.Errorf("%w: connection %s", ErrNotFound, connectionID)
	}
	if conn.PartnerID != userID {
		return nil, fmt.Errorf("%w: only the invited user can respond", ErrForbidden)
	}
	if conn.Status != model.PartnerStatusPending {
		return nil, fmt.Errorf("%w: connection already %s", ErrValidation, conn.Status)
	}

	status := model.PartnerStatusDeclined
	if accept {
		status = model.PartnerStatusAccepted
	}
	if err := s.partners.UpdateStatus(ctx, connectionID, status); err != nil {
		return nil, err
	}

	if accept {
		if _, err := s.notifications.Notify(ctx, model.Notification{
			UserID:   conn.UserID,
			Type:     "partner_accepted",
			Title:    "Partner request accepted",
			Message:  "Your partner request was accepted",
			Data:     fmt.Sprintf(`{"connection_id":%q}`, conn.ID),
			Priority: model.PriorityMedium,
			Category: model.CategoryPartner,
		}); err != nil {
			s.logger.Error("accept notification failed", "user_id", conn.UserID, "error", err)
		}
	}

	return s.partners.Get(ctx, connectionID)
}

// List returns every connection the user is part of.
func (s *PartnerService) List(ctx context.Context, userID string) ([]model.PartnerConnection, error) {
	return s.partners.ListByUser(ctx, userID)
}
