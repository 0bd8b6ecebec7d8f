package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/subcircle/subcircle/internal/domain/model"
	"github.com/subcircle/subcircle/internal/domain/port/driven"
)

// SharingService enforces the sharing rules: which subscriptions a partner may
// see, and when a subscription's credential record may be exposed. Every
// partner-facing credential path goes through the CanExposeCredentials gate
// before the hint is returned or a decrypt is attempted.
type SharingService struct {
	subs          driven.SubscriptionStore
	creds         driven.CredentialStore
	partners      driven.PartnerStore
	credentials   *CredentialService
	notifications *NotificationService
	logger        *slog.Logger
}

// NewSharingService creates a SharingService with the required dependencies.
func NewSharingService(
	subs driven.SubscriptionStore,
	creds driven.CredentialStore,
	partners driven.PartnerStore,
	credentials *CredentialService,
	notifications *NotificationService,
	logger *slog.Logger,
) *SharingService {
	return &SharingService{
		subs:          subs,
		creds:         creds,
		partners:      partners,
		credentials:   credentials,
		notifications: notifications,
		logger:        logger,
	}
}

// UpdateShareSettings persists new sharing flags for a subscription the
// caller owns. The cascade invariant is applied before the write (disabling
// partner sharing clears credential sharing), and credential sharing can only
// be enabled while a credential record exists.
func (s *SharingService) UpdateShareSettings(ctx context.Context, ownerID, subscriptionID string, settings model.ShareSettings) (*model.Subscription, error) {
	sub, err := s.subs.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: subscription %s", ErrNotFound, subscriptionID)
	}
	if sub.UserID != ownerID {
		return nil, fmt.Errorf("%w: not the subscription owner", ErrForbidden)
	}

	settings = settings.Normalize()

	if settings.ShareCredentials {
		record, err := s.creds.Get(ctx, subscriptionID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, fmt.Errorf("%w: cannot share credentials before any are saved", ErrValidation)
		}
	}

	wasShared := sub.SharedWithPartners
	if err := s.subs.UpdateShareSettings(ctx, subscriptionID, settings); err != nil {
		return nil, err
	}

	if settings.SharedWithPartners != wasShared {
		s.notifyPartners(ctx, ownerID, subscriptionID, settings.SharedWithPartners)
	}

	return s.subs.Get(ctx, subscriptionID)
}

// PartnerSubscriptions returns the subscriptions ownerID shares with
// partners, visible to requesterID only through an accepted connection.
func (s *SharingService) PartnerSubscriptions(ctx context.Context, requesterID, ownerID string) ([]model.Subscription, error) {
	if err := s.requireAcceptedConnection(ctx, requesterID, ownerID); err != nil {
		return nil, err
	}
	return s.subs.ListSharedByUser(ctx, ownerID)
}

// PartnerCredentialRecord returns the credential record (hint and opaque
// encrypted fields, nothing decrypted) for a shared subscription. The
// requester must hold an accepted connection with the owner, and the owner
// must have enabled credential sharing for this subscription.
func (s *SharingService) PartnerCredentialRecord(ctx context.Context, requesterID, subscriptionID string) (*model.CredentialRecord, error) {
	sub, err := s.subs.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: subscription %s", ErrNotFound, subscriptionID)
	}

	if sub.UserID != requesterID {
		if err := s.requireAcceptedConnection(ctx, requesterID, sub.UserID); err != nil {
			return nil, err
		}
	}

	record, err := s.creds.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if sub.UserID != requesterID && !model.CanExposeCredentials(sub.ShareSettings, record != nil) {
		return nil, fmt.Errorf("%w: credentials are not shared for this subscription", ErrForbidden)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: no credential record", ErrNotFound)
	}

	return record, nil
}

// PartnerDecrypt decrypts a shared subscription's credentials for a partner
// who has obtained the owner's master password out-of-band. The sharing gate
// runs before any cryptography; the key is always derived from the owner's
// user id, never the requester's.
func (s *SharingService) PartnerDecrypt(ctx context.Context, requesterID, subscriptionID, masterPassword string) (*model.CredentialPlaintext, error) {
	record, err := s.PartnerCredentialRecord(ctx, requesterID, subscriptionID)
	if err != nil {
		return nil, err
	}
	return s.credentials.Decrypt(ctx, record, masterPassword)
}

// requireAcceptedConnection fails with ErrForbidden unless requester and
// owner are linked by an accepted partner connection.
func (s *SharingService) requireAcceptedConnection(ctx context.Context, requesterID, ownerID string) error {
	conn, err := s.partners.GetBetween(ctx, requesterID, ownerID)
	if err != nil {
		return err
	}
	if conn == nil || conn.Status != model.PartnerStatusAccepted {
		return fmt.Errorf("%w: no accepted partner connection", ErrForbidden)
	}
	return nil
}

// notifyPartners tells every accepted partner that a subscription was shared
// or unshared. Best-effort: failures are logged, the settings update already
// succeeded.
func (s *SharingService) notifyPartners(ctx context.Context, ownerID, subscriptionID string, shared bool) {
	conns, err := s.partners.ListByUser(ctx, ownerID)
	if err != nil {
		s.logger.Error("list partners for share notification failed", "user_id", ownerID, "error", err)
		return
	}

	title, message, typ := "Subscription shared", "A partner shared a subscription with you", "subscription_shared"
	if !shared {
		title, message, typ = "Subscription unshared", "A partner stopped sharing a subscription", "subscription_unshared"
	}

	for _, conn := range conns {
		if conn.Status != model.PartnerStatusAccepted {
			continue
		}
		target := conn.Other(ownerID)
		if target == "" {
			continue
		}

		_, err := s.notifications.Notify(ctx, model.Notification{
			UserID:   target,
			Type:     typ,
			Title:    title,
			Message:  message,
			Data:     fmt.Sprintf(`{"subscription_id":%q}`, subscriptionID),
			Priority: model.PriorityLow,
			Category: model.CategoryPartner,
		})
		if err != nil {
			s.logger.Error("share notification failed", "user_id", target, "error", err)
		}
	}
}
