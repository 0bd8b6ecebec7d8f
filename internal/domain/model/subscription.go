package model

import "time"

// Subscription is one user's subscription to a streaming service, including
// the owner's sharing settings for partner visibility.
type Subscription struct {
	ID        string
	UserID    string
	ServiceID string
	IsActive  bool
	ShareSettings
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShareSettings controls what connected partners may see for a subscription.
// ShareCredentials is meaningful only while SharedWithPartners is true.
type ShareSettings struct {
	SharedWithPartners bool
	ShareCredentials   bool
}

// Normalize enforces the cascade invariant: disabling partner sharing always
// clears credential sharing. Must be applied before the pair is persisted so
// an inconsistent combination never reaches the store.
func (s ShareSettings) Normalize() ShareSettings {
	if !s.SharedWithPartners {
		s.ShareCredentials = false
	}
	return s
}

// CanExposeCredentials is the sharing gate: a partner may see a subscription's
// credential record (hint included) only when the owner shares the
// subscription, shares its credentials, and a record actually exists.
func CanExposeCredentials(settings ShareSettings, recordExists bool) bool {
	return settings.SharedWithPartners && settings.ShareCredentials && recordExists
}
