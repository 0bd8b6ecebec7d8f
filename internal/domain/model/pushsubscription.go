package model

import "time"

// WebPushSubscription is a browser push endpoint registered by one of the
// user's devices. A user may hold several (one per browser/device); the
// (UserID, Endpoint) pair is unique.
type WebPushSubscription struct {
	ID        string
	UserID    string
	Endpoint  string
	P256dhKey string
	AuthKey   string
	UserAgent string
	CreatedAt time.Time
	UpdatedAt time.Time
}
