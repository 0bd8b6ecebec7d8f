package model

import "time"

// PartnerStatus is the lifecycle state of a partner connection.
type PartnerStatus string

const (
	PartnerStatusPending  PartnerStatus = "pending"
	PartnerStatusAccepted PartnerStatus = "accepted"
	PartnerStatusDeclined PartnerStatus = "declined"
)

// PartnerConnection links two users. UserID is the inviter, PartnerID the
// invitee; only accepted connections grant partner visibility in either
// direction.
type PartnerConnection struct {
	ID        string
	UserID    string
	PartnerID string
	Status    PartnerStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Involves reports whether the given user is on either side of the connection.
func (c PartnerConnection) Involves(userID string) bool {
	return c.UserID == userID || c.PartnerID == userID
}

// Other returns the opposite side of the connection from userID. Returns ""
// when userID is not part of the connection.
func (c PartnerConnection) Other(userID string) string {
	switch userID {
	case c.UserID:
		return c.PartnerID
	case c.PartnerID:
		return c.UserID
	}
	return ""
}
