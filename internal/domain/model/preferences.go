package model

import "time"

// NotificationPreferences holds one user's notification delivery settings.
// One row per user; absent rows mean DefaultPreferences.
type NotificationPreferences struct {
	ID                        string
	UserID                    string
	EmailEnabled              bool
	PushEnabled               bool
	PartnerNotifications      bool
	SubscriptionNotifications bool
	SecurityNotifications     bool
	SystemNotifications       bool
	EmailFrequency            string
	QuietHoursEnabled         bool
	QuietHoursStart           string // "HH:MM", interpreted in server time
	QuietHoursEnd             string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// DefaultPreferences returns the defaults applied when a user has never saved
// preferences. System notifications are opt-in; everything else is on.
func DefaultPreferences(userID string) NotificationPreferences {
	return NotificationPreferences{
		UserID:                    userID,
		EmailEnabled:              true,
		PushEnabled:               true,
		PartnerNotifications:      true,
		SubscriptionNotifications: true,
		SecurityNotifications:     true,
		SystemNotifications:       false,
		EmailFrequency:            "instant",
		QuietHoursEnabled:         false,
		QuietHoursStart:           "22:00",
		QuietHoursEnd:             "08:00",
	}
}

// AllowsCategory reports whether the user has the given notification category
// enabled.
func (p NotificationPreferences) AllowsCategory(category NotificationCategory) bool {
	switch category {
	case CategoryPartner:
		return p.PartnerNotifications
	case CategorySubscription:
		return p.SubscriptionNotifications
	case CategorySecurity:
		return p.SecurityNotifications
	case CategorySystem:
		return p.SystemNotifications
	}
	return true
}

// InQuietHours reports whether now falls inside the user's quiet-hours window.
// The window may wrap midnight ("22:00"-"08:00") and is evaluated against
// now's own location; callers pass server time, so the window runs on the
// server clock until preferences grow a timezone.
func (p NotificationPreferences) InQuietHours(now time.Time) bool {
	if !p.QuietHoursEnabled {
		return false
	}

	start, err := time.Parse("15:04", p.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", p.QuietHoursEnd)
	if err != nil {
		return false
	}

	minutes := now.Hour()*60 + now.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	if startMin <= endMin {
		return minutes >= startMin && minutes < endMin
	}
	// Window wraps midnight.
	return minutes >= startMin || minutes < endMin
}
