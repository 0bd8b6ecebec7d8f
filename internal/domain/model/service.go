package model

import "time"

// StreamingService is a catalog entry for a streaming provider users can
// subscribe to. MonthlyPrice is the provider's list price, not what any
// particular user pays.
type StreamingService struct {
	ID           string
	Name         string
	LogoURL      string
	Category     string
	MonthlyPrice float64
	WebsiteURL   string
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
