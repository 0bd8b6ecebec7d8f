package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/subcircle/subcircle/internal/application"
	"github.com/subcircle/subcircle/internal/crypto"
	"github.com/subcircle/subcircle/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps application and crypto errors to HTTP responses.
// Authentication and format failures share one body so a caller cannot tell
// a wrong master password from corrupted ciphertext.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, crypto.ErrAuthentication), errors.Is(err, crypto.ErrInvalidFormat):
		writeError(w, http.StatusUnprocessableEntity, "invalid master password or corrupted data")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// isClientError reports whether err maps to a 4xx response, i.e. whether the
// fault lies with the request rather than the server.
func isClientError(err error) bool {
	return errors.Is(err, application.ErrValidation) ||
		errors.Is(err, application.ErrNotFound) ||
		errors.Is(err, application.ErrForbidden) ||
		errors.Is(err, crypto.ErrAuthentication) ||
		errors.Is(err, crypto.ErrInvalidFormat)
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// ServiceResponse is the JSON representation of a streaming service catalog entry.
type ServiceResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	LogoURL      string  `json:"logo_url"`
	Category     string  `json:"category"`
	MonthlyPrice float64 `json:"monthly_price"`
	WebsiteURL   string  `json:"website_url"`
	Description  string  `json:"description"`
	CreatedAt    string  `json:"created_at"`
}

// CreateServiceRequest is the JSON body for the add catalog entry endpoint.
type CreateServiceRequest struct {
	Name         string  `json:"name"`
	LogoURL      string  `json:"logo_url"`
	Category     string  `json:"category"`
	MonthlyPrice float64 `json:"monthly_price"`
	WebsiteURL   string  `json:"website_url"`
	Description  string  `json:"description"`
}

// SubscriptionResponse is the JSON representation of a user subscription.
type SubscriptionResponse struct {
	ID                 string `json:"id"`
	UserID             string `json:"user_id"`
	ServiceID          string `json:"service_id"`
	IsActive           bool   `json:"is_active"`
	SharedWithPartners bool   `json:"shared_with_partners"`
	ShareCredentials   bool   `json:"share_credentials"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

// CreateSubscriptionRequest is the JSON body for the add subscription endpoint.
type CreateSubscriptionRequest struct {
	ServiceID string `json:"service_id"`
}

// UpdateActiveRequest is the JSON body for the pause/resume endpoint.
type UpdateActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// UpdateSharingRequest is the JSON body for the sharing settings endpoint.
type UpdateSharingRequest struct {
	SharedWithPartners bool `json:"shared_with_partners"`
	ShareCredentials   bool `json:"share_credentials"`
}

// SaveCredentialsRequest is the JSON body for the save credentials endpoint.
// The master password is consumed during encryption and never echoed back.
type SaveCredentialsRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	Notes          string `json:"notes"`
	KeyHint        string `json:"key_hint"`
	MasterPassword string `json:"master_password"`
}

// DecryptRequest is the JSON body for the decrypt endpoints.
type DecryptRequest struct {
	MasterPassword string `json:"master_password"`
}

// CredentialRecordResponse is the stored credential record as returned to
// clients: the plaintext hint plus the opaque encrypted fields.
type CredentialRecordResponse struct {
	ID                string `json:"id"`
	SubscriptionID    string `json:"subscription_id"`
	EncryptedUsername string `json:"encrypted_username"`
	EncryptedPassword string `json:"encrypted_password"`
	EncryptedNotes    string `json:"encrypted_notes,omitempty"`
	EncryptionKeyHint string `json:"encryption_key_hint,omitempty"`
	UpdatedAt         string `json:"updated_at"`
}

// CredentialPlaintextResponse is the result of a successful decrypt.
type CredentialPlaintextResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Notes    string `json:"notes,omitempty"`
}

// PartnerResponse is the JSON representation of a partner connection.
type PartnerResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	PartnerID string `json:"partner_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// InvitePartnerRequest is the JSON body for the invite partner endpoint.
type InvitePartnerRequest struct {
	PartnerID string `json:"partner_id"`
}

// RespondPartnerRequest is the JSON body for the respond-to-invite endpoint.
type RespondPartnerRequest struct {
	Status string `json:"status"` // "accepted" or "declined"
}

// NotificationResponse is the JSON representation of a notification.
type NotificationResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Data      string `json:"data,omitempty"`
	Read      bool   `json:"read"`
	Priority  string `json:"priority"`
	Category  string `json:"category"`
	ActionURL string `json:"action_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

// MarkAllReadResponse reports how many notifications were marked read.
type MarkAllReadResponse struct {
	Marked int64 `json:"marked"`
}

// PreferencesResponse is the JSON representation of notification preferences.
// The same shape is accepted as the update request body.
type PreferencesResponse struct {
	EmailEnabled              bool   `json:"email_enabled"`
	PushEnabled               bool   `json:"push_enabled"`
	PartnerNotifications      bool   `json:"partner_notifications"`
	SubscriptionNotifications bool   `json:"subscription_notifications"`
	SecurityNotifications     bool   `json:"security_notifications"`
	SystemNotifications       bool   `json:"system_notifications"`
	EmailFrequency            string `json:"email_frequency"`
	QuietHoursEnabled         bool   `json:"quiet_hours_enabled"`
	QuietHoursStart           string `json:"quiet_hours_start"`
	QuietHoursEnd             string `json:"quiet_hours_end"`
}

// PushSubscribeRequest is the JSON body for registering a browser push endpoint.
type PushSubscribeRequest struct {
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dh_key"`
	AuthKey   string `json:"auth_key"`
	UserAgent string `json:"user_agent"`
}

// PushUnsubscribeRequest is the JSON body for removing a push registration.
type PushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// PublicKeyResponse carries the VAPID public key clients subscribe with.
type PublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

// toServiceResponse converts a catalog entry to its JSON representation.
func toServiceResponse(svc model.StreamingService) ServiceResponse {
	return ServiceResponse{
		ID:           svc.ID,
		Name:         svc.Name,
		LogoURL:      svc.LogoURL,
		Category:     svc.Category,
		MonthlyPrice: svc.MonthlyPrice,
		WebsiteURL:   svc.WebsiteURL,
		Description:  svc.Description,
		CreatedAt:    svc.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toSubscriptionResponse converts a subscription to its JSON representation.
func toSubscriptionResponse(sub model.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:                 sub.ID,
		UserID:             sub.UserID,
		ServiceID:          sub.ServiceID,
		IsActive:           sub.IsActive,
		SharedWithPartners: sub.SharedWithPartners,
		ShareCredentials:   sub.ShareCredentials,
		CreatedAt:          sub.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          sub.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toCredentialRecordResponse converts a credential record to its JSON
// representation. Encrypted fields pass through untouched.
func toCredentialRecordResponse(record model.CredentialRecord) CredentialRecordResponse {
	return CredentialRecordResponse{
		ID:                record.ID,
		SubscriptionID:    record.SubscriptionID,
		EncryptedUsername: record.EncryptedUsername,
		EncryptedPassword: record.EncryptedPassword,
		EncryptedNotes:    record.EncryptedNotes,
		EncryptionKeyHint: record.EncryptionKeyHint,
		UpdatedAt:         record.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toPartnerResponse converts a partner connection to its JSON representation.
func toPartnerResponse(conn model.PartnerConnection) PartnerResponse {
	return PartnerResponse{
		ID:        conn.ID,
		UserID:    conn.UserID,
		PartnerID: conn.PartnerID,
		Status:    string(conn.Status),
		CreatedAt: conn.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: conn.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toNotificationResponse converts a notification to its JSON representation.
func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		Read:      n.Read,
		Priority:  string(n.Priority),
		Category:  string(n.Category),
		ActionURL: n.ActionURL,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toPreferencesResponse converts preferences to their JSON representation.
func toPreferencesResponse(p model.NotificationPreferences) PreferencesResponse {
	return PreferencesResponse{
		EmailEnabled:              p.EmailEnabled,
		PushEnabled:               p.PushEnabled,
		PartnerNotifications:      p.PartnerNotifications,
		SubscriptionNotifications: p.SubscriptionNotifications,
		SecurityNotifications:     p.SecurityNotifications,
		SystemNotifications:       p.SystemNotifications,
		EmailFrequency:            p.EmailFrequency,
		QuietHoursEnabled:         p.QuietHoursEnabled,
		QuietHoursStart:           p.QuietHoursStart,
		QuietHoursEnd:             p.QuietHoursEnd,
	}
}

// fromPreferencesRequest maps an update request onto a preferences record for
// the given user.
func fromPreferencesRequest(userID string, req PreferencesResponse) model.NotificationPreferences {
	return model.NotificationPreferences{
		UserID:                    userID,
		EmailEnabled:              req.EmailEnabled,
		PushEnabled:               req.PushEnabled,
		PartnerNotifications:      req.PartnerNotifications,
		SubscriptionNotifications: req.SubscriptionNotifications,
		SecurityNotifications:     req.SecurityNotifications,
		SystemNotifications:       req.SystemNotifications,
		EmailFrequency:            req.EmailFrequency,
		QuietHoursEnabled:         req.QuietHoursEnabled,
		QuietHoursStart:           req.QuietHoursStart,
		QuietHoursEnd:             req.QuietHoursEnd,
	}
}
