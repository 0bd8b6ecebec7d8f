package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/subcircle/subcircle/internal/application"
	"github.com/subcircle/subcircle/internal/domain/model"
	"github.com/subcircle/subcircle/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	services      driven.ServiceStore
	subs          driven.SubscriptionStore
	push          driven.PushStore
	credentials   *application.CredentialService
	sharing       *application.SharingService
	partners      *application.PartnerService
	notifications *application.NotificationService
	vapidPublic   string
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	services driven.ServiceStore,
	subs driven.SubscriptionStore,
	push driven.PushStore,
	credentials *application.CredentialService,
	sharing *application.SharingService,
	partners *application.PartnerService,
	notifications *application.NotificationService,
	vapidPublic string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		services:      services,
		subs:          subs,
		push:          push,
		credentials:   credentials,
		sharing:       sharing,
		partners:      partners,
		notifications: notifications,
		vapidPublic:   vapidPublic,
		logger:        logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware. Every route except the health check
// sits behind the identity middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("GET /api/v1/services", h.ListServices)
	api.HandleFunc("POST /api/v1/services", h.CreateService)
	api.HandleFunc("GET /api/v1/services/{id}", h.GetService)

	api.HandleFunc("GET /api/v1/subscriptions", h.ListSubscriptions)
	api.HandleFunc("POST /api/v1/subscriptions", h.CreateSubscription)
	api.HandleFunc("DELETE /api/v1/subscriptions/{id}", h.DeleteSubscription)
	api.HandleFunc("PUT /api/v1/subscriptions/{id}/active", h.SetSubscriptionActive)
	api.HandleFunc("PUT /api/v1/subscriptions/{id}/sharing", h.UpdateSharing)

	api.HandleFunc("PUT /api/v1/subscriptions/{id}/credentials", h.SaveCredentials)
	api.HandleFunc("GET /api/v1/subscriptions/{id}/credentials", h.GetCredentials)
	api.HandleFunc("DELETE /api/v1/subscriptions/{id}/credentials", h.DeleteCredentials)
	api.HandleFunc("POST /api/v1/subscriptions/{id}/credentials/decrypt", h.DecryptCredentials)

	api.HandleFunc("GET /api/v1/partners", h.ListPartners)
	api.HandleFunc("POST /api/v1/partners", h.InvitePartner)
	api.HandleFunc("PUT /api/v1/partners/{id}", h.RespondPartner)
	api.HandleFunc("GET /api/v1/partners/{partnerId}/subscriptions", h.PartnerSubscriptions)
	api.HandleFunc("GET /api/v1/partners/subscriptions/{id}/credentials", h.PartnerCredentials)
	api.HandleFunc("POST /api/v1/partners/subscriptions/{id}/credentials/decrypt", h.PartnerDecrypt)

	api.HandleFunc("GET /api/v1/notifications", h.ListNotifications)
	api.HandleFunc("POST /api/v1/notifications/{id}/read", h.MarkNotificationRead)
	api.HandleFunc("POST /api/v1/notifications/read-all", h.MarkAllNotificationsRead)
	api.HandleFunc("GET /api/v1/notifications/preferences", h.GetPreferences)
	api.HandleFunc("PUT /api/v1/notifications/preferences", h.UpdatePreferences)

	api.HandleFunc("GET /api/v1/push/public-key", h.PushPublicKey)
	api.HandleFunc("POST /api/v1/push/subscribe", h.PushSubscribe)
	api.HandleFunc("DELETE /api/v1/push/subscribe", h.PushUnsubscribe)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.Handle("/api/v1/", identityMiddleware(api))

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListServices returns the streaming service catalog.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ServiceResponse, 0, len(services))
	for _, svc := range services {
		resp = append(resp, toServiceResponse(svc))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetService returns a single catalog entry by id.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.services.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to get service", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if svc == nil {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}

	writeJSON(w, http.StatusOK, toServiceResponse(*svc))
}

// CreateService adds a streaming service to the catalog.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "service name is required")
		return
	}

	svc, err := h.services.Create(r.Context(), model.StreamingService{
		Name:         req.Name,
		LogoURL:      req.LogoURL,
		Category:     req.Category,
		MonthlyPrice: req.MonthlyPrice,
		WebsiteURL:   req.WebsiteURL,
		Description:  req.Description,
	})
	if err != nil {
		h.logger.Error("failed to create service", "name", req.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toServiceResponse(*svc))
}

// ListSubscriptions returns the caller's subscriptions.
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subs.ListByUser(r.Context(), userID(r))
	if err != nil {
		h.logger.Error("failed to list subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, toSubscriptionResponse(sub))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateSubscription subscribes the caller to a catalog service. New
// subscriptions start active and unshared.
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ServiceID == "" {
		writeError(w, http.StatusBadRequest, "service id is required")
		return
	}

	svc, err := h.services.Get(r.Context(), req.ServiceID)
	if err != nil {
		h.logger.Error("failed to get service", "service_id", req.ServiceID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if svc == nil {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}

	sub, err := h.subs.Create(r.Context(), model.Subscription{
		UserID:    userID(r),
		ServiceID: req.ServiceID,
		IsActive:  true,
	})
	if err != nil {
		h.logger.Error("failed to create subscription", "service_id", req.ServiceID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toSubscriptionResponse(*sub))
}

// DeleteSubscription removes one of the caller's subscriptions. The credential
// record, if any, goes with it.
func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	sub, err := h.subs.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get subscription", "subscription_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	if sub.UserID != userID(r) {
		writeError(w, http.StatusForbidden, "not the subscription owner")
		return
	}

	if err := h.subs.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete subscription", "subscription_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetSubscriptionActive pauses or resumes one of the caller's subscriptions.
// Paused subscriptions stay owned and shareable on paper but drop out of
// partner listings until resumed.
func (h *Handler) SetSubscriptionActive(w http.ResponseWriter, r *http.Request) {
	var req UpdateActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("id")

	sub, err := h.subs.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get subscription", "subscription_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	if sub.UserID != userID(r) {
		writeError(w, http.StatusForbidden, "not the subscription owner")
		return
	}

	if err := h.subs.SetActive(r.Context(), id, req.IsActive); err != nil {
		h.logger.Error("failed to update subscription state", "subscription_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	sub, err = h.subs.Get(r.Context(), id)
	if err != nil || sub == nil {
		h.logger.Error("failed to reload subscription", "subscription_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toSubscriptionResponse(*sub))
}

// UpdateSharing updates a subscription's sharing flags.
func (h *Handler) UpdateSharing(w http.ResponseWriter, r *http.Request) {
	var req UpdateSharingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.sharing.UpdateShareSettings(r.Context(), userID(r), r.PathValue("id"), model.ShareSettings{
		SharedWithPartners: req.SharedWithPartners,
		ShareCredentials:   req.ShareCredentials,
	})
	if err != nil {
		h.logError(r, "failed to update sharing", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSubscriptionResponse(*sub))
}

// logError logs err at error level unless it is an expected client fault.
func (h *Handler) logError(r *http.Request, msg string, err error) {
	if isClientError(err) {
		return
	}
	h.logger.Error(msg, "path", r.URL.Path, "error", err)
}
