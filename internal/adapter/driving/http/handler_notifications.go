package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/subcircle/subcircle/internal/domain/model"
)

// ListNotifications returns the caller's notifications, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.List(r.Context(), userID(r))
	if err != nil {
		h.logger.Error("failed to list notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, toNotificationResponse(n))
	}

	writeJSON(w, http.StatusOK, resp)
}

// MarkNotificationRead marks one of the caller's notifications read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkRead(r.Context(), userID(r), r.PathValue("id")); err != nil {
		h.logError(r, "failed to mark notification read", err)
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllNotificationsRead marks all of the caller's notifications read.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	marked, err := h.notifications.MarkAllRead(r.Context(), userID(r))
	if err != nil {
		h.logger.Error("failed to mark all notifications read", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MarkAllReadResponse{Marked: marked})
}

// GetPreferences returns the caller's notification preferences, falling back
// to defaults when none were ever saved.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.notifications.Preferences(r.Context(), userID(r))
	if err != nil {
		h.logger.Error("failed to get preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toPreferencesResponse(prefs))
}

// UpdatePreferences replaces the caller's notification preferences.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs, err := h.notifications.UpdatePreferences(r.Context(), fromPreferencesRequest(userID(r), req))
	if err != nil {
		h.logError(r, "failed to update preferences", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPreferencesResponse(*prefs))
}

// PushPublicKey returns the VAPID public key browsers subscribe with.
func (h *Handler) PushPublicKey(w http.ResponseWriter, _ *http.Request) {
	if h.vapidPublic == "" {
		writeError(w, http.StatusNotFound, "push notifications are not configured")
		return
	}

	writeJSON(w, http.StatusOK, PublicKeyResponse{PublicKey: h.vapidPublic})
}

// PushSubscribe registers a browser push endpoint for the caller.
func (h *Handler) PushSubscribe(w http.ResponseWriter, r *http.Request) {
	var req PushSubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Endpoint == "" || req.P256dhKey == "" || req.AuthKey == "" {
		writeError(w, http.StatusBadRequest, "endpoint, p256dh_key, and auth_key are required")
		return
	}

	_, err := h.push.Upsert(r.Context(), model.WebPushSubscription{
		UserID:    userID(r),
		Endpoint:  req.Endpoint,
		P256dhKey: req.P256dhKey,
		AuthKey:   req.AuthKey,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		h.logger.Error("failed to register push endpoint", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// PushUnsubscribe removes a push registration for the caller.
func (h *Handler) PushUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req PushUnsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	if err := h.push.Delete(r.Context(), userID(r), req.Endpoint); err != nil {
		h.logger.Error("failed to remove push endpoint", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
