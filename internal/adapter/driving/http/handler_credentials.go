package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/subcircle/subcircle/internal/domain/model"
)

// SaveCredentials encrypts and stores credentials for one of the caller's
// subscriptions. The master password is read from the body, used for key
// derivation, and discarded.
func (h *Handler) SaveCredentials(w http.ResponseWriter, r *http.Request) {
	var req SaveCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.credentials.Save(r.Context(), userID(r), r.PathValue("id"), model.CredentialInput{
		Username: req.Username,
		Password: req.Password,
		Notes:    req.Notes,
		KeyHint:  req.KeyHint,
	}, req.MasterPassword)
	if err != nil {
		h.logError(r, "failed to save credentials", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCredentialRecordResponse(*record))
}

// GetCredentials returns the stored record for one of the caller's
// subscriptions: the hint plus the opaque encrypted fields, no password
// required.
func (h *Handler) GetCredentials(w http.ResponseWriter, r *http.Request) {
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

	record, err := h.credentials.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get credentials", "subscription_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "no credentials stored")
		return
	}

	writeJSON(w, http.StatusOK, toCredentialRecordResponse(*record))
}

// DeleteCredentials removes the stored record for one of the caller's
// subscriptions and clears credential sharing.
func (h *Handler) DeleteCredentials(w http.ResponseWriter, r *http.Request) {
	if err := h.credentials.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		h.logError(r, "failed to delete credentials", err)
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DecryptCredentials decrypts the caller's own stored record with the master
// password from the request body.
func (h *Handler) DecryptCredentials(w http.ResponseWriter, r *http.Request) {
	var req DecryptRequest
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

	record, err := h.credentials.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get credentials", "subscription_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	plaintext, err := h.credentials.Decrypt(r.Context(), record, req.MasterPassword)
	if err != nil {
		h.logError(r, "failed to decrypt credentials", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CredentialPlaintextResponse{
		Username: plaintext.Username,
		Password: plaintext.Password,
		Notes:    plaintext.Notes,
	})
}
