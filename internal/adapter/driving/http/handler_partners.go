package httphandler

import (
	"encoding/json"
	"net/http"
)

// ListPartners returns every partner connection the caller is part of.
func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	conns, err := h.partners.List(r.Context(), userID(r))
	if err != nil {
		h.logger.Error("failed to list partners", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]PartnerResponse, 0, len(conns))
	for _, conn := range conns {
		resp = append(resp, toPartnerResponse(conn))
	}

	writeJSON(w, http.StatusOK, resp)
}

// InvitePartner creates a pending connection from the caller to another user.
func (h *Handler) InvitePartner(w http.ResponseWriter, r *http.Request) {
	var req InvitePartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conn, err := h.partners.Invite(r.Context(), userID(r), req.PartnerID)
	if err != nil {
		h.logError(r, "failed to invite partner", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPartnerResponse(*conn))
}

// RespondPartner accepts or declines a pending invite addressed to the caller.
func (h *Handler) RespondPartner(w http.ResponseWriter, r *http.Request) {
	var req RespondPartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var accept bool
	switch req.Status {
	case "accepted":
		accept = true
	case "declined":
		accept = false
	default:
		writeError(w, http.StatusBadRequest, `status must be "accepted" or "declined"`)
		return
	}

	conn, err := h.partners.Respond(r.Context(), userID(r), r.PathValue("id"), accept)
	if err != nil {
		h.logError(r, "failed to respond to invite", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPartnerResponse(*conn))
}

// PartnerSubscriptions returns the subscriptions an accepted partner has
// shared with the caller.
func (h *Handler) PartnerSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.sharing.PartnerSubscriptions(r.Context(), userID(r), r.PathValue("partnerId"))
	if err != nil {
		h.logError(r, "failed to list partner subscriptions", err)
		writeServiceError(w, err)
		return
	}

	resp := make([]SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, toSubscriptionResponse(sub))
	}

	writeJSON(w, http.StatusOK, resp)
}

// PartnerCredentials returns the credential record of a shared subscription,
// gated on the owner's sharing flags and an accepted connection.
func (h *Handler) PartnerCredentials(w http.ResponseWriter, r *http.Request) {
	record, err := h.sharing.PartnerCredentialRecord(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		h.logError(r, "failed to get partner credentials", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCredentialRecordResponse(*record))
}

// PartnerDecrypt decrypts a shared credential record. The caller must supply
// the owner's master password; the sharing gate applies before any
// cryptography happens.
func (h *Handler) PartnerDecrypt(w http.ResponseWriter, r *http.Request) {
	var req DecryptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plaintext, err := h.sharing.PartnerDecrypt(r.Context(), userID(r), r.PathValue("id"), req.MasterPassword)
	if err != nil {
		h.logError(r, "failed to decrypt partner credentials", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CredentialPlaintextResponse{
		Username: plaintext.Username,
		Password: plaintext.Password,
		Notes:    plaintext.Notes,
	})
}
