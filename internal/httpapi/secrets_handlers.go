package httpapi

import (
	"net/http"

	"interndesk/internal/secrets"
)

// SecretsHandler stores service credentials in the OS keychain. They take
// effect on the next start, when config and environment leave them empty.
type SecretsHandler struct {
	Set func(account, value string) error
}

type setSecretReq struct {
	Value string `json:"value"`
}

var secretAccounts = map[string]string{
	"jwt":    secrets.AccountJWT,
	"gemini": secrets.AccountGemini,
	"resend": secrets.AccountResend,
}

func (h SecretsHandler) Put(w http.ResponseWriter, r *http.Request) {
	account, ok := secretAccounts[r.PathValue("name")]
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_secret", "unknown secret")
		return
	}

	var req setSecretReq
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	set := h.Set
	if set == nil {
		set = secrets.Set
	}
	if err := set(account, req.Value); err != nil {
		WriteError(w, r, http.StatusBadRequest, "secret_not_stored", "failed to store secret: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
