package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"sync/atomic"

	"github.com/goccy/go-json"

	"interndesk/internal/config"
)

type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}

func (h ConfigHandler) current() config.Config {
	return h.CfgVal.Load().(config.Config)
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.current().Redacted())
}

// Put replaces the config file. Secrets are never accepted over HTTP: the
// file keeps whatever it already held. Most changes apply on the next start.
func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var incoming config.Config
	if err := dec.Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if dec.More() {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: trailing data")
		return
	}

	onDisk, _ := config.Load(h.UserCfgPath)
	copySecrets(&incoming, onDisk)

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		// Return structured errors so the UI can show them nicely
		WriteJSON(w, http.StatusBadRequest, vr)
		return
	}

	if err := config.SaveAtomic(h.UserCfgPath, normalized); err != nil {
		WriteError(w, r, http.StatusBadRequest, "save_failed", err.Error())
		return
	}

	saved := normalized
	copySecrets(&saved, h.current())
	if h.LoadCfg != nil {
		if saved, err = h.LoadCfg(); err != nil {
			WriteError(w, r, http.StatusInternalServerError, "reload_failed", "saved but reload failed: "+err.Error())
			return
		}
	}
	h.CfgVal.Store(saved)
	writeJSON(w, saved.Redacted())
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	writeJSON(w, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.current())
	writeJSON(w, vr)
}

func copySecrets(dst *config.Config, src config.Config) {
	dst.Auth.JWTSecret = src.Auth.JWTSecret
	dst.Auth.AdminPassword = src.Auth.AdminPassword
	dst.Mail.APIKey = src.Mail.APIKey
	dst.AI.APIKey = src.AI.APIKey
}
