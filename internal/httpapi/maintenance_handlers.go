package httpapi

import (
	"errors"
	"net/http"

	"interndesk/internal/logging"
	"interndesk/internal/maintenance"
)

type MaintenanceHandler struct {
	Runner *maintenance.Runner
}

func (h MaintenanceHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Runner.Status())
}

// Run triggers an immediate housekeeping run and reports its outcome.
func (h MaintenanceHandler) Run(w http.ResponseWriter, r *http.Request) {
	err := h.Runner.RunOnce(r.Context())
	switch {
	case errors.Is(err, maintenance.ErrBusy):
		WriteError(w, r, http.StatusConflict, "busy", err.Error())
		return
	case err != nil:
		logging.Ctx(r.Context()).Warn().Err(err).Msg("maintenance run failed")
		WriteError(w, r, http.StatusInternalServerError, "maintenance_failed", err.Error())
		return
	}
	writeJSON(w, h.Runner.Status())
}
