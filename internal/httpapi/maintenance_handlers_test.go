package httpapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interndesk/internal/domain"
	"interndesk/internal/maintenance"
)

func TestMaintenanceEndpoints(t *testing.T) {
	e := newTestEnv(t)
	_, atok := e.createUser("a@example.com", domain.RoleAdmin)
	_, stok := e.createUser("s@example.com", domain.RoleStudent)

	runner := maintenance.New(maintenance.Job{Name: "checkpoint", Run: e.db.Checkpoint})
	e.srv = NewHandler(Deps{
		Store:       e.db,
		Hub:         e.hub,
		Tokens:      e.tokens,
		CfgVal:      e.cfgVal,
		Maintenance: runner,
	})

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/admin/maintenance", stok, nil).Code)

	rec := e.do(http.MethodGet, "/api/admin/maintenance", atok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[maintenance.Status](t, rec)
	assert.Equal(t, 0, st.Runs)
	assert.Equal(t, []string{"checkpoint"}, st.Jobs)

	rec = e.do(http.MethodPost, "/api/admin/maintenance/run", atok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st = decode[maintenance.Status](t, rec)
	assert.Equal(t, 1, st.Runs)
	assert.NotEmpty(t, st.LastOkAt)
}

func TestMaintenanceRunReportsFailure(t *testing.T) {
	e := newTestEnv(t)
	_, atok := e.createUser("a@example.com", domain.RoleAdmin)

	runner := maintenance.New(maintenance.Job{Name: "broken", Run: func(context.Context) error { return errConnLost }})
	e.srv = NewHandler(Deps{Store: e.db, Tokens: e.tokens, CfgVal: e.cfgVal, Maintenance: runner})

	rec := e.do(http.MethodPost, "/api/admin/maintenance/run", atok, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "maintenance_failed")
}

func TestMaintenanceRoutesHiddenWithoutRunner(t *testing.T) {
	e := newTestEnv(t)
	_, atok := e.createUser("a@example.com", domain.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/admin/maintenance", atok, nil).Code)
}
