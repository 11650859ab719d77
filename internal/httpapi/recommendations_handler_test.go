package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interndesk/internal/domain"
	"interndesk/internal/rank"
)

type recommendResp struct {
	Recommendations []rank.Result `json:"recommendations"`
}

func TestRecommendRanksWholeCatalog(t *testing.T) {
	e := newTestEnv(t)
	u, tok := e.createUser("ada@example.com", domain.RoleStudent, "python", "sql")

	e.createInternship("none", domain.StatusApproved, "Go")
	e.createInternship("half", domain.StatusPending, "Python", "Java")
	e.createInternship("full", domain.StatusRejected, "SQL", "python")
	e.createInternship("empty", domain.StatusApproved)
	e.createInternship("third", domain.StatusApproved, "sql", "c", "rust")
	e.createInternship("extra", domain.StatusApproved, "python", "x", "y", "z")

	rec := e.do(http.MethodPost, "/api/internships/recommendations", tok, map[string]string{"userId": u.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[recommendResp](t, rec).Recommendations
	require.Len(t, got, rank.MaxResults)
	assert.Equal(t, "full", got[0].Title)
	assert.Equal(t, 100, got[0].MatchScore)
	assert.Equal(t, []string{"SQL", "python"}, got[0].SkillsMatched)
	assert.Equal(t, "half", got[1].Title)
	assert.Equal(t, 50, got[1].MatchScore)
	assert.Equal(t, "third", got[2].Title)
	assert.Equal(t, 33, got[2].MatchScore)
	assert.Equal(t, "extra", got[3].Title)
	assert.Equal(t, 25, got[3].MatchScore)
	// ties at 0 keep catalog order
	assert.Equal(t, "none", got[4].Title)
	assert.Equal(t, []string{}, got[4].SkillsMatched)

	body := rec.Body.String()
	for _, f := range []string{`"_id"`, `"title"`, `"company"`, `"location"`, `"stipend"`, `"applyLink"`, `"skillsMatched"`, `"matchScore"`} {
		assert.Contains(t, body, f)
	}
}

func TestRecommendDefaultsToCaller(t *testing.T) {
	e := newTestEnv(t)
	_, tok := e.createUser("ada@example.com", domain.RoleStudent, "go")
	e.createInternship("go", domain.StatusApproved, "Go")

	rec := e.do(http.MethodPost, "/api/internships/recommendations", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[recommendResp](t, rec).Recommendations
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].MatchScore)
}

func TestRecommendEmptyCatalog(t *testing.T) {
	e := newTestEnv(t)
	u, tok := e.createUser("ada@example.com", domain.RoleStudent, "go")

	rec := e.do(http.MethodPost, "/api/internships/recommendations", tok, map[string]string{"userId": u.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"recommendations":[]}`, rec.Body.String())
}

func TestRecommendUnknownUser(t *testing.T) {
	e := newTestEnv(t)
	_, tok := e.createUser("ada@example.com", domain.RoleStudent)

	rec := e.do(http.MethodPost, "/api/internships/recommendations", tok, map[string]string{"userId": "nobody"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"User not found"}`, rec.Body.String())
}

func TestRecommendMissingUserID(t *testing.T) {
	e := newTestEnv(t)
	h := RecommendationsHandler{Store: e.db}

	rec := httptest.NewRecorder()
	h.Recommend(rec, httptest.NewRequest(http.MethodPost, "/api/internships/recommendations", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"User ID is required"}`, rec.Body.String())
}

func TestRecommendStoreFailure(t *testing.T) {
	e := newTestEnv(t)
	u, tok := e.createUser("ada@example.com", domain.RoleStudent, "go")
	e.srv = e.handler(failingStore{Store: e.db})

	rec := e.do(http.MethodPost, "/api/internships/recommendations", tok, map[string]string{"userId": u.ID})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode[map[string]string](t, rec)
	assert.Equal(t, "Error generating recommendations", body["message"])
	assert.Contains(t, body["details"], "connection lost")
	assert.NotContains(t, rec.Body.String(), "recommendations\":")
}

func TestRecommendRequiresAuth(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(http.MethodPost, "/api/internships/recommendations", "", map[string]string{"userId": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env := decode[APIError](t, rec)
	assert.Equal(t, "unauthorized", env.Error.Code)
	assert.NotEmpty(t, env.Error.RequestID)
}
