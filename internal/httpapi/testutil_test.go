package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"interndesk/internal/auth"
	"interndesk/internal/chat"
	"interndesk/internal/config"
	"interndesk/internal/domain"
	"interndesk/internal/events"
	"interndesk/internal/store"
)

type captureMailer struct {
	mu    sync.Mutex
	to    string
	link  string
	err   error
	calls int
}

func (m *captureMailer) SendVerification(_ context.Context, to, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.to, m.link = to, link
	return m.err
}

type stubGenerator struct {
	reply string
	err   error
}

func (g stubGenerator) GenerateReply(context.Context, string) (string, error) {
	return g.reply, g.err
}

type testEnv struct {
	t      *testing.T
	db     *store.DB
	hub    *events.Hub
	tokens *auth.Tokens
	mailer *captureMailer
	gen    *stubGenerator
	cfgVal *atomic.Value
	srv    http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewTokens("test-secret-0123456789", 24*time.Hour, time.Hour)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Auth.JWTSecret = "test-secret-0123456789"
	cfg.AI.APIKey = "gemini-key"
	cfgVal := &atomic.Value{}
	cfgVal.Store(cfg)

	e := &testEnv{
		t:      t,
		db:     db,
		hub:    events.NewHub(),
		tokens: tokens,
		mailer: &captureMailer{},
		gen:    &stubGenerator{reply: "Happy to help!"},
		cfgVal: cfgVal,
	}
	e.srv = e.handler(db)
	return e
}

// handler builds the full stack over s, so tests can swap in a failing store.
func (e *testEnv) handler(s Store) http.Handler {
	gen := generatorFunc(func(ctx context.Context, p string) (string, error) {
		return e.gen.GenerateReply(ctx, p)
	})
	return NewHandler(Deps{
		Store:       s,
		Hub:         e.hub,
		Tokens:      e.tokens,
		Mailer:      e.mailer,
		Assistant:   &chat.Assistant{Catalog: s, Generator: gen},
		Generator:   gen,
		CfgVal:      e.cfgVal,
		UserCfgPath: filepath.Join(e.t.TempDir(), "config.yml"),
	})
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) GenerateReply(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func (e *testEnv) createUser(email string, role domain.Role, skills ...string) (domain.User, string) {
	e.t.Helper()
	hash, err := auth.HashPassword("password1", bcrypt.MinCost)
	require.NoError(e.t, err)
	u, err := e.db.CreateUser(context.Background(), domain.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.Split(email, "@")[0],
		Role:         role,
		Skills:       skills,
	})
	require.NoError(e.t, err)
	tok, err := e.tokens.IssueSession(u)
	require.NoError(e.t, err)
	return u, tok
}

func (e *testEnv) createInternship(program string, status domain.Status, skills ...string) domain.Internship {
	e.t.Helper()
	in, err := e.db.CreateInternship(context.Background(), domain.Internship{
		Program:      program,
		Organization: "Acme",
		ApplyLink:    "https://acme.example/" + program,
		Location:     "Remote",
		Skills:       skills,
		Status:       status,
	})
	require.NoError(e.t, err)
	return in
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// failingStore fails every catalog read.
type failingStore struct {
	Store
}

func (failingStore) ListInternships(context.Context, store.ListInternshipsOpts) ([]domain.Internship, error) {
	return nil, errConnLost
}

var errConnLost = errors.New("connection lost")

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return &buf
}
