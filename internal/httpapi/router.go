package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux registers every route. Wrap it with NewHandler for the middleware stack.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	cfg := d.config()
	authed := RequireAuth(d.Tokens)
	optional := OptionalAuth(d.Tokens)
	limited := RateLimit(d.Limiter)
	admin := func(h http.HandlerFunc) http.Handler { return authed(RequireAdmin(h)) }

	// Auth
	ah := AuthHandler{
		Store:       d.Store,
		Tokens:      d.Tokens,
		Mailer:      d.Mailer,
		BackendURL:  cfg.App.BackendURL,
		FrontendURL: cfg.App.FrontendURL,
		BcryptCost:  cfg.Auth.BcryptCost,
	}
	mux.Handle("/api/auth/register", limited(methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Register,
	})))
	mux.Handle("/api/auth/login", limited(methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Login,
	})))
	mux.HandleFunc("GET /api/auth/verify/{token}", ah.Verify)

	// Users
	uh := UsersHandler{Store: d.Store, Generator: d.Generator}
	mux.Handle("/api/users/profile", authed(methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  uh.Profile,
		http.MethodPost: uh.UpdateProfile,
	})))
	mux.Handle("GET /api/users/ai-suggestions", authed(http.HandlerFunc(uh.AISuggestions)))

	// Internships
	ih := InternshipsHandler{Store: d.Store, Hub: d.Hub}
	rh := RecommendationsHandler{Store: d.Store, Engine: d.Engine}
	mux.HandleFunc("GET /api/internships/list", ih.List)
	mux.Handle("GET /api/internships/applied", authed(http.HandlerFunc(ih.Applied)))
	mux.Handle("POST /api/internships/recommendations", authed(http.HandlerFunc(rh.Recommend)))
	mux.Handle("POST /api/internships/create", authed(http.HandlerFunc(ih.Create)))
	mux.Handle("POST /api/internships/{id}/apply", authed(http.HandlerFunc(ih.Apply)))
	mux.Handle("GET /api/internships/all", admin(ih.All))
	mux.Handle("PUT /api/internships/{id}/status", admin(ih.UpdateStatus))
	mux.Handle("DELETE /api/internships/{id}", admin(ih.Delete))

	// Chat
	chh := ChatHandler{Store: d.Store, Assistant: d.Assistant}
	mux.Handle("POST /api/chat", limited(optional(http.HandlerFunc(chh.Chat))))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("GET /api/events", eh.ServeSSE)

	// Admin: config, secrets, db
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.Handle("/api/admin/config", admin(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	})))
	mux.Handle("GET /api/admin/config/validate", admin(ch.Validate))
	mux.Handle("GET /api/admin/config/path", admin(ch.Path))

	sh := SecretsHandler{}
	mux.Handle("PUT /api/admin/secrets/{name}", admin(sh.Put))

	dh := DBHandler{Store: d.Store}
	mux.Handle("POST /api/admin/db/checkpoint", admin(dh.Checkpoint))

	if d.Maintenance != nil {
		mh := MaintenanceHandler{Runner: d.Maintenance}
		mux.Handle("GET /api/admin/maintenance", admin(mh.Status))
		mux.Handle("POST /api/admin/maintenance/run", admin(mh.Run))
	}

	// Ops
	hh := HealthHandler{Store: d.Store}
	mux.HandleFunc("GET /health", hh.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// NewHandler is NewMux behind request ids, panic recovery, access logging and CORS.
func NewHandler(d Deps) http.Handler {
	return Chain(NewMux(d), RequestID, Recover, AccessLog, Cors(d.config().App.CORSOrigins))
}
