package httpapi

import (
	"context"
	"sync/atomic"

	"interndesk/internal/auth"
	"interndesk/internal/chat"
	"interndesk/internal/config"
	"interndesk/internal/domain"
	"interndesk/internal/events"
	"interndesk/internal/mail"
	"interndesk/internal/maintenance"
	"interndesk/internal/rank"
	"interndesk/internal/store"
)

// Store is the persistence surface the handlers need. *store.DB implements it.
type Store interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	GetUser(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, id string, upd store.ProfileUpdate) (domain.User, error)

	CreateInternship(ctx context.Context, in domain.Internship) (domain.Internship, error)
	GetInternship(ctx context.Context, id string) (domain.Internship, error)
	ListInternships(ctx context.Context, opts store.ListInternshipsOpts) ([]domain.Internship, error)
	UpdateInternshipStatus(ctx context.Context, id string, status domain.Status) (domain.Internship, error)
	DeleteInternship(ctx context.Context, id string) error

	Apply(ctx context.Context, internshipID, userID string) error
	ListApplicants(ctx context.Context, internshipID string) ([]domain.Applicant, error)

	Ping(ctx context.Context) error
	Checkpoint(ctx context.Context) error
}

type Deps struct {
	Store Store
	Hub   *events.Hub

	Tokens *auth.Tokens
	Mailer mail.Mailer

	Engine    rank.Engine
	Assistant *chat.Assistant
	Generator chat.Generator

	// Maintenance exposes the housekeeping runner to admins. Nil hides the routes.
	Maintenance *maintenance.Runner

	// Limiter throttles the auth and chat endpoints per client. Nil disables it.
	Limiter *ClientLimiter

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}

func (d Deps) config() config.Config {
	if d.CfgVal == nil {
		return config.Default()
	}
	if c, ok := d.CfgVal.Load().(config.Config); ok {
		return c
	}
	return config.Default()
}
