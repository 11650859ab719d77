package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"interndesk/internal/domain"
)

var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
)

const (
	subjectSession    = "session"
	subjectActivation = "activation"
)

// Claims identify the caller of an authenticated request.
type Claims struct {
	ID    string      `json:"id"`
	Role  domain.Role `json:"role"`
	Email string      `json:"email"`
	jwt.RegisteredClaims
}

func (c Claims) IsAdmin() bool { return c.Role == domain.RoleAdmin }

// PendingUser is a registration waiting for its email to be verified.
type PendingUser struct {
	FullName     string      `json:"fullName"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"passwordHash"`
	Role         domain.Role `json:"role"`
}

type activationClaims struct {
	User PendingUser `json:"user"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session and activation tokens.
type Tokens struct {
	secret        []byte
	sessionTTL    time.Duration
	activationTTL time.Duration
	now           func() time.Time
}

func NewTokens(secret string, sessionTTL, activationTTL time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if activationTTL <= 0 {
		activationTTL = time.Hour
	}
	return &Tokens{
		secret:        []byte(secret),
		sessionTTL:    sessionTTL,
		activationTTL: activationTTL,
		now:           time.Now,
	}, nil
}

func (t *Tokens) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := t.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// IssueSession signs a login token for u.
func (t *Tokens) IssueSession(u domain.User) (string, error) {
	claims := Claims{
		ID:               u.ID,
		Role:             u.Role,
		Email:            u.Email,
		RegisteredClaims: t.registered(subjectSession, t.sessionTTL),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return s, nil
}

func (t *Tokens) ParseSession(token string) (Claims, error) {
	var c Claims
	if err := t.parse(token, &c); err != nil {
		return Claims{}, err
	}
	if c.Subject != subjectSession || c.ID == "" {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}

// IssueActivation signs a verification token carrying the whole pending registration.
func (t *Tokens) IssueActivation(p PendingUser) (string, error) {
	claims := activationClaims{
		User:             p,
		RegisteredClaims: t.registered(subjectActivation, t.activationTTL),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign activation: %w", err)
	}
	return s, nil
}

func (t *Tokens) ParseActivation(token string) (PendingUser, error) {
	var c activationClaims
	if err := t.parse(token, &c); err != nil {
		return PendingUser{}, err
	}
	if c.Subject != subjectActivation || c.User.Email == "" {
		return PendingUser{}, ErrInvalidToken
	}
	return c.User, nil
}

func (t *Tokens) parse(token string, claims jwt.Claims) error {
	if token == "" {
		return ErrNoToken
	}
	_, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrNoToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}
