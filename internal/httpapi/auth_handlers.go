package httpapi

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"interndesk/internal/auth"
	"interndesk/internal/domain"
	"interndesk/internal/logging"
	"interndesk/internal/mail"
	"interndesk/internal/store"
	"interndesk/internal/validation"
)

type AuthHandler struct {
	Store       Store
	Tokens      *auth.Tokens
	Mailer      mail.Mailer
	BackendURL  string
	FrontendURL string
	BcryptCost  int
}

type registerReq struct {
	FullName string `json:"fullName" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=student admin"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginUser struct {
	ID       string      `json:"id"`
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// Register signs an activation token for the pending account and mails the
// verification link. Nothing is stored until the link is followed.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validation.ValidateStruct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleStudent
	}
	if role == domain.RoleAdmin {
		writeMessage(w, http.StatusBadRequest, "Admin accounts cannot be self-registered")
		return
	}

	log := logging.Ctx(r.Context())

	_, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	switch {
	case err == nil:
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	case !errors.Is(err, store.ErrNotFound):
		log.Error().Err(err).Msg("register: lookup failed")
		writeMessage(w, http.StatusInternalServerError, "Server error during registration")
		return
	}

	hash, err := auth.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		log.Error().Err(err).Msg("register: hash failed")
		writeMessage(w, http.StatusInternalServerError, "Server error during registration")
		return
	}
	token, err := h.Tokens.IssueActivation(auth.PendingUser{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		log.Error().Err(err).Msg("register: sign failed")
		writeMessage(w, http.StatusInternalServerError, "Server error during registration")
		return
	}

	link := strings.TrimRight(h.BackendURL, "/") + "/api/auth/verify/" + token
	if err := h.Mailer.SendVerification(r.Context(), req.Email, link); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("register: email sending failed")
		writeMessage(w, http.StatusInternalServerError, "Email sending failed")
		return
	}

	writeMessage(w, http.StatusOK, "Verification link sent! Check your email to complete registration.")
}

// Verify creates the account carried by a valid activation token and answers with an HTML page.
func (h AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	loginLink := html.EscapeString(strings.TrimRight(h.FrontendURL, "/") + "/login")

	pending, err := h.Tokens.ParseActivation(r.PathValue("token"))
	if err != nil {
		writeHTML(w, http.StatusBadRequest, "<h1>Invalid or Expired Link. Please register again.</h1>")
		return
	}

	_, err = h.Store.GetUserByEmail(r.Context(), pending.Email)
	if err == nil {
		writeHTML(w, http.StatusOK, alreadyActivePage(loginLink))
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		logging.Ctx(r.Context()).Error().Err(err).Msg("verify: lookup failed")
		writeHTML(w, http.StatusInternalServerError, "Server Error")
		return
	}

	u, err := h.Store.CreateUser(r.Context(), domain.User{
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		FullName:     pending.FullName,
		Role:         pending.Role,
	})
	if errors.Is(err, store.ErrDuplicate) {
		// a concurrent verify of the same link won
		writeHTML(w, http.StatusOK, alreadyActivePage(loginLink))
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("verify: create failed")
		writeHTML(w, http.StatusInternalServerError, "Server Error")
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", u.ID).Str("email", u.Email).Msg("user created")
	writeHTML(w, http.StatusOK, fmt.Sprintf(`<html>
  <body style="font-family:sans-serif; text-align:center; padding:40px;">
    <h1>Account Created!</h1>
    <p>Your registration is complete.</p>
    <a href="%s">Go to Login</a>
  </body>
</html>`, loginLink))
}

func alreadyActivePage(loginLink string) string {
	return fmt.Sprintf(`<h1>Account Already Active</h1>
<p>You can already log in.</p>
<a href="%s">Go to Login</a>`, loginLink)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("login: lookup failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := h.Tokens.IssueSession(u)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("login: sign failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, map[string]any{
		"token": token,
		"user": loginUser{
			ID:       u.ID,
			FullName: u.FullName,
			Email:    u.Email,
			Role:     u.Role,
		},
	})
}
