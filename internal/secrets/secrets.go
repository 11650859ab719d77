package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"interndesk/internal/config"
	"interndesk/internal/logging"
)

const (
	// KeyringService groups the app's secrets in the OS keychain.
	KeyringService = "interndesk"

	AccountJWT    = "interndesk:jwt-secret"
	AccountGemini = "interndesk:gemini-api-key"
	AccountResend = "interndesk:resend-api-key"
)

var ErrNotFound = errors.New("secret not found")

// Get returns the keychain value stored under account.
func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	v, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && strings.TrimSpace(v) == "") {
		return "", fmt.Errorf("%s: %w", account, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// Resolve fills secrets that config and environment left empty from the keychain.
// Values already set are never overwritten.
func Resolve(cfg *config.Config) {
	fill := func(dst *string, account string) {
		if strings.TrimSpace(*dst) != "" {
			return
		}
		v, err := Get(account)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logging.Warn().Err(err).Str("account", account).Msg("keyring lookup failed")
			}
			return
		}
		*dst = v
	}
	fill(&cfg.Auth.JWTSecret, AccountJWT)
	fill(&cfg.AI.APIKey, AccountGemini)

	hadMailKey := cfg.Mail.APIKey != ""
	fill(&cfg.Mail.APIKey, AccountResend)
	if !hadMailKey && cfg.Mail.APIKey != "" && cfg.Mail.Provider == "log" {
		cfg.Mail.Provider = "resend"
	}
}
