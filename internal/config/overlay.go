// config/overlay.go
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files into the process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

// OverlayEnv applies environment overrides on top of the file config.
func OverlayEnv(cfg *Config) {
	str := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = p
		}
	}
	str(&cfg.App.DataDir, "INTERNDESK_DATA_DIR")
	str(&cfg.App.BackendURL, "BACKEND_URL")
	str(&cfg.App.FrontendURL, "FRONTEND_URL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.App.CORSOrigins = strings.Split(v, ",")
	}

	str(&cfg.Log.Level, "LOG_LEVEL")
	str(&cfg.Log.Format, "LOG_FORMAT")

	str(&cfg.Auth.JWTSecret, "JWT_SECRET")
	str(&cfg.Auth.AdminEmail, "ADMIN_EMAIL")
	str(&cfg.Auth.AdminPassword, "ADMIN_PASSWORD")
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.Auth.TrustedProxies = strings.Split(v, ",")
	}

	str(&cfg.Mail.APIKey, "RESEND_API_KEY")
	if cfg.Mail.APIKey != "" && os.Getenv("MAIL_PROVIDER") == "" {
		cfg.Mail.Provider = "resend"
	}
	str(&cfg.Mail.Provider, "MAIL_PROVIDER")

	str(&cfg.AI.APIKey, "GEMINI_API_KEY")
	str(&cfg.AI.Model, "GEMINI_MODEL")
}
