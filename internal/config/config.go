// internal/config/config.go
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Host        string   `yaml:"host" json:"host"`
		Port        int      `yaml:"port" json:"port"`
		DataDir     string   `yaml:"data_dir" json:"data_dir"`
		BackendURL  string   `yaml:"backend_url" json:"backend_url"`
		FrontendURL string   `yaml:"frontend_url" json:"frontend_url"`
		CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`
	} `yaml:"app" json:"app"`

	Log struct {
		Level  string `yaml:"level" json:"level"`
		Format string `yaml:"format" json:"format"`
	} `yaml:"log" json:"log"`

	Auth struct {
		JWTSecret       string        `yaml:"jwt_secret" json:"jwt_secret"`
		SessionTTL      time.Duration `yaml:"session_ttl" json:"session_ttl"`
		ActivationTTL   time.Duration `yaml:"activation_ttl" json:"activation_ttl"`
		BcryptCost      int           `yaml:"bcrypt_cost" json:"bcrypt_cost"`
		AdminEmail      string        `yaml:"admin_email" json:"admin_email"`
		AdminPassword   string        `yaml:"admin_password" json:"admin_password"`
		RateLimitPerSec float64       `yaml:"rate_limit_per_sec" json:"rate_limit_per_sec"`
		RateLimitBurst  int           `yaml:"rate_limit_burst" json:"rate_limit_burst"`
		// TrustedProxies are peer IPs whose X-Forwarded-For is believed by the rate limiter.
		TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`
	} `yaml:"auth" json:"auth"`

	Mail struct {
		Provider string `yaml:"provider" json:"provider"` // resend | log
		From     string `yaml:"from" json:"from"`
		APIKey   string `yaml:"api_key" json:"api_key"`
		Endpoint string `yaml:"endpoint" json:"endpoint"`
	} `yaml:"mail" json:"mail"`

	AI struct {
		APIKey       string        `yaml:"api_key" json:"api_key"`
		Model        string        `yaml:"model" json:"model"`
		Timeout      time.Duration `yaml:"timeout" json:"timeout"`
		HistoryLimit int           `yaml:"history_limit" json:"history_limit"`
	} `yaml:"ai" json:"ai"`

	Metrics struct {
		RefreshSeconds int `yaml:"refresh_seconds" json:"refresh_seconds"`
	} `yaml:"metrics" json:"metrics"`
}

// Default returns the values used when the config file leaves a field empty.
func Default() Config {
	var cfg Config
	cfg.App.Host = "0.0.0.0"
	cfg.App.Port = 8080
	cfg.App.DataDir = "."
	cfg.App.BackendURL = "http://localhost:8080"
	cfg.App.FrontendURL = "http://localhost:5173"
	cfg.App.CORSOrigins = []string{"http://localhost:5173"}
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.Auth.SessionTTL = 24 * time.Hour
	cfg.Auth.ActivationTTL = time.Hour
	cfg.Auth.BcryptCost = 10
	cfg.Auth.AdminEmail = "admin@example.com"
	cfg.Auth.AdminPassword = "Admin@12345"
	cfg.Auth.RateLimitPerSec = 1
	cfg.Auth.RateLimitBurst = 10
	cfg.Mail.Provider = "log"
	cfg.Mail.From = "InternDesk <onboarding@resend.dev>"
	cfg.Mail.Endpoint = "https://api.resend.com/emails"
	cfg.AI.Model = "gemini-2.0-flash"
	cfg.AI.Timeout = 30 * time.Second
	cfg.AI.HistoryLimit = 5
	cfg.Metrics.RefreshSeconds = 60
	return cfg
}

// Load reads path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Redacted is cfg with secrets blanked, safe to return over HTTP.
func (c Config) Redacted() Config {
	out := c
	out.App.CORSOrigins = append([]string(nil), c.App.CORSOrigins...)
	out.Auth.TrustedProxies = append([]string(nil), c.Auth.TrustedProxies...)
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	out.Auth.JWTSecret = mask(c.Auth.JWTSecret)
	out.Auth.AdminPassword = mask(c.Auth.AdminPassword)
	out.Mail.APIKey = mask(c.Mail.APIKey)
	out.AI.APIKey = mask(c.AI.APIKey)
	return out
}
