package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimRight(strings.TrimSpace(x), "/")
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.App.CORSOrigins = trimList(out.App.CORSOrigins)
	out.App.BackendURL = strings.TrimRight(strings.TrimSpace(out.App.BackendURL), "/")
	out.App.FrontendURL = strings.TrimRight(strings.TrimSpace(out.App.FrontendURL), "/")
	out.Auth.TrustedProxies = trimList(out.Auth.TrustedProxies)
	out.Auth.AdminEmail = strings.ToLower(strings.TrimSpace(out.Auth.AdminEmail))
	out.Mail.Provider = strings.ToLower(strings.TrimSpace(out.Mail.Provider))
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))
	out.Log.Format = strings.ToLower(strings.TrimSpace(out.Log.Format))

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	for _, f := range []struct{ name, val string }{
		{"app.backend_url", out.App.BackendURL},
		{"app.frontend_url", out.App.FrontendURL},
	} {
		u, err := url.Parse(f.val)
		if f.val == "" || err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("%s must be an absolute URL", f.name)
		}
	}
	if len(out.App.CORSOrigins) == 0 {
		res.addWarn("app.cors_origins is empty; browsers will be refused.")
	}

	switch out.Log.Format {
	case "json", "console":
	default:
		res.addErr("log.format must be json or console")
	}

	if out.Auth.SessionTTL <= 0 {
		res.addErr("auth.session_ttl must be > 0")
	}
	if out.Auth.ActivationTTL <= 0 {
		res.addErr("auth.activation_ttl must be > 0")
	}
	if out.Auth.BcryptCost < 4 || out.Auth.BcryptCost > 31 {
		res.addErr("auth.bcrypt_cost must be 4..31")
	}
	if out.Auth.JWTSecret == "" {
		res.addWarn("auth.jwt_secret is empty; it will be read from the OS keyring.")
	} else if len(out.Auth.JWTSecret) < 16 {
		res.addWarn("auth.jwt_secret is short (%d chars).", len(out.Auth.JWTSecret))
	}
	if out.Auth.AdminEmail == "" {
		res.addErr("auth.admin_email is required")
	}
	if out.Auth.RateLimitPerSec <= 0 {
		res.addErr("auth.rate_limit_per_sec must be > 0")
	}
	if out.Auth.RateLimitBurst <= 0 {
		res.addErr("auth.rate_limit_burst must be > 0")
	}
	for _, p := range out.Auth.TrustedProxies {
		if net.ParseIP(p) == nil {
			res.addErr("auth.trusted_proxies: %q is not an IP address", p)
		}
	}

	switch out.Mail.Provider {
	case "log":
		res.addWarn("mail.provider is log; verification links are only written to the log.")
	case "resend":
		if out.Mail.APIKey == "" {
			res.addWarn("mail.api_key is empty; it will be read from the OS keyring.")
		}
		if strings.TrimSpace(out.Mail.From) == "" {
			res.addErr("mail.from is required when mail.provider=resend")
		}
	default:
		res.addErr("mail.provider must be resend or log")
	}

	if strings.TrimSpace(out.AI.Model) == "" {
		res.addErr("ai.model is required")
	}
	if out.AI.Timeout <= 0 {
		res.addErr("ai.timeout must be > 0")
	}
	if out.AI.HistoryLimit < 0 {
		res.addErr("ai.history_limit must be >= 0")
	}

	if out.Metrics.RefreshSeconds <= 0 {
		res.addErr("metrics.refresh_seconds must be > 0")
	} else if out.Metrics.RefreshSeconds < 5 {
		res.addWarn("metrics.refresh_seconds is very low (%d).", out.Metrics.RefreshSeconds)
	}

	return out, res
}
