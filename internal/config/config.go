// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	AuthService AuthService `yaml:"authService"`
	AppService  AppService  `yaml:"appService"`
	Session     Session     `yaml:"session"`
	Proxy       Proxy       `yaml:"proxy"`
	SSO         SSO         `yaml:"sso"`
}

// AuthService locates the external authentication backend.
type AuthService struct {
	BaseURL string        `yaml:"baseURL" default:"https://auth.contexmem.io"`
	Timeout time.Duration `yaml:"timeout" default:"15s"`
}

// AppService locates the external application backend.
type AppService struct {
	BaseURL string        `yaml:"baseURL" default:"https://api.contexmem.io"`
	Timeout time.Duration `yaml:"timeout" default:"15s"`
}

type Session struct {
	// ExpirationDays is the lifetime of both session cookies.
	ExpirationDays int `yaml:"expirationDays" default:"7"`
	// CookieFile is where the CLI jar persists cookies between invocations.
	// Empty means an in-memory jar.
	CookieFile string `yaml:"cookieFile" default:"$HOME/.contexmem-console/cookies.json"`
	// ValidationInterval is the period of the background session validation loop.
	ValidationInterval time.Duration `yaml:"validationInterval" default:"60s"`
}

type Proxy struct {
	Address         string        `yaml:"address" default:":8443"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

type SSO struct {
	GoogleClientID string `yaml:"googleClientID"`
	// RedirectAddress is the loopback listener used during the Google flow.
	RedirectAddress string `yaml:"redirectAddress" default:"127.0.0.1:8976"`
}

// SessionCookieTemplate returns the fixed attributes both session cookies
// are written and removed with. Removal must reuse these attributes or
// browsers silently no-op.
func (s Session) SessionCookieTemplate(name string) CookieTemplate {
	days := s.ExpirationDays
	if days <= 0 {
		days = 7
	}

	return CookieTemplate{
		Name:     name,
		MaxAge:   days * 24 * 60 * 60,
		Path:     "/",
		Secure:   true,
		SameSite: CookieSameSiteStrict,
	}
}
