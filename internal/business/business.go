// Package business wires the configuration into clients, stores and
// servers for the cmd layer.
package business

import (
	"context"
	"fmt"
	"net/http"
	"runtime"

	slogctx "github.com/veqryn/slog-context"

	"github.com/contexmem/console/internal/appapi"
	"github.com/contexmem/console/internal/authapi"
	"github.com/contexmem/console/internal/config"
	"github.com/contexmem/console/internal/cookiestore"
	"github.com/contexmem/console/internal/proxy"
	"github.com/contexmem/console/internal/session"
)

// ProxyMain runs the development proxy until the context ends.
func ProxyMain(ctx context.Context, cfg *config.Config) error {
	p, err := proxy.New(cfg.AuthService.BaseURL, cfg.AppService.BaseURL)
	if err != nil {
		return fmt.Errorf("initialising the proxy: %w", err)
	}

	return proxy.StartServer(ctx, cfg, p)
}

// WatcherMain runs the session validation loop as a standalone service.
func WatcherMain(ctx context.Context, cfg *config.Config) error {
	manager, err := NewSessionManager(cfg)
	if err != nil {
		return fmt.Errorf("initialising the session manager: %w", err)
	}

	if !manager.IsAuthenticated() {
		slogctx.Info(ctx, "No stored session to watch")
		return nil
	}

	slogctx.Info(ctx, "Starting the session validation loop", "interval", cfg.Session.ValidationInterval)
	manager.RunValidator(ctx, cfg.Session.ValidationInterval)

	return nil
}

// NewSessionManager builds the cookie store and auth client and wraps
// them in a session manager. The CLI jar persists to the configured
// cookie file; an empty path falls back to memory.
func NewSessionManager(cfg *config.Config) (*session.Manager, error) {
	var jar cookiestore.Jar
	if cfg.Session.CookieFile != "" {
		fileJar, err := cookiestore.NewFileJar(cfg.Session.CookieFile)
		if err != nil {
			return nil, fmt.Errorf("opening the cookie jar: %w", err)
		}
		jar = fileJar
	} else {
		jar = cookiestore.NewMemoryJar()
	}

	store := cookiestore.New(jar, cfg.Session)

	authClient := authapi.NewClient(
		cfg.AuthService.BaseURL,
		authapi.WithHTTPClient(&http.Client{Timeout: cfg.AuthService.Timeout}),
		authapi.WithUserAgent(userAgent(cfg)),
	)

	return session.NewManager(authClient, store), nil
}

// NewAppClient builds the app-service client on top of the manager's
// session source.
func NewAppClient(cfg *config.Config, manager *session.Manager) *appapi.Client {
	return appapi.NewClient(
		cfg.AppService.BaseURL,
		manager,
		appapi.WithHTTPClient(&http.Client{Timeout: cfg.AppService.Timeout}),
	)
}

func userAgent(cfg *config.Config) string {
	name := cfg.Application.Name
	if name == "" {
		name = "contexmem-console"
	}

	return fmt.Sprintf("%s (%s; %s)", name, runtime.GOOS, runtime.GOARCH)
}
