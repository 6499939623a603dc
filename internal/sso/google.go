// Package sso implements Google sign-in for the console: the OIDC
// authorization code flow with PKCE against accounts.google.com, a
// loopback redirect listener, and the final exchange of the Google ID
// token for a backend session.
package sso

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	slogctx "github.com/veqryn/slog-context"

	"github.com/contexmem/console/internal/authapi"
	"github.com/contexmem/console/internal/config"
	"github.com/contexmem/console/internal/pkce"
	"github.com/contexmem/console/internal/session"
)

const googleIssuer = "https://accounts.google.com"

var ErrStateMismatch = errors.New("sso state mismatch")

type GoogleFlow struct {
	relyingParty rp.RelyingParty
	manager      *session.Manager
	source       pkce.Source
	listenAddr   string

	// PresentURL shows the authorization URL to the user, e.g. by
	// printing it for the browser.
	PresentURL func(url string)
}

func NewGoogleFlow(ctx context.Context, cfg config.SSO, manager *session.Manager) (*GoogleFlow, error) {
	if cfg.GoogleClientID == "" {
		return nil, errors.New("google client ID is not configured")
	}

	redirectURI := fmt.Sprintf("http://%s/callback", cfg.RedirectAddress)

	relyingParty, err := rp.NewRelyingPartyOIDC(
		ctx,
		googleIssuer,
		cfg.GoogleClientID,
		"",
		redirectURI,
		[]string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail},
	)
	if err != nil {
		return nil, fmt.Errorf("creating the google relying party: %w", err)
	}

	return &GoogleFlow{
		relyingParty: relyingParty,
		manager:      manager,
		listenAddr:   cfg.RedirectAddress,
	}, nil
}

// Login runs the whole flow: it serves a loopback callback, sends the
// user to Google, exchanges the returned code with PKCE, and trades the
// Google ID token for a backend session.
func (g *GoogleFlow) Login(ctx context.Context) (authapi.LoginResult, error) {
	state := g.source.State()
	challenge := g.source.PKCE()

	code, err := g.awaitCallback(ctx, state, func() string {
		return rp.AuthURL(state, g.relyingParty, rp.WithCodeChallenge(challenge.Challenge))
	})
	if err != nil {
		return authapi.LoginResult{}, err
	}

	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, g.relyingParty, rp.WithCodeVerifier(challenge.Verifier))
	if err != nil {
		return authapi.LoginResult{}, fmt.Errorf("exchanging the authorization code: %w", err)
	}

	if email, ok := emailHint(tokens.IDToken); ok {
		slogctx.Info(ctx, "Google account confirmed", "email", email)
	}

	result, err := g.manager.GoogleLogin(ctx, tokens.IDToken)
	if err != nil {
		return authapi.LoginResult{}, fmt.Errorf("establishing a session from the google token: %w", err)
	}

	return result, nil
}

// awaitCallback serves the loopback redirect endpoint until Google sends
// the code back, the context ends, or the timeout fires.
func (g *GoogleFlow) awaitCallback(ctx context.Context, state string, authURL func() string) (string, error) {
	listener, err := new(net.ListenConfig).Listen(ctx, "tcp", g.listenAddr)
	if err != nil {
		return "", fmt.Errorf("creating the loopback listener: %w", err)
	}

	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callback{err: ErrStateMismatch}

			return
		}

		_, _ = fmt.Fprintln(w, "Signed in. You can close this tab and return to the console.")
		results <- callback{code: r.URL.Query().Get("code")}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogctx.Error(ctx, "Loopback callback server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if g.PresentURL != nil {
		g.PresentURL(authURL())
	} else {
		slogctx.Info(ctx, "Open the Google sign-in URL in a browser", "url", authURL())
	}

	select {
	case result := <-results:
		return result.code, result.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// emailHint reads the email claim out of the ID token without verifying
// the signature; the backend is the party that must verify the token.
func emailHint(idToken string) (string, bool) {
	token, err := jwt.ParseSigned(idToken, []jose.SignatureAlgorithm{jose.RS256, jose.ES256})
	if err != nil {
		return "", false
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := token.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return "", false
	}

	return claims.Email, claims.Email != ""
}
