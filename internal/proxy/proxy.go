// Package proxy is the development proxy in front of the two backends:
// requests under /auth/ and /app/ are rewritten to the configured auth
// and app service base URLs, so the dashboard can speak to both through
// one origin.
package proxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
)

type Proxy struct {
	auth *httputil.ReverseProxy
	app  *httputil.ReverseProxy
}

func New(authBaseURL, appBaseURL string) (*Proxy, error) {
	auth, err := newUpstream(authBaseURL)
	if err != nil {
		return nil, fmt.Errorf("configuring the auth upstream: %w", err)
	}

	app, err := newUpstream(appBaseURL)
	if err != nil {
		return nil, fmt.Errorf("configuring the app upstream: %w", err)
	}

	return &Proxy{auth: auth, app: app}, nil
}

func newUpstream(baseURL string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.Out.Host = target.Host
			r.SetXForwarded()
		},
	}, nil
}

// Handler routes by path prefix; the prefix itself is stripped before the
// request reaches the upstream.
func (p *Proxy) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/auth/", http.StripPrefix("/auth", p.auth))
	mux.Handle("/app/", http.StripPrefix("/app", p.app))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return mux
}
