package proxy

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/samber/oops"

	slogctx "github.com/veqryn/slog-context"

	"github.com/contexmem/console/internal/config"
)

// StartServer serves the proxy until ctx ends, then shuts down
// gracefully within the configured timeout.
func StartServer(ctx context.Context, cfg *config.Config, p *Proxy) error {
	if err := initMeters(ctx, cfg); err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.Proxy.Address,
		Handler: meterMiddleware(cfg, p.Handler()),
	}

	slogctx.Info(ctx, "Starting a listener", "address", server.Addr)

	// Parse network if the address is provided in the format of
	// network://address, otherwise default to tcp. Binding tests to a unix
	// socket avoids scanning for a free port.
	network := "tcp"
	if idx := strings.IndexRune(server.Addr, ':'); idx != -1 && len(server.Addr) > idx+3 && server.Addr[idx:idx+3] == "://" {
		network = server.Addr[:idx]
		server.Addr = server.Addr[idx+3:]
	}

	listener, err := new(net.ListenConfig).Listen(ctx, network, server.Addr)
	if err != nil {
		return oops.In("Proxy").
			WithContext(ctx).
			Wrapf(err, "Failed to create a listener")
	}

	go func() {
		slogctx.Info(ctx, "Serving the dev proxy", "address", listener.Addr().String())
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogctx.Error(ctx, "Failed to serve the dev proxy", "error", err)
		}

		slogctx.Info(ctx, "Stopped the dev proxy")
	}()

	<-ctx.Done()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.WithoutCancel(ctx), cfg.Proxy.ShutdownTimeout)
	defer shutdownRelease()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.In("Proxy").
			WithContext(ctx).
			Wrapf(err, "Failed shutting down the dev proxy")
	}

	slogctx.Info(ctx, "Completed graceful shutdown of the dev proxy")

	return nil
}
