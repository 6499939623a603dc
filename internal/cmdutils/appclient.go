package cmdutils

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contexmem/console/internal/appapi"
	"github.com/contexmem/console/internal/business"
	"github.com/contexmem/console/internal/config"
)

// RunWithAppClient loads the config and hands an app-service client to
// fn, running it as a job. The session headers come from the CLI cookie
// jar; without a stored session the first call fails with an auth error.
func RunWithAppClient(cmd *cobra.Command, buildInfo string, fn func(ctx context.Context, app *appapi.Client) error) error {
	cfg, err := LoadConfig(buildInfo)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	return RunAsJob(cmd.Context(), func(ctx context.Context, cfg *config.Config) error {
		manager, err := business.NewSessionManager(cfg)
		if err != nil {
			return err
		}

		return fn(ctx, business.NewAppClient(cfg, manager))
	}, cfg)
}
