package logout

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contexmem/console/internal/business"
	"github.com/contexmem/console/internal/cmdutils"
	"github.com/contexmem/console/internal/config"
)

func Cmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Long:  "Invalidates the stored session server-side and removes the local session cookies.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutils.LoadConfig(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmdutils.RunAsJob(cmd.Context(), func(ctx context.Context, cfg *config.Config) error {
				manager, err := business.NewSessionManager(cfg)
				if err != nil {
					return err
				}

				if err := manager.Logout(ctx); err != nil {
					// The local session is gone either way.
					cmd.Printf("Signed out locally; the server reported: %v\n", err)

					return nil
				}

				cmd.Println("Signed out.")

				return nil
			}, cfg)
		},
	}
}
