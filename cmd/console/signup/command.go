package signup

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contexmem/console/internal/business"
	"github.com/contexmem/console/internal/cli"
	"github.com/contexmem/console/internal/cmdutils"
	"github.com/contexmem/console/internal/config"
)

func Cmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long:  "Creates an account: email, emailed one-time code, then profile and password.",
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

				return cli.RunSignup(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), manager)
			}, cfg)
		},
	}
}
