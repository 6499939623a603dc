package login

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contexmem/console/internal/business"
	"github.com/contexmem/console/internal/cli"
	"github.com/contexmem/console/internal/cmdutils"
	"github.com/contexmem/console/internal/config"
	"github.com/contexmem/console/internal/sso"
)

func Cmd(buildInfo string) *cobra.Command {
	var google bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Long:  "Signs in with email, password and an emailed one-time code, or with Google.",
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

				if google {
					googleFlow, err := sso.NewGoogleFlow(ctx, cfg.SSO, manager)
					if err != nil {
						return err
					}
					googleFlow.PresentURL = func(url string) {
						cmd.Printf("Open this URL in a browser to sign in:\n\n  %s\n\n", url)
					}

					result, err := googleFlow.Login(ctx)
					if err != nil {
						return err
					}
					cmd.Printf("Signed in as %s\n", result.User.Email)

					return nil
				}

				return cli.RunLogin(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), manager)
			}, cfg)
		},
	}

	cmd.Flags().BoolVar(&google, "google", false, "sign in with Google")

	return cmd
}
