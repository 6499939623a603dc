package whoami

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
		Use:   "whoami",
		Short: "Show the signed-in user",
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

				if err := manager.Initialize(ctx); err != nil {
					return fmt.Errorf("resolving the stored session: %w", err)
				}

				user, ok := manager.User()
				if !ok {
					cmd.Println("Not signed in.")

					return nil
				}

				cmd.Printf("%s %s <%s>\n", user.FirstName, user.LastName, user.Email)

				return nil
			}, cfg)
		},
	}
}
