package sessions

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contexmem/console/internal/business"
	"github.com/contexmem/console/internal/cmdutils"
	"github.com/contexmem/console/internal/config"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage device sessions",
	}

	cmd.AddCommand(listCmd(buildInfo), revokeCmd(buildInfo))

	return cmd
}

func listCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the account's device sessions",
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

				records, err := manager.AllSessions(ctx)
				if err != nil {
					return err
				}

				for _, record := range records {
					marker := " "
					if record.Current {
						marker = "*"
					}
					cmd.Printf("%s %s  %s/%s %s %s  last seen %s\n",
						marker, record.SessionID,
						record.DeviceInfo.DeviceType, record.DeviceInfo.OperatingSystem,
						record.DeviceInfo.BrowserName, record.DeviceInfo.BrowserVersion,
						record.LastSeenAt.Format("2006-01-02 15:04"),
					)
				}

				return nil
			}, cfg)
		},
	}
}

func revokeCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke USER_ID SESSION_ID",
		Short: "Revoke a device session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutils.LoadConfig(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmdutils.RunAsJob(cmd.Context(), func(ctx context.Context, cfg *config.Config) error {
				manager, err := business.NewSessionManager(cfg)
				if err != nil {
					return err
				}

				if err := manager.RevokeSession(ctx, args[0], args[1]); err != nil {
					return err
				}

				cmd.Println("Session revoked.")

				return nil
			}, cfg)
		},
	}
}
