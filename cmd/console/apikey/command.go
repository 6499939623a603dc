package apikey

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/contexmem/console/internal/appapi"
	"github.com/contexmem/console/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage project API keys",
	}

	cmd.AddCommand(listCmd(buildInfo), createCmd(buildInfo), revokeCmd(buildInfo))

	return cmd
}

func listCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "list PROJECT_ID",
		Short: "List a project's API keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutils.RunWithAppClient(cmd, buildInfo, func(ctx context.Context, app *appapi.Client) error {
				keys, err := app.ListAPIKeys(ctx, args[0])
				if err != nil {
					return err
				}

				for _, key := range keys {
					cmd.Printf("%s  %s  %s...\n", key.ID, key.Name, key.Prefix)
				}

				return nil
			})
		},
	}
}

func createCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "create PROJECT_ID NAME",
		Short: "Create an API key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutils.RunWithAppClient(cmd, buildInfo, func(ctx context.Context, app *appapi.Client) error {
				key, err := app.CreateAPIKey(ctx, args[0], args[1])
				if err != nil {
					return err
				}

				// The secret is shown exactly once.
				cmd.Printf("Created key %s\n%s\n", key.ID, key.Secret)

				return nil
			})
		},
	}
}

func revokeCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke PROJECT_ID KEY_ID",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutils.RunWithAppClient(cmd, buildInfo, func(ctx context.Context, app *appapi.Client) error {
				if err := app.RevokeAPIKey(ctx, args[0], args[1]); err != nil {
					return err
				}

				cmd.Println("Key revoked.")

				return nil
			})
		},
	}
}
