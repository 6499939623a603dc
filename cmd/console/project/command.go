package project

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/contexmem/console/internal/appapi"
	"github.com/contexmem/console/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(listCmd(buildInfo), createCmd(buildInfo), renameCmd(buildInfo), deleteCmd(buildInfo))

	return cmd
}

func listCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdutils.RunWithAppClient(cmd, buildInfo, func(ctx context.Context, app *appapi.Client) error {
				projects, err := app.ListProjects(ctx)
				if err != nil {
					return err
				}

				for _, p := range projects {
					cmd.Printf("%s  %s\n", p.ID, p.Name)
				}

				return nil
			})
		},
	}
}

func createCmd(buildInfo string) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutils.RunWithAppClient(cmd, buildInfo, func(ctx context.Context, app *appapi.Client) error {
				p, err := app.CreateProject(ctx, args[0], description)
				if err != nil {
					return err
				}

				cmd.Printf("Created project %s (%s)\n", p.Name, p.ID)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "project description")

	return cmd
}

func renameCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "rename PROJECT_ID NAME",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutils.RunWithAppClient(cmd, buildInfo, func(ctx context.Context, app *appapi.Client) error {
				p, err := app.RenameProject(ctx, args[0], args[1])
				if err != nil {
					return err
				}

				cmd.Printf("Renamed project %s to %s\n", p.ID, p.Name)

				return nil
			})
		},
	}
}

func deleteCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PROJECT_ID",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutils.RunWithAppClient(cmd, buildInfo, func(ctx context.Context, app *appapi.Client) error {
				if err := app.DeleteProject(ctx, args[0]); err != nil {
					return err
				}

				cmd.Println("Project deleted.")

				return nil
			})
		},
	}
}
