package prefs

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/contexmem/console/internal/appapi"
	"github.com/contexmem/console/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Per-project recall and generation preferences",
	}

	cmd.AddCommand(getCmd(buildInfo), setCmd(buildInfo))

	return cmd
}

func getCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT_ID",
		Short: "Show a project's preferences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutils.RunWithAppClient(cmd, buildInfo, func(ctx context.Context, app *appapi.Client) error {
				prefs, err := app.Preferences(ctx, args[0])
				if err != nil {
					return err
				}

				cmd.Printf("recall depth: %d\nmodel: %s\ntemperature: %.2f\n",
					prefs.RecallDepth, prefs.GenerationModel, prefs.Temperature)

				return nil
			})
		},
	}
}

func setCmd(buildInfo string) *cobra.Command {
	var (
		recallDepth int
		model       string
		temperature float64
	)

	cmd := &cobra.Command{
		Use:   "set PROJECT_ID",
		Short: "Update a project's preferences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutils.RunWithAppClient(cmd, buildInfo, func(ctx context.Context, app *appapi.Client) error {
				updated, err := app.UpdatePreferences(ctx, args[0], appapi.Preferences{
					RecallDepth:     recallDepth,
					GenerationModel: model,
					Temperature:     temperature,
				})
				if err != nil {
					return err
				}

				cmd.Printf("recall depth: %d\nmodel: %s\ntemperature: %.2f\n",
					updated.RecallDepth, updated.GenerationModel, updated.Temperature)

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&recallDepth, "recall-depth", 5, "how many memories are recalled per query")
	cmd.Flags().StringVar(&model, "model", "cm-1", "generation model")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.7, "generation temperature")

	return cmd
}
