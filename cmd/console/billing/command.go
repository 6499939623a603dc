package billing

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/contexmem/console/internal/appapi"
	"github.com/contexmem/console/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Balance and top-up",
	}

	cmd.AddCommand(balanceCmd(buildInfo), topUpCmd(buildInfo))

	return cmd
}

func balanceCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the credit balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdutils.RunWithAppClient(cmd, buildInfo, func(ctx context.Context, app *appapi.Client) error {
				balance, err := app.Balance(ctx)
				if err != nil {
					return err
				}

				cmd.Printf("%d credits (%s)\n", balance.Credits, balance.Currency)

				return nil
			})
		},
	}
}

func topUpCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "top-up AMOUNT_CENTS",
		Short: "Create a top-up checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || amount <= 0 {
				return cmd.Usage()
			}

			return cmdutils.RunWithAppClient(cmd, buildInfo, func(ctx context.Context, app *appapi.Client) error {
				intent, err := app.TopUp(ctx, amount)
				if err != nil {
					return err
				}

				cmd.Printf("Complete the payment at:\n\n  %s\n", intent.CheckoutURL)

				return nil
			})
		},
	}
}
