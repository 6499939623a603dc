package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/openkcm/common-sdk/pkg/utils"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/contexmem/console/cmd/console/apikey"
	"github.com/contexmem/console/cmd/console/billing"
	"github.com/contexmem/console/cmd/console/login"
	"github.com/contexmem/console/cmd/console/logout"
	"github.com/contexmem/console/cmd/console/prefs"
	"github.com/contexmem/console/cmd/console/project"
	"github.com/contexmem/console/cmd/console/proxy"
	"github.com/contexmem/console/cmd/console/sessions"
	"github.com/contexmem/console/cmd/console/signup"
	"github.com/contexmem/console/cmd/console/watch"
	"github.com/contexmem/console/cmd/console/whoami"
)

var (
	// BuildInfo will be set by the build system
	BuildInfo = "{}"

	isVersionCmd     bool
	gracefulShutdown time.Duration
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Console Version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		isVersionCmd = true

		value, err := utils.ExtractFromComplexValue(BuildInfo)
		if err != nil {
			return err
		}

		slog.InfoContext(cmd.Context(), value)

		return nil
	},
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Contexmem Console",
		Long:  "Contexmem console: account, project, API key and billing management for the contextual memory service.",
	}

	cmd.PersistentFlags().DurationVar(&gracefulShutdown, "graceful-shutdown", 1*time.Second, "graceful shutdown")

	cmd.AddCommand(
		versionCmd,
		login.Cmd(BuildInfo),
		signup.Cmd(BuildInfo),
		logout.Cmd(BuildInfo),
		whoami.Cmd(BuildInfo),
		sessions.Cmd(BuildInfo),
		project.Cmd(BuildInfo),
		apikey.Cmd(BuildInfo),
		billing.Cmd(BuildInfo),
		prefs.Cmd(BuildInfo),
		proxy.Cmd(BuildInfo),
		watch.Cmd(BuildInfo),
	)

	return cmd
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Error(ctx, "failed to start the application", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return err
	}

	if !isVersionCmd {
		_, _ = fmt.Fprintf(os.Stderr, "Graceful shutdown in %s\n", gracefulShutdown)
		time.Sleep(gracefulShutdown)
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
