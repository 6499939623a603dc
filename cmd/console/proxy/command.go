package proxy

import (
	"github.com/spf13/cobra"

	"github.com/contexmem/console/internal/business"
	"github.com/contexmem/console/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"proxy",
		"Development proxy",
		"Serves /auth/* and /app/* on one origin, rewriting to the configured auth and app service base URLs.",
		buildInfo,
		cmdutils.RunAsService,
		business.ProxyMain,
	)
}
