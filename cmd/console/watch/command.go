package watch

import (
	"github.com/spf13/cobra"

	"github.com/contexmem/console/internal/business"
	"github.com/contexmem/console/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"watch",
		"Session validation loop",
		"Periodically re-validates the stored session, adopting rotated session identifiers and clearing the session when the auth service rejects it.",
		buildInfo,
		cmdutils.RunAsService,
		business.WatcherMain,
	)
}
