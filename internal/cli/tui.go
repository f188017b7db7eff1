package cli

import (
	"github.com/spf13/cobra"

	"ticklite/internal/ui"
)

// NewTUICommand creates the tui command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tui",
		Short:         "Open the terminal UI",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(rootOpts, cmd)
		},
	}
}

func runTUI(opts *RootOptions, cmd *cobra.Command) error {
	return withApp(cmd.Context(), opts, nil, func(a *app) error {
		a.log.Info("starting terminal ui", "db", a.cfg.DBPath)
		return ui.Run(cmd.Context(), a.store, a.cfg, a.log)
	})
}
