package cli

import (
	"time"

	"github.com/spf13/cobra"

	"ticklite/internal/view"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	View   string
	Search string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a view",
		Long: `List the tasks in one view, newest first.

Views:
  all        every task
  inbox      open tasks without a due date
  today      open tasks due today
  upcoming   open tasks due later
  completed  finished tasks`,
		Aliases:       []string{"ls"},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.View, "view", "", "view to list (default from config)")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "case-insensitive text to match in title, notes and tags")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	return withApp(cmd.Context(), opts.RootOptions, cmd.ErrOrStderr(), func(a *app) error {
		name := opts.View
		if name == "" {
			name = a.cfg.DefaultView
		}
		v, err := view.ParseView(name)
		if err != nil {
			return err
		}
		tasks := view.Classify(a.store.Snapshot(), v, time.Now(), opts.Search)
		return newFormatter(opts.RootOptions, cmd.OutOrStdout()).Tasks(tasks)
	})
}
