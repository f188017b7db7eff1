package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"ticklite/internal/notify"
	"ticklite/internal/reminder"
)

// RemindOptions holds flags for the remind command.
type RemindOptions struct {
	*RootOptions
	Once bool
}

// NewRemindCommand creates the remind command.
func NewRemindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the reminder scheduler without the UI",
		Long: `Check for tasks that are due soon and print a reminder for each.

Runs until interrupted, checking on the configured interval. With --once it
checks a single time and exits.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemind(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Once, "once", false, "check once and exit")

	return cmd
}

func runRemind(opts *RemindOptions, cmd *cobra.Command) error {
	return withApp(cmd.Context(), opts.RootOptions, cmd.ErrOrStderr(), func(a *app) error {
		out := cmd.OutOrStdout()
		sink := notify.NewGate(notify.Fanout{
			notify.Log{Logger: a.log},
			printSink(out),
		}, a.cfg.Reminder.Enabled)
		if !sink.Granted() {
			a.log.Warn("reminders are disabled in config, nothing will be shown")
		}

		sched := reminder.New(a.store, sink,
			reminder.WithInterval(a.cfg.Reminder.IntervalDuration()),
			reminder.WithWindow(a.cfg.Reminder.WindowDuration()),
			reminder.WithDedupe(a.cfg.Reminder.Dedupe),
			reminder.WithLogger(a.log),
		)
		if opts.Once {
			n := sched.Tick(time.Now())
			a.log.Debug("reminder check done", "sent", n)
			return nil
		}
		sched.Run(cmd.Context())
		return nil
	})
}

func printSink(w io.Writer) notify.Sink {
	return notify.SinkFunc(func(title, body string) {
		if body == "" {
			fmt.Fprintln(w, title)
			return
		}
		fmt.Fprintf(w, "%s - %s\n", title, body)
	})
}
