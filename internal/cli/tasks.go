package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ticklite/internal/store"
	"ticklite/internal/task"
)

// TaskFlags holds the task fields shared by add and edit.
type TaskFlags struct {
	Title    string
	Notes    string
	Due      string
	ClearDue bool
	Priority string
	Tags     string
	Repeat   string
}

func (f *TaskFlags) register(cmd *cobra.Command, withTitle bool) {
	if withTitle {
		cmd.Flags().StringVar(&f.Title, "title", "", "new title")
		cmd.Flags().BoolVar(&f.ClearDue, "clear-due", false, "remove the due date")
	}
	cmd.Flags().StringVar(&f.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&f.Due, "due", "", "due date (YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC3339)")
	cmd.Flags().StringVarP(&f.Priority, "priority", "p", "", "priority (low|medium|high)")
	cmd.Flags().StringVarP(&f.Tags, "tags", "t", "", "comma separated tags")
	cmd.Flags().StringVar(&f.Repeat, "repeat", "", "repeat rule (none|daily|weekly|monthly|yearly)")
}

func (f *TaskFlags) draft(title string) (task.Draft, error) {
	d := task.Draft{Title: title, Notes: f.Notes, Tags: task.ParseTags(f.Tags)}
	var err error
	if d.Due, err = task.ParseDue(f.Due, time.Local); err != nil {
		return d, err
	}
	if d.Priority, err = task.ParsePriority(f.Priority); err != nil {
		return d, err
	}
	if d.Repeat, err = task.ParseRepeat(f.Repeat); err != nil {
		return d, err
	}
	return d, nil
}

// patch builds a patch from the flags the user actually set.
func (f *TaskFlags) patch(cmd *cobra.Command) (task.Patch, error) {
	var p task.Patch
	changed := cmd.Flags().Changed
	if changed("title") {
		if strings.TrimSpace(f.Title) == "" {
			return p, errors.New("title cannot be empty")
		}
		p.Title = &f.Title
	}
	if changed("notes") {
		p.Notes = &f.Notes
	}
	if changed("due") && changed("clear-due") {
		return p, errors.New("--due and --clear-due are mutually exclusive")
	}
	if changed("due") {
		due, err := task.ParseDue(f.Due, time.Local)
		if err != nil {
			return p, err
		}
		if due == nil {
			p.ClearDue = true
		} else {
			p.Due = due
		}
	}
	if f.ClearDue {
		p.ClearDue = true
	}
	if changed("priority") {
		pr, err := task.ParsePriority(f.Priority)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if changed("tags") {
		tags := task.ParseTags(f.Tags)
		p.Tags = &tags
	}
	if changed("repeat") {
		r, err := task.ParseRepeat(f.Repeat)
		if err != nil {
			return p, err
		}
		p.Repeat = &r
	}
	return p, nil
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &TaskFlags{}
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task",
		Long: `Add a task. The remaining arguments are joined into the title.

Example:
  ticklite add Pay rent --due 2026-11-01 --priority high --repeat monthly --tags rent,home`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := flags.draft(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				t, ok := a.store.Add(d)
				if !ok {
					return errors.New("title cannot be empty")
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Task("Added", t)
			})
		},
	}
	flags.register(cmd, false)
	return cmd
}

// NewDoneCommand creates the done command.
func NewDoneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "done <id>",
		Short:         "Toggle a task between done and pending",
		Long:          "Toggle completion. Completing a repeating task with a due date adds its next occurrence.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				id, err := resolveID(a.store, args[0])
				if err != nil {
					return err
				}
				before, _ := a.store.Get(id)
				if !a.store.ToggleComplete(id) {
					return fmt.Errorf("%w: %s", store.ErrNotFound, id)
				}
				after, _ := a.store.Get(id)
				out := newFormatter(rootOpts, cmd.OutOrStdout())
				if !after.Completed {
					return out.Task("Reopened", after)
				}
				if err := out.Task("Completed", after); err != nil {
					return err
				}
				if next := task.NextDue(before.Due, before.Repeat); next != nil {
					return out.Message("Next %s occurrence due %s", before.Repeat, task.FormatDue(next))
				}
				return nil
			})
		},
	}
}

// NewSnoozeCommand creates the snooze command.
func NewSnoozeCommand(rootOpts *RootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:           "snooze <id>",
		Short:         "Push a task's due date forward",
		Long:          "Push the due date forward by whole days. A task without a due date becomes due that many days from now.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				id, err := resolveID(a.store, args[0])
				if err != nil {
					return err
				}
				n := a.cfg.SnoozeDays
				if cmd.Flags().Changed("days") {
					n = days
				}
				if !a.store.Snooze(id, n) {
					return fmt.Errorf("%w: %s", store.ErrNotFound, id)
				}
				t, _ := a.store.Get(id)
				return newFormatter(rootOpts, cmd.OutOrStdout()).Task(fmt.Sprintf("Snoozed %dd", n), t)
			})
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 1, "days to snooze (default from config)")
	return cmd
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &TaskFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Long: `Change fields of a task. Only the flags given are applied.

Example:
  ticklite edit 3f2a --priority low --clear-due`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.patch(cmd)
			if err != nil {
				return err
			}
			if p.Empty() {
				return errors.New("nothing to change: pass at least one field flag")
			}
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				id, err := resolveID(a.store, args[0])
				if err != nil {
					return err
				}
				if !a.store.Edit(id, p) {
					return fmt.Errorf("%w: %s", store.ErrNotFound, id)
				}
				t, _ := a.store.Get(id)
				return newFormatter(rootOpts, cmd.OutOrStdout()).Task("Updated", t)
			})
		},
	}
	flags.register(cmd, true)
	return cmd
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <id>",
		Aliases:       []string{"delete"},
		Short:         "Delete a task",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				id, err := resolveID(a.store, args[0])
				if err != nil {
					return err
				}
				t, _ := a.store.Get(id)
				if !a.store.Delete(id) {
					return fmt.Errorf("%w: %s", store.ErrNotFound, id)
				}
				return newFormatter(rootOpts, cmd.OutOrStdout()).Task("Deleted", t)
			})
		},
	}
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Delete every task",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete every task without --yes")
			}
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				n := a.store.Stats().Total
				a.store.ClearAll()
				return newFormatter(rootOpts, cmd.OutOrStdout()).Message("Deleted %s", pluralTasks(n))
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting every task")
	return cmd
}
