package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticklite/internal/store"
)

// newConfig writes a config without example tasks into a temp dir.
func newConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("seed_examples = false\n"), 0o644))
	return path
}

func execute(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func listJSON(t *testing.T, configPath string, args ...string) []TaskView {
	t.Helper()
	out, err := execute(t, configPath, append([]string{"list", "--view", "all", "--format", "json"}, args...)...)
	require.NoError(t, err)
	var tasks []TaskView
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	return tasks
}

func TestAddAndList(t *testing.T) {
	cfg := newConfig(t)

	out, err := execute(t, cfg, "add", "Buy", "milk", "--tags", "dairy,errands", "--priority", "low")
	require.NoError(t, err)
	assert.Contains(t, out, "Added:")
	assert.Contains(t, out, "Buy milk")

	out, err = execute(t, cfg, "list", "--view", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "#dairy #errands")
	assert.Contains(t, out, "Low")
	assert.Contains(t, out, "1 task")

	out, err = execute(t, cfg, "list", "--view", "today")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks.")
}

func TestListSearch(t *testing.T) {
	cfg := newConfig(t)
	_, err := execute(t, cfg, "add", "Call plumber", "--notes", "kitchen sink")
	require.NoError(t, err)
	_, err = execute(t, cfg, "add", "Buy milk")
	require.NoError(t, err)

	tasks := listJSON(t, cfg, "--search", "SINK")
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call plumber", tasks[0].Title)
}

func TestListRejectsUnknownView(t *testing.T) {
	_, err := execute(t, newConfig(t), "list", "--view", "someday")
	assert.Error(t, err)
}

func TestFirstLaunchSeedsExamples(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")

	tasks := listJSON(t, cfg)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Pay rent", tasks[0].Title)
	assert.Equal(t, "Fix sink in Apt 204", tasks[1].Title)

	// The seed was saved, so a second run loads it instead of seeding again.
	again := listJSON(t, cfg)
	require.Len(t, again, 2)
	assert.Equal(t, tasks[0].ID, again[0].ID)
}

func TestDoneSpawnsNextOccurrence(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")
	rent := listJSON(t, cfg, "--search", "pay rent")
	require.Len(t, rent, 1)

	out, err := execute(t, cfg, "done", rent[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Completed:")
	assert.Contains(t, out, "Next monthly occurrence due")

	tasks := listJSON(t, cfg)
	require.Len(t, tasks, 3)
	assert.Equal(t, "Pay rent", tasks[0].Title)
	assert.False(t, tasks[0].Completed)
	require.NotNil(t, tasks[0].Due)
	assert.Equal(t, rent[0].Due.AddDate(0, 1, 0).Unix(), tasks[0].Due.Unix())

	out, err = execute(t, cfg, "done", rent[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Reopened:")
	assert.Len(t, listJSON(t, cfg), 3)
}

func TestEditAndSnooze(t *testing.T) {
	cfg := newConfig(t)
	_, err := execute(t, cfg, "add", "Dentist", "--due", "2026-11-02 09:30")
	require.NoError(t, err)
	id := listJSON(t, cfg)[0].ID

	out, err := execute(t, cfg, "edit", id[:6], "--priority", "high", "--clear-due", "--title", "Dentist appointment")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated:")

	tasks := listJSON(t, cfg)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Dentist appointment", tasks[0].Title)
	assert.Equal(t, "High", tasks[0].Priority)
	assert.Nil(t, tasks[0].Due)

	before := time.Now()
	_, err = execute(t, cfg, "snooze", id, "--days", "2")
	require.NoError(t, err)
	tasks = listJSON(t, cfg)
	require.NotNil(t, tasks[0].Due)
	assert.WithinDuration(t, before.Add(48*time.Hour), *tasks[0].Due, 5*time.Second)
}

func TestEditRequiresAField(t *testing.T) {
	cfg := newConfig(t)
	_, err := execute(t, cfg, "add", "Something")
	require.NoError(t, err)
	id := listJSON(t, cfg)[0].ID

	_, err = execute(t, cfg, "edit", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")

	_, err = execute(t, cfg, "edit", id, "--due", "2026-11-02", "--clear-due")
	require.Error(t, err)
}

func TestDueRejectsGarbage(t *testing.T) {
	_, err := execute(t, newConfig(t), "add", "Later", "--due", "next tuesday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid due date")
}

func TestUnknownIDFails(t *testing.T) {
	cfg := newConfig(t)
	_, err := execute(t, cfg, "done", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoveAndClear(t *testing.T) {
	cfg := newConfig(t)
	for _, title := range []string{"One", "Two", "Three"} {
		_, err := execute(t, cfg, "add", title)
		require.NoError(t, err)
	}
	tasks := listJSON(t, cfg)
	require.Len(t, tasks, 3)

	out, err := execute(t, cfg, "rm", tasks[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted:")
	assert.Len(t, listJSON(t, cfg), 2)

	_, err = execute(t, cfg, "clear")
	require.Error(t, err)
	assert.Len(t, listJSON(t, cfg), 2)

	out, err = execute(t, cfg, "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 tasks")
	assert.Empty(t, listJSON(t, cfg))
}

func TestRemindOnce(t *testing.T) {
	cfg := newConfig(t)
	due := time.Now().Add(30 * time.Second).Format(time.RFC3339)
	_, err := execute(t, cfg, "add", "Stand-up", "--due", due, "--notes", "room 4")
	require.NoError(t, err)
	_, err = execute(t, cfg, "add", "Far away", "--due", "2099-01-01")
	require.NoError(t, err)

	out, err := execute(t, cfg, "remind", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, "Task due soon: Stand-up - room 4")
	assert.NotContains(t, out, "Far away")
}

func TestRemindOnceRespectsDisabledReminders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "seed_examples = false\n\n[reminder]\nenabled = false\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	_, err := execute(t, path, "add", "Stand-up", "--due", time.Now().Format(time.RFC3339))
	require.NoError(t, err)

	out, err := execute(t, path, "remind", "--once")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, newConfig(t), "list", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
