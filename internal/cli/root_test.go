package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ticklite", cmd.Use)
	assert.Contains(t, cmd.Long, "terminal UI")
	assert.NotNil(t, cmd.RunE)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"tui", "add", "list", "done", "snooze", "edit", "rm", "clear", "remind"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestAliases(t *testing.T) {
	cmd := NewRootCommand()
	for alias, name := range map[string]string{"ls": "list", "delete": "rm"} {
		subCmd, _, err := cmd.Find([]string{alias})
		require.NoError(t, err)
		assert.Equal(t, name, subCmd.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestEditCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	editCmd, _, err := cmd.Find([]string{"edit"})
	require.NoError(t, err)

	for _, name := range []string{"title", "notes", "due", "clear-due", "priority", "tags", "repeat"} {
		assert.NotNil(t, editCmd.Flags().Lookup(name), "edit should have --%s", name)
	}
}

func TestAddCommandHasNoClearDue(t *testing.T) {
	cmd := NewRootCommand()
	addCmd, _, err := cmd.Find([]string{"add"})
	require.NoError(t, err)
	assert.Nil(t, addCmd.Flags().Lookup("clear-due"))
	assert.Equal(t, "p", addCmd.Flags().Lookup("priority").Shorthand)
}

func TestSnoozeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	snoozeCmd, _, err := cmd.Find([]string{"snooze"})
	require.NoError(t, err)

	daysFlag := snoozeCmd.Flags().Lookup("days")
	require.NotNil(t, daysFlag)
	assert.Equal(t, "d", daysFlag.Shorthand)
	assert.Equal(t, "1", daysFlag.DefValue)
}
