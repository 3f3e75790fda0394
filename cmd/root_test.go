package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verbose bool
		want    zapcore.Level
	}{
		{name: "quiet", verbose: false, want: zapcore.WarnLevel},
		{name: "verbose", verbose: true, want: zapcore.DebugLevel},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			logger, err := newLogger(tc.verbose)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.want))
			assert.False(t, logger.Core().Enabled(tc.want-1))
		})
	}
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	assert.Subset(t, names, []string{"parse", "tree", "graph", "watch", "why"})
}

func TestRootCommand_Version(t *testing.T) {
	root := NewRootCommand()
	root.SetArgs([]string{"--version"})

	var stdout bytes.Buffer
	root.SetOut(&stdout)

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "includeparser version dev")
	assert.Contains(t, stdout.String(), "Commit: unknown")
}
