package command

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewRootCmd(t *testing.T) {
	t.Run("registers every command", func(t *testing.T) {
		cmd := newRootCmd()
		var names []string
		for _, c := range cmd.Commands() {
			names = append(names, c.Name())
		}
		assert.ElementsMatch(t, []string{"track", "next", "branches", "history"}, names)
	})

	t.Run("loads the configuration named by the flag", func(t *testing.T) {
		oldLoadConfig := loadConfig
		defer func() { loadConfig = oldLoadConfig }()
		defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

		var gotPath string
		loadConfig = func(path string) error {
			gotPath = path
			return nil
		}

		cmd := newRootCmd()
		cmd.SetErr(&bytes.Buffer{})
		assert.NoError(t, cmd.ParseFlags([]string{"--config", "/etc/prtrack.yaml", "-v"}))
		cmd.PersistentPreRun(cmd, nil)

		assert.Equal(t, "/etc/prtrack.yaml", gotPath)
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})
}
