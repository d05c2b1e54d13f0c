package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeyplanner/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "planner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultOptions(), cfg.Options)
	assert.Equal(t, 2.0, cfg.Options.MinTransferTime)
	assert.Equal(t, 3.6, cfg.Options.WalkingSpeed)
	assert.True(t, cfg.Options.Verbose)
	assert.Equal(t, config.SourceTypeCSV, cfg.Source.Type)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
options:
  timetable_frequency: 1
  walking_speed: 4.5
  heuristic: true
source:
  type: postgres
  dsn: postgres://localhost/tempus
`)
	t.Setenv("TRAVIGO_ENABLE_TRACE", "true")
	t.Setenv("TRAVIGO_MULTI_DESTINATIONS", "4,5")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Options.TimetableFrequency)
	assert.Equal(t, 4.5, cfg.Options.WalkingSpeed)
	assert.True(t, cfg.Options.Heuristic)
	assert.True(t, cfg.Options.EnableTrace)
	assert.Equal(t, "4,5", cfg.Options.MultiDestinations)
	assert.Equal(t, 12.0, cfg.Options.CyclingSpeed, "unset keys keep their default")
	assert.Equal(t, "postgres://localhost/tempus", cfg.Source.DSN)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown model", "options:\n  timetable_frequency: 3\n"},
		{"zero walking speed", "options:\n  walking_speed: 0\n"},
		{"postgres without dsn", "source:\n  type: postgres\n"},
		{"unknown key", "options:\n  walk_speed: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestMerge(t *testing.T) {
	trace := true
	verbose := false
	transfer := 4.0
	destinations := "7"

	merged, err := config.DefaultOptions().Merge(&config.Overrides{
		EnableTrace:       &trace,
		Verbose:           &verbose,
		MinTransferTime:   &transfer,
		MultiDestinations: &destinations,
	})
	require.NoError(t, err)

	assert.True(t, merged.EnableTrace)
	assert.False(t, merged.Verbose, "explicit false overrides a true default")
	assert.Equal(t, 4.0, merged.MinTransferTime)
	assert.Equal(t, "7", merged.MultiDestinations)
	assert.Equal(t, 3.6, merged.WalkingSpeed)

	unchanged, err := config.DefaultOptions().Merge(nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultOptions(), unchanged)

	badModel := 2
	_, err = config.DefaultOptions().Merge(&config.Overrides{TimetableFrequency: &badModel})
	require.Error(t, err)
}
