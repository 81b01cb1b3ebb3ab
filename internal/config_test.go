package internal

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/cardlinks/internal/testutil"
	pkgconfig "github.com/starford/cardlinks/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Export.Enabled())
	assert.Empty(t, cfg.Scenario.Paths)
}

func TestApplicationConfig_Output(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to text", output: "", want: "text"},
		{name: "json", output: "json", want: "json"},
		{name: "yaml", output: "yaml", want: "yaml"},
		{name: "unknown", output: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ApplicationConfig{Output: tt.output}
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Output)
		})
	}
}

func TestScenarioConfig_WatchNeedsPaths(t *testing.T) {
	cfg := ScenarioConfig{Watch: true}
	require.Error(t, cfg.Validate())

	cfg.Paths = []string{"a.yaml"}
	require.NoError(t, cfg.Validate())

	cfg.Paths = []string{"a.yaml", ""}
	require.Error(t, cfg.Validate())
}

func TestConfigFromYAML(t *testing.T) {
	t.Setenv("CARDLINKS_EXPORT", "/tmp/out.db")
	path := testutil.TempFile(t, "config.yaml", `
app:
  log_level: debug
  output: json
scenario:
  paths: [a.yaml, b.yaml]
export:
  sqlite_path: ${CARDLINKS_EXPORT}
`)

	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.Load(path, cfg))
	assert.Equal(t, slog.LevelDebug, cfg.App.LogLevel)
	assert.Equal(t, "json", cfg.App.Output)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.Scenario.Paths)
	assert.Equal(t, "/tmp/out.db", cfg.Export.SQLitePath)
	assert.True(t, cfg.Export.Enabled())
}
