package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	path := writeFile(t, "name: ${SAMPLE_NAME}\n")

	s := sample{Count: 3}
	require.NoError(t, Load(path, &s))
	assert.Equal(t, sample{Name: "from-env", Count: 3}, s)
}

func TestLoad_Errors(t *testing.T) {
	var s sample
	err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &s)
	require.ErrorIs(t, err, os.ErrNotExist)

	err = Load(writeFile(t, "name: [unterminated\n"), &s)
	require.ErrorContains(t, err, "failed to parse")

	err = Load(writeFile(t, "count: -1\n"), &s)
	require.ErrorContains(t, err, "config validation failed")
}

func TestLoadOptional(t *testing.T) {
	s := sample{Name: "default"}
	require.NoError(t, LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &s))
	assert.Equal(t, "default", s.Name)

	bad := sample{Count: -2}
	require.Error(t, LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &bad))

	require.NoError(t, LoadOptional(writeFile(t, "count: 7\n"), &s))
	assert.Equal(t, sample{Name: "default", Count: 7}, s)
}
