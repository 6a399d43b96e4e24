package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, CONFIG_FILE)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigFromParentDir(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
[symbols]
max_length = 64
[output]
format = "plain"
[cache]
dir = "cache"
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, found, err := loadConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)
	assert.Equal(t, 64, cfg.Symbols.MaxLength)
	assert.Equal(t, FORMAT_PLAIN, cfg.Output.Format)
	assert.True(t, cfg.Cache.Enabled, "unset keys keep their defaults")
	assert.Equal(t, filepath.Join(root, "cache"), cfg.Cache.Dir)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{"bad toml", "[symbols\n", "failed to parse TOML"},
		{"unknown key", "[symbols]\nmax_len = 3\n", "unknown key symbols.max_len"},
		{"negative length", "[symbols]\nmax_length = -1\n", "must not be negative"},
		{"bad format", "[output]\nformat = \"json\"\n", `unknown output format "json"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.body)
			_, _, err := loadConfig(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, 0, cfg.Symbols.MaxLength)
	assert.Equal(t, FORMAT_TABLE, cfg.Output.Format)
	assert.True(t, cfg.Cache.Enabled)
	assert.NoError(t, cfg.validate())
}
