package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunokim/sasp/config"
	"github.com/brunokim/sasp/errors"
)

func writeFile(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sasp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, config.Auto, cfg.Mode)
	assert.Equal(t, 1, cfg.Models)
	assert.True(t, cfg.HideCheck)
	assert.True(t, cfg.OccursCheck)
	assert.Equal(t, 64, cfg.NegationLimit)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
mode: step
models: 0
justification: true
hide_check: false
iter_limit: 1000
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	want := config.Default()
	want.Mode = config.Step
	want.Models = 0
	want.Justification = true
	want.HideCheck = false
	want.IterLimit = 1000
	assert.Equal(t, want, cfg)

	opts := cfg.ResolveOptions()
	assert.Equal(t, 1000, opts.IterLimit)
	assert.Equal(t, 64, opts.NegationLimit)
	assert.True(t, opts.OccursCheck)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		desc string
		text string
	}{
		{"unknown mode", "mode: fast\n"},
		{"negative models", "models: -1\n"},
		{"zero negation limit", "negation_limit: 0\n"},
		{"unknown field", "colour: blue\n"},
		{"not yaml", "models: [\n"},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			_, err := config.Load(writeFile(t, test.text))
			assert.True(t, errors.Is(err, errors.InvalidArgument), "got %v", err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, errors.InvalidArgument), "got %v", err)
}
