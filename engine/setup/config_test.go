package setup

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
title: demo
headless: true
tick_rate: 120
profiling: true
dot_file: out/graph.dot
data_directories:
  - assets
  - shaders
`))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Title:           "demo",
		Headless:        true,
		TickRate:        120,
		Profiling:       true,
		DotFile:         "out/graph.dot",
		DataDirectories: []string{"assets", "shaders"},
	}, cfg)
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestParseConfig_Errors(t *testing.T) {
	_, err := ParseConfig([]byte("title: [unclosed"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("width: 1024"))
	assert.ErrorContains(t, err, "width")

	_, err = ParseConfig([]byte("tick_rate: -1"))
	assert.ErrorContains(t, err, "tick_rate")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: from-file\nheadless: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Title)
	assert.True(t, cfg.Headless)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Options(t *testing.T) {
	assets := t.TempDir()
	dotFile := filepath.Join(t.TempDir(), "graph.dot")
	cfg := Config{
		Title:           "demo",
		Headless:        true,
		TickRate:        30,
		DotFile:         dotFile,
		DataDirectories: []string{assets},
	}

	opts := append(cfg.Options(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s := NewSimpleSetup(cfg.Title, opts...)

	assert.Equal(t, "demo", s.Frame().Title())
	assert.Equal(t, []string{assets}, s.DirectoryManager().Paths())
	headlessBackend(t, s)

	s.EnableDebugging()
	_, err := os.Stat(dotFile)
	assert.NoError(t, err)
}
