package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/gifclip/internal/config"
)

func quietConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	return cfg
}

func TestNew_NoFile(t *testing.T) {
	cfg := quietConfig()
	var out, errOut bytes.Buffer
	l, err := New(&cfg, &out, &errOut)
	require.NoError(t, err)
	defer l.Close()

	l.Info("loading %s", "clip.mp4")
	l.Error("boom")

	assert.Contains(t, out.String(), "[INFO] loading clip.mp4")
	assert.NotContains(t, out.String(), "boom")
	assert.Contains(t, errOut.String(), "[ERROR] boom")
}

func TestNew_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := quietConfig()
	cfg.LogFile = filepath.Join(dir, "logs", "gifclip.log")

	var out, errOut bytes.Buffer
	l, err := New(&cfg, &out, &errOut)
	require.NoError(t, err)
	l.Success("to file")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "second Close is a no-op")

	b, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[SUCCESS] to file")
}

func TestDebug_OnlyWhenVerbose(t *testing.T) {
	cfg := quietConfig()
	var out bytes.Buffer
	l, err := New(&cfg, &out, &out)
	require.NoError(t, err)

	l.Debug(false, "hidden")
	l.Debug(true, "shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[DEBUG] shown")
	assert.False(t, l.Verbose())
}

func TestColoredOutputKeepsFilePlain(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorAlways
	cfg.LogFile = filepath.Join(t.TempDir(), "color.log")
	t.Cleanup(func() {
		c := quietConfig()
		_, _ = New(&c, &bytes.Buffer{}, &bytes.Buffer{})
	})

	var out bytes.Buffer
	l, err := New(&cfg, &out, &out)
	require.NoError(t, err)
	l.Warn("careful")
	require.NoError(t, l.Close())

	assert.Contains(t, out.String(), "\033[")
	b, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "\033[")
	assert.Contains(t, string(b), "[WARN] careful")
}
