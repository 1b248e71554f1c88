package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktimer/internal/timer"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "task-timer.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, timer.DefaultSettings(), cfg.Timer)
	assert.True(t, cfg.Notifications)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task-timer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
timer:
  work_time: 60
  long_rest_interval: 2
calendar:
  urls:
    - https://dav.example.com/cal/
  username: me
  password: secret
notifications: false
refresh: " */15 * * * * "
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60.0, cfg.Timer.WorkTime)
	assert.Equal(t, uint8(2), cfg.Timer.LongRestInterval)
	assert.Equal(t, 600.0, cfg.Timer.ShortRestTime)
	assert.Equal(t, 1800.0, cfg.Timer.LongRestTime)
	assert.Equal(t, []string{"https://dav.example.com/cal/"}, cfg.Calendar.URLs)
	assert.Equal(t, "me", cfg.Calendar.Username)
	assert.Equal(t, "secret", cfg.Calendar.Password)
	assert.False(t, cfg.Notifications)
	assert.Equal(t, "*/15 * * * *", cfg.RefreshCron)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task-timer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timer: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestNormalizeFillsZeroes(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()
	assert.Equal(t, timer.DefaultSettings(), cfg.Timer)
	assert.NotNil(t, cfg.Calendar.URLs)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TASK_TIMER_CALENDARS": "https://a.example/ , ,https://b.example/",
		"TASK_TIMER_TOKEN":     "tok",
		"TASK_TIMER_LISTEN":    "127.0.0.1:9090",
		"TASK_TIMER_LOG_LEVEL": "debug",
	}
	cfg := DefaultConfig()
	cfg.Calendar.Username = "keep"
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, []string{"https://a.example/", "https://b.example/"}, cfg.Calendar.URLs)
	assert.Equal(t, "tok", cfg.Calendar.Token)
	assert.Equal(t, "keep", cfg.Calendar.Username)
	assert.Equal(t, "127.0.0.1:9090", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestWatchFiresOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task-timer.yaml")
	require.NoError(t, Save(path, DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	require.NoError(t, Watch(ctx, path, func() { changed <- struct{}{} }))

	cfg := DefaultConfig()
	cfg.Timer.WorkTime = 42
	require.NoError(t, Save(path, cfg))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}
