package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "Adventurer", cfg.Player.Name)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "3:04PM", cfg.TimeLayout())
	assert.NotNil(t, cfg.Settings)
}

func TestLoadFile_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[player]
name = "Bob"

[chat]
timestamps = false

[settings]
"Messaging.Enable" = false

[logging]
level = "debug"
file = "~/logs/chattabs.log"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	t.Setenv("CHATTABS_ENABLE", "true")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, "Bob", cfg.Player.Name)
	assert.Equal(t, "", cfg.TimeLayout())
	assert.True(t, cfg.Settings["Messaging.Enable"], "env wins over file")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(home, "logs/chattabs.log"), cfg.Logging.File)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[player\n"), 0644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestSaveFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := defaultConfig()
	cfg.Player.Name = "Jane Doe"
	cfg.Settings["Messaging.Enable"] = true

	require.NoError(t, cfg.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", loaded.Player.Name)
	assert.True(t, loaded.Settings["Messaging.Enable"])
}

func TestReadFile_IgnoresEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nfile = \"~/chat.log\"\n"), 0644))
	t.Setenv("CHATTABS_PLAYER", "Jane Doe")
	t.Setenv("CHATTABS_ENABLE", "true")

	stored, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Adventurer", stored.Player.Name)
	assert.NotContains(t, stored.Settings, "Messaging.Enable")
	assert.Equal(t, "~/chat.log", stored.Logging.File)

	require.NoError(t, stored.SaveFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Jane Doe")

	effective, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", effective.Player.Name)
	assert.True(t, effective.Settings["Messaging.Enable"])
}

func TestConfigPath_Env(t *testing.T) {
	t.Setenv("CHATTABS_CONFIG", "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", ConfigPath())

	t.Setenv("CHATTABS_CONFIG", "")
	t.Setenv("CHATTABS_STATE_DIR", "/tmp/state")
	assert.Equal(t, filepath.Join("/tmp/state", "config.toml"), ConfigPath())
	assert.Equal(t, filepath.Join("/tmp/state", "logs"), LogsDir())
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[player]\nname = \"Bob\"\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		seen []string
	)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			if err != nil {
				return
			}
			mu.Lock()
			seen = append(seen, cfg.Player.Name)
			mu.Unlock()
		})
	}()

	// The watcher starts asynchronously, so keep writing until it notices.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("[player]\nname = \"Jane\"\n"), 0644)
		mu.Lock()
		defer mu.Unlock()
		for _, name := range seen {
			if name == "Jane" {
				return true
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
