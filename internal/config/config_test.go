package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "127.0.0.1"

storage:
  snapshot_path: "/var/lib/prospecting/state.db"

scheduler:
  enabled: true
  timezone: "Europe/Rome"

deliverables:
  base_url: "https://audit.eurkai.fr"
  sender_signature: "L'équipe EURKAI"

runner:
  stale_after_minutes: 120
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, "/var/lib/prospecting/state.db", cfg.Storage.SnapshotPath)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "https://audit.eurkai.fr", cfg.Deliverable.BaseURL)
	assert.Equal(t, 2*time.Hour, cfg.Runner.StaleAfter())
	// Defaults fill the gaps.
	assert.Equal(t, "changeme-admin-token", cfg.Admin.Token)
	assert.Equal(t, "./send_queue", cfg.Deliverable.OutputDir)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/prospecting.db", cfg.Storage.SnapshotPath)
	assert.Equal(t, "Europe/Rome", cfg.Scheduler.Timezone)
	assert.Equal(t, "L'équipe EURKAI", cfg.Deliverable.SenderSignature)
	assert.Equal(t, time.Hour, cfg.Runner.StaleAfter())
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [broken"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_URL", "postgres://test@localhost/prospecting")
	t.Setenv("ADMIN_TOKEN", "env-token")
	t.Setenv("STALE_AFTER_MINUTES", "30")
	t.Setenv("SEND_QUEUE_S3_BUCKET", "eurkai-send-queue")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "postgres://test@localhost/prospecting", cfg.Storage.DatabaseURL)
	assert.Equal(t, "env-token", cfg.Admin.Token)
	assert.Equal(t, 30*time.Minute, cfg.Runner.StaleAfter())
	assert.Equal(t, "eurkai-send-queue", cfg.Deliverable.S3Bucket)
}

func TestLoadFromEnv_BadNumbersKeepDefaults(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("STALE_AFTER_MINUTES", "-5")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Runner.StaleAfter())
}
