package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd(cfg *ServerCmdConfig) *cobra.Command {
	cmd := &cobra.Command{Use: "test", Run: func(cmd *cobra.Command, args []string) {}}
	AddServerFlags(cmd.Flags(), cfg)
	return cmd
}

func TestLoadDefaults(t *testing.T) {
	var cfg ServerCmdConfig
	cmd := newTestCmd(&cfg)
	loader := NewLoader()

	require.NoError(t, loader.Initialize(cmd))
	require.NoError(t, loader.Load(&cfg))

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Uploads.MaxFiles)
	assert.Equal(t, int64(50*1024*1024), cfg.Uploads.MaxFileSize)
	assert.Equal(t, 7*24*time.Hour, cfg.Uploads.Retention)
	assert.True(t, cfg.CronJobs.Enable)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TEAMLINE_UPLOADS_MAX_FILES", "3")
	t.Setenv("TEAMLINE_UPLOADS_RETENTION", "30d")

	var cfg ServerCmdConfig
	cmd := newTestCmd(&cfg)
	loader := NewLoader()

	require.NoError(t, loader.Initialize(cmd))
	require.NoError(t, loader.Load(&cfg))

	assert.Equal(t, 3, cfg.Uploads.MaxFiles)
	assert.Equal(t, 30*24*time.Hour, cfg.Uploads.Retention)
}

func TestValidate(t *testing.T) {
	var cfg ServerCmdConfig
	cmd := newTestCmd(&cfg)
	loader := NewLoader()
	require.NoError(t, loader.Initialize(cmd))
	require.NoError(t, loader.Load(&cfg))

	assert.Error(t, Validate(&cfg), "missing jwt secret and data source must fail")

	cfg.JWT.Secret = "secret"
	cfg.DB.DataSource = "postgres://localhost/teamline"
	cfg.Uploads.Storage.Bucket = "attachments"
	assert.NoError(t, Validate(&cfg))
}
