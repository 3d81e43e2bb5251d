package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workday-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "./data/workday.db", cfg.Database.Path)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "UTC", cfg.Engine.Timezone)
	assert.Empty(t, cfg.Attendance.OfficeIPWhitelist)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WORKDAY_SERVER_PORT", "9090")
	t.Setenv("WORKDAY_ENGINE_TIMEZONE", "Asia/Jakarta")
	t.Setenv("WORKDAY_ATTENDANCE_OFFICE_IP_WHITELIST", "10.0.0.5, 10.0.0.6")

	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"10.0.0.5", "10.0.0.6"}, cfg.Attendance.OfficeIPWhitelist)
	loc, err := cfg.Engine.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workday.yaml")
	yaml := `
server:
  port: 7000
db:
  path: /tmp/workday-test.db
roster:
  people:
    - name: Alice
      date_of_birth: "1990-05-14"
scheduler:
  interval: 15m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/tmp/workday-test.db", cfg.Database.Path)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Interval)
	require.Len(t, cfg.Roster.People, 1)
	assert.Equal(t, "Alice", cfg.Roster.People[0].Name)
	assert.Equal(t, "1990-05-14", cfg.Roster.People[0].DateOfBirth)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Server:    config.ServerConfig{Port: 8080},
			Database:  config.DatabaseConfig{Path: "x.db"},
			Engine:    config.EngineConfig{Timezone: "UTC"},
			Scheduler: config.SchedulerConfig{Enabled: true, Interval: time.Hour},
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad port", func(c *config.Config) { c.Server.Port = 0 }},
		{"empty db path", func(c *config.Config) { c.Database.Path = "" }},
		{"unknown zone", func(c *config.Config) { c.Engine.Timezone = "Mars/Olympus" }},
		{"zero interval", func(c *config.Config) { c.Scheduler.Interval = 0 }},
	}

	base := valid()
	require.NoError(t, base.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
