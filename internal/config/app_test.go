package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HTTP_PORT", "HTTP_RATE_LIMIT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASS", "DB_NAME", "DB_MAX_CONNS",
		"HTTP_CLIENT_TIMEOUT_SECONDS", "NBP_API_BASE_URL", "SCHEDULER_JOB_DURATION_SEC", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestInit_ReadsFileAndAppliesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, `
http_server:
  port: "9090"
db_server:
  host: localhost
  port: "5432"
  user: app
  pass: secret
  name: rates
nbp_api:
  window_days: 7
`))

	cfg, err := Init()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.HTTPServer.Port)
	require.Equal(t, "300-M", cfg.HTTPServer.RateLimit)
	require.Equal(t, int32(10), cfg.DbServer.MaxConns)
	require.Equal(t, 7, cfg.NbpAPI.WindowDays)
	require.Equal(t, "https://api.nbp.pl/api", cfg.NbpAPI.BaseURL)
	require.Equal(t, 10*time.Second, cfg.Scheduler.Interval())
	require.Equal(t, 10*time.Second, cfg.HTTPClient.Timeout())
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL())
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t,
		"user=app password=secret host=localhost port=5432 dbname=rates sslmode=disable",
		cfg.DbServer.GetConnectionStr())
}

func TestInit_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, `
db_server:
  host: localhost
scheduler:
  job_duration_sec: 30
`))
	t.Setenv("DB_HOST", "db")
	t.Setenv("SCHEDULER_JOB_DURATION_SEC", "60")

	cfg, err := Init()
	require.NoError(t, err)

	require.Equal(t, "db", cfg.DbServer.Host)
	require.Equal(t, time.Minute, cfg.Scheduler.Interval())
}

func TestInit_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Init()
	require.ErrorContains(t, err, "error reading config file")
}
