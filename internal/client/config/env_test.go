package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv_OverlaysSetVariables(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	t.Setenv("WORKLOGGER_SERVER_ADDR", "env.example:7000")
	t.Setenv("WORKLOGGER_REQUEST_TIMEOUT", "4s")
	t.Setenv("WORKLOGGER_RECENT_LIMIT", "25")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	assert.Equal(t, "env.example:7000", cfg.ServerEndpointAddr)
	assert.Equal(t, 4*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 25, cfg.RecentLimit)
	assert.Equal(t, "worklogger.db", cfg.DatabasePath)
}

func Test_parseEnv_DotEnvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "client.env")
	require.NoError(t, os.WriteFile(path, []byte("WORKLOGGER_DB_PATH=/var/lib/wl.db\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("WORKLOGGER_DB_PATH") })

	os.Args = []string{"testbin", "-e", path}

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	assert.Equal(t, "/var/lib/wl.db", cfg.DatabasePath)
}

func Test_parseEnv_BadValuePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	t.Setenv("WORKLOGGER_RECENT_LIMIT", "many")

	var cfg Config
	require.Panics(t, func() { parseEnv(&cfg) })
}

func Test_parseEnv_MissingDotEnvFilePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env", filepath.Join(t.TempDir(), "nope.env")}

	var cfg Config
	require.Panics(t, func() { parseEnv(&cfg) })
}
