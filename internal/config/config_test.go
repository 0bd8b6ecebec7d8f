package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every SUBCIRCLE_ env var that Load() reads.
var allConfigKeys = []string{
	"SUBCIRCLE_LISTEN_ADDR",
	"SUBCIRCLE_DB_PATH",
	"SUBCIRCLE_VAPID_PUBLIC_KEY",
	"SUBCIRCLE_SHUTDOWN_TIMEOUT",
}

// isolateConfigEnv saves and unsets all SUBCIRCLE_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("SUBCIRCLE_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("SUBCIRCLE_DB_PATH", "/tmp/test.db")
	t.Setenv("SUBCIRCLE_VAPID_PUBLIC_KEY", "BMockKey")
	t.Setenv("SUBCIRCLE_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "BMockKey", cfg.VAPIDPublicKey)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "subcircle.db", cfg.DBPath)
	assert.Equal(t, "", cfg.VAPIDPublicKey)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("SUBCIRCLE_SHUTDOWN_TIMEOUT", "soon")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUBCIRCLE_SHUTDOWN_TIMEOUT")
}
