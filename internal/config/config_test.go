package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeEnv(vals map[string]string) func(string) string {
	return func(key string) string { return vals[key] }
}

func TestValidateEnvDefaults(t *testing.T) {
	cfg, err := ValidateEnv(fakeEnv(nil))
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "0.0.0.0", cfg.BindAddr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	require.Equal(t, 16, cfg.BroadcastBuffer)
}

func TestValidateEnvOverrides(t *testing.T) {
	cfg, err := ValidateEnv(fakeEnv(map[string]string{
		"PORT":             "9090",
		"LOG_LEVEL":        "debug",
		"ALLOWED_ORIGINS":  "https://a.example, https://b.example",
		"BROADCAST_BUFFER": "32",
	}))
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.Equal(t, 32, cfg.BroadcastBuffer)
}

func TestValidateEnvCollectsAllErrors(t *testing.T) {
	_, err := ValidateEnv(fakeEnv(map[string]string{
		"PORT":              "not-a-port",
		"LOG_LEVEL":         "verbose",
		"LOG_FORMAT":        "xml",
		"BROADCAST_BUFFER":  "-1",
	}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "PORT")
	require.Contains(t, err.Error(), "LOG_LEVEL")
	require.Contains(t, err.Error(), "LOG_FORMAT")
	require.Contains(t, err.Error(), "BROADCAST_BUFFER")
}
