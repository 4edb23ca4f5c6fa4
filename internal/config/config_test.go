package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFlagsAndEnv(t *testing.T) {
	t.Setenv("RUN_ADDRESS", "")
	t.Setenv("DATABASE_URI", "postgres://env")
	t.Setenv("MIN_LEAD_DAYS", "")
	t.Setenv("REMIND_INTERVAL", "")

	cfg, err := Load([]string{"-a", ":9090", "-d", "postgres://flag", "-lead", "10", "-r", "1h"})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Handler.ServerAddr)
	// env wins over flags
	require.Equal(t, "postgres://env", cfg.Store.DBDsn)
	require.Equal(t, 10, cfg.Service.MinLeadDays)
	require.Equal(t, time.Hour, cfg.Service.RemindInterval)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("MIN_LEAD_DAYS", "week")
	_, err := Load(nil)
	require.Error(t, err)
}

func TestGetConfigDefaults(t *testing.T) {
	t.Setenv("RUN_ADDRESS", "")
	t.Setenv("MIN_LEAD_DAYS", "")
	cfg := GetConfig()
	require.Equal(t, "localhost:8080", cfg.Handler.ServerAddr)
	require.Equal(t, 7, cfg.Service.MinLeadDays)
	require.Equal(t, "UTC", cfg.Service.TimeZone)
}
