package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pira/internal/storage/sqlite"
)

func TestLoadSettingsDefaults(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "pira.db"))
	require.NoError(t, err)
	defer store.Close()

	s, err := LoadSettings(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettingsOverrides(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "pira.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SetSetting(ctx, KeyProbeTimeout, "1500"))
	require.NoError(t, store.SetSetting(ctx, KeyMonitorInterval, "0"))
	require.NoError(t, store.SetSetting(ctx, KeyUseICMP, "false"))
	require.NoError(t, store.SetSetting(ctx, KeyWatchInterval, "30"))
	// Malformed values keep the default.
	require.NoError(t, store.SetSetting(ctx, KeyProbeWorkers, "many"))

	s, err := LoadSettings(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, s.Timeout)
	assert.Equal(t, time.Duration(0), s.MonitorInterval)
	assert.False(t, s.UseICMP)
	assert.True(t, s.UseTCP)
	assert.Equal(t, 30*time.Second, s.WatchInterval)
	assert.Equal(t, int64(10), s.Workers)
}

func TestValidateSetting(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{key: KeyProbeTimeout, value: "2000"},
		{key: KeyProbeTimeout, value: "0", wantErr: true},
		{key: KeyProbeWorkers, value: "-1", wantErr: true},
		{key: KeyMonitorInterval, value: "0"},
		{key: KeyMonitorInterval, value: "-5", wantErr: true},
		{key: KeyUseTCP, value: "false"},
		{key: KeyUseTCP, value: "maybe", wantErr: true},
		{key: KeyLogLevel, value: "debug"},
		{key: KeyLogLevel, value: "trace", wantErr: true},
		{key: KeyPingBinary, value: "/bin/ping"},
		{key: KeyPingBinary, value: "", wantErr: true},
		{key: "colour", value: "blue", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := ValidateSetting(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingKeysAreValidatable(t *testing.T) {
	defaults := map[string]string{
		KeyProbeTimeout:    "5000",
		KeyProbeWorkers:    "10",
		KeyMonitorInterval: "5000",
		KeyUseICMP:         "true",
		KeyUseTCP:          "true",
		KeyPingBinary:      "ping",
		KeyWatchInterval:   "60",
		KeyLogLevel:        "info",
	}
	for _, key := range SettingKeys() {
		assert.NoError(t, ValidateSetting(key, defaults[key]), key)
	}
}
