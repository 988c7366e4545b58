package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"pira/internal/storage"
)

// Setting keys stored in the settings table.
const (
	KeyProbeTimeout    = "probe_timeout_ms"
	KeyProbeWorkers    = "probe_workers"
	KeyMonitorInterval = "monitor_interval_ms"
	KeyUseICMP         = "use_icmp"
	KeyUseTCP          = "use_tcp"
	KeyPingBinary      = "ping_binary"
	KeyWatchInterval   = "watch_interval_s"
	KeyLogLevel        = "log_level"
)

// SettingKeys lists every known setting key in display order.
func SettingKeys() []string {
	return []string{
		KeyProbeTimeout, KeyProbeWorkers, KeyMonitorInterval, KeyUseICMP,
		KeyUseTCP, KeyPingBinary, KeyWatchInterval, KeyLogLevel,
	}
}

// Settings is the typed view of the settings table.
type Settings struct {
	Timeout         time.Duration
	Workers         int64
	MonitorInterval time.Duration
	UseICMP         bool
	UseTCP          bool
	PingBinary      string
	WatchInterval   time.Duration
	LogLevel        string
}

// DefaultSettings mirrors the defaults inserted by the migrations.
func DefaultSettings() Settings {
	return Settings{
		Timeout:         5 * time.Second,
		Workers:         10,
		MonitorInterval: 5 * time.Second,
		UseICMP:         true,
		UseTCP:          true,
		PingBinary:      "ping",
		WatchInterval:   time.Minute,
		LogLevel:        "info",
	}
}

// LoadSettings reads all settings, keeping defaults for missing or
// malformed values.
func LoadSettings(ctx context.Context, store storage.Storage) (Settings, error) {
	s := DefaultSettings()
	values, err := store.GetAllSettings(ctx)
	if err != nil {
		return s, err
	}

	if v, ok := parseInt(values, KeyProbeTimeout); ok && v > 0 {
		s.Timeout = time.Duration(v) * time.Millisecond
	}
	if v, ok := parseInt(values, KeyProbeWorkers); ok && v > 0 {
		s.Workers = v
	}
	if v, ok := parseInt(values, KeyMonitorInterval); ok && v >= 0 {
		s.MonitorInterval = time.Duration(v) * time.Millisecond
	}
	if v, ok := parseBool(values, KeyUseICMP); ok {
		s.UseICMP = v
	}
	if v, ok := parseBool(values, KeyUseTCP); ok {
		s.UseTCP = v
	}
	if v := values[KeyPingBinary]; v != "" {
		s.PingBinary = v
	}
	if v, ok := parseInt(values, KeyWatchInterval); ok && v > 0 {
		s.WatchInterval = time.Duration(v) * time.Second
	}
	if v := values[KeyLogLevel]; v != "" {
		s.LogLevel = v
	}
	return s, nil
}

// ValidateSetting checks value against the type expected for key.
func ValidateSetting(key, value string) error {
	switch key {
	case KeyProbeTimeout, KeyProbeWorkers, KeyWatchInterval:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("%s must be a positive integer", key)
		}
	case KeyMonitorInterval:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("%s must be a non-negative integer", key)
		}
	case KeyUseICMP, KeyUseTCP:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
	case KeyLogLevel:
		switch value {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("%s must be one of debug, info, warn, error", key)
		}
	case KeyPingBinary:
		if value == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
	return nil
}

func parseInt(values map[string]string, key string) (int64, bool) {
	raw, ok := values[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	return v, err == nil
}

func parseBool(values map[string]string, key string) (bool, bool) {
	raw, ok := values[key]
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	return v, err == nil
}
