package config

import (
	"strings"
	"time"

	"github.com/whzard/punybuf/internal/bytesize"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields.
//
// Default strategy: zero values (0, "", false) are replaced with
// defaults; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyLimitsDefaults(&cfg.Limits)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// DefaultConfig returns a Config populated entirely from defaults, used
// when no configuration file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// maxUIntDefault is spec §6's ceiling on a decodable UInt: 2^60 - 1.
const maxUIntDefault = (1 << 60) - 1

func applyLimitsDefaults(cfg *LimitsConfig) {
	if cfg.MaxUInt == 0 {
		cfg.MaxUInt = maxUIntDefault
	}
	if cfg.MaxBytesLen == 0 {
		cfg.MaxBytesLen = 64 * bytesize.MiB
	}
	if cfg.MaxArrayItems == 0 {
		cfg.MaxArrayItems = 1 << 20
	}
	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = 4 * bytesize.MiB
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}
