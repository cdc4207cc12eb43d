package config

import (
	"github.com/jonwraymond/healthgate/health"
	"github.com/jonwraymond/healthgate/observe"
)

// Default values for configuration fields.
const (
	DefaultServiceName    = "healthgate"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultMetricsPath    = "/metrics"
	DefaultLogFileMaxSize = 100 // megabytes
	DefaultLogFileBackups = 3
	DefaultLogFileMaxAge  = 28 // days
)

// Default returns the configuration used when no file is given: the health
// endpoint enabled on health.DefaultPort and console logging at info.
func Default() *Config {
	return &Config{
		HealthCheck: health.DefaultConfig(),
		Observe: observe.Config{
			ServiceName: DefaultServiceName,
			Logging: observe.LoggingConfig{
				Enabled: true,
				Level:   DefaultLogLevel,
				Format:  DefaultLogFormat,
			},
			Tracing: observe.TracingConfig{
				SamplePct: 1.0,
			},
		},
	}
}

// ApplyDefaults fills fields that depend on other settings and were left
// empty by the file or environment.
func ApplyDefaults(cfg *Config) {
	obs := &cfg.Observe
	if obs.ServiceName == "" {
		obs.ServiceName = DefaultServiceName
	}
	if obs.Logging.Level == "" {
		obs.Logging.Level = DefaultLogLevel
	}
	if obs.Logging.Format == "" {
		obs.Logging.Format = DefaultLogFormat
	}

	if f := &obs.Logging.File; f.Enabled {
		if f.MaxSize == 0 {
			f.MaxSize = DefaultLogFileMaxSize
		}
		if f.MaxBackups == 0 {
			f.MaxBackups = DefaultLogFileBackups
		}
		if f.MaxAge == 0 {
			f.MaxAge = DefaultLogFileMaxAge
		}
	}

	if obs.Tracing.Enabled && obs.Tracing.Exporter == "" {
		obs.Tracing.Exporter = "stdout"
	}
	if obs.Metrics.Enabled && obs.Metrics.Exporter == "" {
		obs.Metrics.Exporter = "prometheus"
	}

	if cfg.MetricsServer.Enabled() && cfg.MetricsServer.Path == "" {
		cfg.MetricsServer.Path = DefaultMetricsPath
	}
}
