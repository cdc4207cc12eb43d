package config

import (
	"github.com/jonwraymond/healthgate/health"
	"github.com/jonwraymond/healthgate/observe"
)

// Config is the root configuration.
type Config struct {
	HealthCheck   health.Config  `yaml:"healthcheck"`
	Observe       observe.Config `yaml:"observe"`
	MetricsServer MetricsServer  `yaml:"metrics_server"`
}

// MetricsServer configures the prometheus scrape endpoint. An empty address
// disables it.
type MetricsServer struct {
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// Enabled reports whether the scrape endpoint should be served.
func (m MetricsServer) Enabled() bool {
	return m.Address != ""
}
