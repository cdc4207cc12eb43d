package health

import "time"

// DefaultPort is the port the endpoint binds when none is configured.
const DefaultPort = 8081

// Config configures the health endpoint. It is read once at startup.
type Config struct {
	// Enabled turns the endpoint on. When false nothing is bound.
	Enabled bool `yaml:"enabled"`

	// Port is the TCP port to bind. Zero picks an ephemeral port.
	Port uint16 `yaml:"port"`

	// CheckTimeout bounds each subsystem check. Zero means unbounded.
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// DefaultConfig returns an enabled config on DefaultPort.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Port:    DefaultPort,
	}
}
