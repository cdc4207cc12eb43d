package config

import (
	"net"
	"strings"
)

// Validate checks the whole configuration and reports every problem at
// once as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateHealthCheck(cfg)...)
	errs = append(errs, validateObserve(cfg)...)
	errs = append(errs, validateMetricsServer(cfg)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateHealthCheck(cfg *Config) []FieldError {
	var errs []FieldError
	hc := cfg.HealthCheck

	if hc.Enabled && hc.Port == 0 {
		errs = append(errs, FieldError{Field: "healthcheck.port", Message: "must be set when the endpoint is enabled"})
	}
	if hc.CheckTimeout < 0 {
		errs = append(errs, FieldError{Field: "healthcheck.check_timeout", Message: "must not be negative"})
	}
	return errs
}

func validateObserve(cfg *Config) []FieldError {
	var errs []FieldError

	if err := cfg.Observe.Validate(); err != nil {
		errs = append(errs, FieldError{Field: "observe", Message: err.Error(), Err: err})
	}

	f := cfg.Observe.Logging.File
	if f.Enabled && strings.TrimSpace(f.Path) == "" {
		errs = append(errs, FieldError{Field: "observe.logging.file.path", Message: "is required when file logging is enabled"})
	}
	if f.MaxSize < 0 || f.MaxBackups < 0 || f.MaxAge < 0 {
		errs = append(errs, FieldError{Field: "observe.logging.file", Message: "rotation limits must not be negative"})
	}
	return errs
}

func validateMetricsServer(cfg *Config) []FieldError {
	ms := cfg.MetricsServer
	if !ms.Enabled() {
		return nil
	}

	var errs []FieldError
	if _, _, err := net.SplitHostPort(ms.Address); err != nil {
		errs = append(errs, FieldError{Field: "metrics_server.address", Message: "must be host:port", Err: err})
	}
	if !strings.HasPrefix(ms.Path, "/") {
		errs = append(errs, FieldError{Field: "metrics_server.path", Message: "must start with /"})
	}

	m := cfg.Observe.Metrics
	if !m.Enabled || m.Exporter != "prometheus" {
		errs = append(errs, FieldError{Field: "metrics_server", Message: "requires observe.metrics enabled with the prometheus exporter"})
	}
	if cfg.HealthCheck.Enabled {
		if _, port, err := net.SplitHostPort(ms.Address); err == nil && port == portString(cfg.HealthCheck.Port) {
			errs = append(errs, FieldError{Field: "metrics_server.address", Message: "must not share the health check port"})
		}
	}
	return errs
}
