package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HEALTHGATE_"

// Load builds the configuration. path may be empty to use defaults only.
// envFiles are loaded with godotenv first; missing files are skipped and
// variables already set in the environment are kept.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result. No
// environment overrides are applied.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	expanded, err := ExpandEnvStrict(string(data))
	if err != nil {
		return err
	}
	return yaml.Unmarshal([]byte(expanded), cfg)
}

// LoadEnvFiles loads .env files into the process environment.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %q: %w", f, err)
		}
	}
	return nil
}

// applyEnvOverrides applies HEALTHGATE_SECTION_FIELD variables.
func applyEnvOverrides(cfg *Config) error {
	o := envOverrider{}

	o.bool("HEALTHCHECK_ENABLED", &cfg.HealthCheck.Enabled)
	o.port("HEALTHCHECK_PORT", &cfg.HealthCheck.Port)
	o.duration("HEALTHCHECK_CHECK_TIMEOUT", &cfg.HealthCheck.CheckTimeout)

	o.string("SERVICE_NAME", &cfg.Observe.ServiceName)
	o.string("SERVICE_VERSION", &cfg.Observe.Version)

	o.bool("LOG_ENABLED", &cfg.Observe.Logging.Enabled)
	o.string("LOG_LEVEL", &cfg.Observe.Logging.Level)
	o.string("LOG_FORMAT", &cfg.Observe.Logging.Format)
	if o.string("LOG_FILE", &cfg.Observe.Logging.File.Path) {
		cfg.Observe.Logging.File.Enabled = cfg.Observe.Logging.File.Path != ""
	}

	o.bool("TRACING_ENABLED", &cfg.Observe.Tracing.Enabled)
	o.string("TRACING_EXPORTER", &cfg.Observe.Tracing.Exporter)
	o.float("TRACING_SAMPLE_PCT", &cfg.Observe.Tracing.SamplePct)

	o.bool("METRICS_ENABLED", &cfg.Observe.Metrics.Enabled)
	o.string("METRICS_EXPORTER", &cfg.Observe.Metrics.Exporter)
	o.string("METRICS_ADDRESS", &cfg.MetricsServer.Address)

	return errors.Join(o.errs...)
}

type envOverrider struct {
	errs []error
}

func (o *envOverrider) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	return v, ok && v != ""
}

func (o *envOverrider) fail(key, val string, err error) {
	o.errs = append(o.errs, fmt.Errorf("%w: %s%s=%q: %w", ErrInvalidEnv, EnvPrefix, key, val, err))
}

func (o *envOverrider) string(key string, dst *string) bool {
	v, ok := o.lookup(key)
	if ok {
		*dst = v
	}
	return ok
}

func (o *envOverrider) bool(key string, dst *bool) {
	v, ok := o.lookup(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		o.fail(key, v, err)
		return
	}
	*dst = b
}

func (o *envOverrider) port(key string, dst *uint16) {
	v, ok := o.lookup(key)
	if !ok {
		return
	}
	p, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		o.fail(key, v, err)
		return
	}
	*dst = uint16(p)
}

func (o *envOverrider) duration(key string, dst *time.Duration) {
	v, ok := o.lookup(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		o.fail(key, v, err)
		return
	}
	*dst = d
}

func (o *envOverrider) float(key string, dst *float64) {
	v, ok := o.lookup(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		o.fail(key, v, err)
		return
	}
	*dst = f
}

func portString(p uint16) string {
	return strconv.Itoa(int(p))
}
