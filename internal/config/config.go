// Package config loads csvcodec settings.
//
// Precedence: defaults, then the YAML file, then CSVCODEC_* environment
// variables. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete csvcodec configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" env:"LOG"`
	Reader  ReaderConfig  `yaml:"reader" env:"READER"`
	Inspect InspectConfig `yaml:"inspect" env:"INSPECT"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is json or console.
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths are zap sink URLs or file paths.
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// ReaderConfig maps onto streamcsv.Reader options.
type ReaderConfig struct {
	Strict      bool `yaml:"strict" env:"STRICT"`
	ReuseRecord bool `yaml:"reuse_record" env:"REUSE_RECORD"`
}

// InspectConfig controls the inspect command.
type InspectConfig struct {
	// Head is the number of data rows printed after the summary.
	Head int `yaml:"head" env:"HEAD"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			OutputPaths: []string{"stderr"},
		},
		Reader: ReaderConfig{
			Strict:      false,
			ReuseRecord: false,
		},
		Inspect: InspectConfig{
			Head: 0,
		},
	}
}

// Loader builds a Config from defaults, a file, and the environment.
type Loader struct {
	configPath string
	envPrefix  string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a loader with the CSVCODEC environment prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix: "CSVCODEC",
		lookupEnv: os.LookupEnv,
	}
}

// WithConfigPath sets the YAML file to read. A missing file leaves the defaults in place.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithLookupEnv replaces os.LookupEnv, mainly for tests.
func (l *Loader) WithLookupEnv(fn func(string) (string, bool)) *Loader {
	l.lookupEnv = fn
	return l
}

// Load assembles and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// setFieldsFromEnv walks v and overrides every field tagged with env from PREFIX_TAG variables.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		envTag := t.Field(i).Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag
		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		value, ok := l.lookupEnv(envKey)
		if !ok || value == "" {
			continue
		}
		if err := setFieldValue(field, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Log.Format))
	}
	if len(c.Log.OutputPaths) == 0 {
		errs = append(errs, errors.New("log output_paths must not be empty"))
	}
	if c.Inspect.Head < 0 {
		errs = append(errs, errors.New("inspect head must not be negative"))
	}

	return errors.Join(errs...)
}
