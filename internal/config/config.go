// Package config loads shipform settings from defaults, an optional YAML
// file and SHIPFORM_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/pthm/shipform/internal/address"
	"github.com/pthm/shipform/internal/region"
	"github.com/pthm/shipform/internal/session"
)

// Default reference data locations.
const (
	DefaultPrimaryURL   = "https://raw.githubusercontent.com/vietmap-company/vietnam_administrative_address/main/admin_new/province.json"
	DefaultSecondaryURL = "https://raw.githubusercontent.com/vietmap-company/vietnam_administrative_address/main/admin_new/ward.json"
	DefaultAddr         = ":8080"
)

// Config holds everything the service needs. Environment fields carry no
// envDefault so that an unset variable leaves the file or default value
// in place.
type Config struct {
	Addr         string        `yaml:"addr" env:"ADDR"`
	PrimaryURL   string        `yaml:"primary_url" env:"PRIMARY_URL"`
	SecondaryURL string        `yaml:"secondary_url" env:"SECONDARY_URL"`
	SubmitDelay  time.Duration `yaml:"submit_delay" env:"SUBMIT_DELAY"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	PropsKey     string        `yaml:"props_key" env:"PROPS_KEY"`
	MaxSessions  int           `yaml:"max_sessions" env:"MAX_SESSIONS"`
	Verbose      bool          `yaml:"verbose" env:"VERBOSE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:         DefaultAddr,
		PrimaryURL:   DefaultPrimaryURL,
		SecondaryURL: DefaultSecondaryURL,
		SubmitDelay:  address.DefaultSubmitDelay,
		FetchTimeout: region.DefaultTimeout,
		MaxSessions:  session.DefaultMaxEntries,
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv overlays SHIPFORM_* variables onto target.
func ParseEnv(target *Config) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: "SHIPFORM_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if strings.TrimSpace(c.PrimaryURL) == "" {
		errs = append(errs, errors.New("primary_url must not be empty"))
	}
	if strings.TrimSpace(c.SecondaryURL) == "" {
		errs = append(errs, errors.New("secondary_url must not be empty"))
	}
	if c.SubmitDelay < 0 {
		errs = append(errs, fmt.Errorf("submit_delay must not be negative, got %s", c.SubmitDelay))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout))
	}
	if c.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("max_sessions must be positive, got %d", c.MaxSessions))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
