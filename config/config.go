// Package config loads per-app launch configuration.
//
// Configuration lives in slipway.yaml inside the app directory. The
// file is optional: a missing file yields the stock supplier-matcher
// setup, and any field left unset keeps its default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"slipway/internal/recipe"
)

// Filename is the config file name looked up in the app directory.
const Filename = "slipway.yaml"

// Duration accepts human-readable values like "90s" or "2m" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := str2duration.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Verify bounds the launch-time health verification.
type Verify struct {
	Grace    Duration `yaml:"grace"`
	Interval Duration `yaml:"interval"`
	Timeout  Duration `yaml:"timeout"`
}

// Probe is the in-container health probe schedule baked into the image.
type Probe struct {
	Interval    Duration `yaml:"interval"`
	Timeout     Duration `yaml:"timeout"`
	StartPeriod Duration `yaml:"start_period"`
	Retries     int      `yaml:"retries"`
}

// Config is the resolved launch configuration for one app directory.
type Config struct {
	App             string   `yaml:"app"`
	Image           string   `yaml:"image"`
	Instance        string   `yaml:"instance"`
	EnvFile         string   `yaml:"env_file"`
	Port            uint16   `yaml:"port"`
	ColdStartBudget Duration `yaml:"cold_start_budget"`
	Verify          Verify   `yaml:"verify"`
	Probe           Probe    `yaml:"probe"`
	OpenBrowser     bool     `yaml:"open_browser"`
	ClockCheck      bool     `yaml:"clock_check"`
	DataDir         string   `yaml:"data_dir"`
}

// Defaults returns the stock supplier-matcher configuration. Image and
// Instance are derived from App after loading so an overridden app name
// carries through.
func Defaults() Config {
	probe := recipe.Default().Probe
	return Config{
		App:             "supplier-matcher",
		EnvFile:         ".env",
		Port:            8501,
		ColdStartBudget: Duration(60 * time.Second),
		Verify: Verify{
			Grace:    Duration(5 * time.Second),
			Interval: Duration(2 * time.Second),
			Timeout:  Duration(60 * time.Second),
		},
		Probe: Probe{
			Interval:    Duration(probe.Interval),
			Timeout:     Duration(probe.Timeout),
			StartPeriod: Duration(probe.StartPeriod),
			Retries:     probe.Retries,
		},
		OpenBrowser: true,
		ClockCheck:  true,
	}
}

// Path returns the config file location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, Filename)
}

// Load reads slipway.yaml from dir. A missing file is not an error; the
// defaults apply. The returned config is validated.
func Load(dir string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(Path(dir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", Filename, err)
		}
	}

	cfg.normalize(dir)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize(dir string) {
	if c.Instance == "" {
		c.Instance = c.App
	}
	if c.Image == "" {
		c.Image = c.App + ":latest"
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(dir, ".slipway")
	}
	if !filepath.IsAbs(c.EnvFile) {
		c.EnvFile = filepath.Join(dir, c.EnvFile)
	}
}

func (c Config) Validate() error {
	if c.App == "" {
		return fmt.Errorf("config: app name is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("config: port must be nonzero")
	}
	if c.Verify.Interval.Std() <= 0 {
		return fmt.Errorf("config: verify.interval must be positive")
	}
	if c.Verify.Timeout.Std() <= 0 {
		return fmt.Errorf("config: verify.timeout must be positive")
	}
	if c.Verify.Grace.Std() < 0 {
		return fmt.Errorf("config: verify.grace must not be negative")
	}
	if c.Probe.Interval.Std() <= 0 || c.Probe.Timeout.Std() <= 0 {
		return fmt.Errorf("config: probe interval and timeout must be positive")
	}
	if c.Probe.Retries < 1 {
		return fmt.Errorf("config: probe.retries must be at least 1")
	}
	if budget := c.ColdStartBudget.Std(); budget > 0 && !c.HealthProbe().Covers(budget) {
		return fmt.Errorf("config: probe schedule does not cover the %s cold-start budget; raise probe.start_period or probe.retries", budget)
	}
	return nil
}

// HealthProbe returns the configured in-container probe schedule.
func (c Config) HealthProbe() recipe.HealthProbe {
	return recipe.HealthProbe{
		Interval:    c.Probe.Interval.Std(),
		Timeout:     c.Probe.Timeout.Std(),
		StartPeriod: c.Probe.StartPeriod.Std(),
		Retries:     c.Probe.Retries,
	}
}

// Recipe returns the build recipe with the configured probe schedule
// applied. The container-side port is part of the recipe; Port only
// changes where the instance is published on the host.
func (c Config) Recipe() recipe.Recipe {
	r := recipe.Default()
	r.Probe = c.HealthProbe()
	return r
}

// JournalPath returns the launch journal database location.
func (c Config) JournalPath() string {
	return filepath.Join(c.DataDir, "journal.db")
}
