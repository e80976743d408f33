package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/diwise/aquavise-dashboard/internal/pkg/application/dashboard"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/events"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/simulator"
	"github.com/diwise/aquavise-dashboard/pkg/types"
	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	Simulator     simulator.Config      `yaml:"simulator"`
	Thresholds    dashboard.Thresholds  `yaml:"thresholds"`
	Notifications []events.Notification `yaml:"notifications"`
}

func Default() Config {
	return Config{
		Simulator:  simulator.DefaultConfig(),
		Thresholds: dashboard.DefaultThresholds(),
	}
}

// Events returns the subscriber part of the configuration.
func (c Config) Events() *events.Config {
	return &events.Config{Notifications: c.Notifications}
}

// LoadConfiguration reads a yaml document on top of the defaults. Settings
// that are absent keep their default value.
func LoadConfiguration(data io.Reader) (Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFile loads the configuration at path. An empty path or a missing file
// yields the defaults.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	defer f.Close()

	return LoadConfiguration(f)
}

func (c Config) validate() error {
	if c.Simulator.Interval <= 0 {
		return fmt.Errorf("simulator interval must be positive, got %s", c.Simulator.Interval)
	}

	ranges := map[string]types.Range{
		"simulator.limits.temperature":      c.Simulator.Limits.Temperature,
		"simulator.limits.ph":               c.Simulator.Limits.PH,
		"simulator.limits.turbidity":        c.Simulator.Limits.Turbidity,
		"thresholds.classifier.temperature": c.Thresholds.Classifier.Temperature,
		"thresholds.classifier.ph":          c.Thresholds.Classifier.PH,
		"thresholds.classifier.turbidity":   c.Thresholds.Classifier.Turbidity,
		"thresholds.alerts.temperature":     c.Thresholds.Alerts.Temperature,
		"thresholds.alerts.ph":              c.Thresholds.Alerts.PH,
		"thresholds.alerts.turbidity":       c.Thresholds.Alerts.Turbidity,
		"thresholds.insights.temperature":   c.Thresholds.Insights.Temperature,
		"thresholds.insights.ph":            c.Thresholds.Insights.PH,
	}

	var errs []error
	for name, r := range ranges {
		if r.Min > r.Max {
			errs = append(errs, fmt.Errorf("%s: min %g is greater than max %g", name, r.Min, r.Max))
		}
	}

	return errors.Join(errs...)
}
