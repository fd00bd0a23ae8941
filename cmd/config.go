package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/aegis-ai/aegis-sim/sim"
	"github.com/aegis-ai/aegis-sim/sim/monitor"
	"github.com/aegis-ai/aegis-sim/sim/policy"
)

// Config is the YAML run configuration. Every key must be listed here to
// satisfy KnownFields(true) strict parsing.
type Config struct {
	Seed          int64           `yaml:"seed"`
	Interval      time.Duration   `yaml:"interval"`
	HistorySize   int             `yaml:"history_size"`
	AlertFeedSize int             `yaml:"alert_feed_size"`
	Flags         sim.StressFlags `yaml:"flags"`
	Policies      []policy.Rule   `yaml:"policies"`
}

// DefaultConfig mirrors monitor.DefaultConfig with no policies.
func DefaultConfig() Config {
	d := monitor.DefaultConfig()
	return Config{
		Seed:          d.Seed,
		Interval:      d.Interval,
		HistorySize:   d.HistorySize,
		AlertFeedSize: d.AlertFeedSize,
		Flags:         d.Flags,
	}
}

// LoadConfig reads path over the defaults. Keys missing from the file keep
// their default value; unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func parseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}

// applyOverrides copies explicitly set CLI flags onto cfg.
func applyOverrides(fs *pflag.FlagSet, cfg *Config) {
	if fs.Changed("seed") {
		cfg.Seed = seed
	}
	if fs.Changed("interval") {
		cfg.Interval = interval
	}
	if fs.Changed("history-size") {
		cfg.HistorySize = historySize
	}
	stress := map[string]bool{
		sim.FlagDrift:         triggerDrift,
		sim.FlagHallucination: triggerHallucination,
		sim.FlagCost:          triggerCost,
		sim.FlagSafety:        triggerSafety,
	}
	for name, v := range stress {
		if fs.Changed(name) {
			cfg.Flags, _ = cfg.Flags.Set(name, v)
		}
	}
}

// MonitorConfig converts cfg to the monitor's run parameters.
func (c Config) MonitorConfig() monitor.Config {
	return monitor.Config{
		Seed:          c.Seed,
		Interval:      c.Interval,
		HistorySize:   c.HistorySize,
		AlertFeedSize: c.AlertFeedSize,
		Flags:         c.Flags,
	}
}

// NewMonitor compiles cfg's policies and builds a Monitor from it.
func (c Config) NewMonitor(opts ...monitor.Option) (*monitor.Monitor, error) {
	set, err := policy.Compile(c.Policies)
	if err != nil {
		return nil, err
	}
	if set.Len() > 0 {
		logrus.Infof("loaded %d governance policies: %v", set.Len(), set.Names())
	}
	return monitor.New(c.MonitorConfig(), append(opts, monitor.WithPolicies(set))...)
}
