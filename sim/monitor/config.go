package monitor

import (
	"fmt"
	"time"

	"github.com/aegis-ai/aegis-sim/sim"
	"github.com/aegis-ai/aegis-sim/sim/history"
)

// Defaults match the dashboard: a 3s refresh, 60 points of history per
// stream and the 40 most recent alerts.
const (
	DefaultInterval      = 3 * time.Second
	DefaultHistorySize   = history.DefaultCapacity
	DefaultAlertFeedSize = 40
)

// Config holds the monitor's run parameters.
type Config struct {
	Seed          int64
	Interval      time.Duration // zero means ticks are driven by the caller only
	HistorySize   int
	AlertFeedSize int
	Flags         sim.StressFlags
}

// DefaultConfig returns a Config with the dashboard defaults and seed 42.
func DefaultConfig() Config {
	return Config{
		Seed:          42,
		Interval:      DefaultInterval,
		HistorySize:   DefaultHistorySize,
		AlertFeedSize: DefaultAlertFeedSize,
	}
}

// Validate checks that sizes are positive and the interval is not negative.
func (c Config) Validate() error {
	if c.Interval < 0 {
		return fmt.Errorf("interval must be >= 0, got %s", c.Interval)
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("history size must be >= 1, got %d", c.HistorySize)
	}
	if c.AlertFeedSize < 1 {
		return fmt.Errorf("alert feed size must be >= 1, got %d", c.AlertFeedSize)
	}
	return nil
}
