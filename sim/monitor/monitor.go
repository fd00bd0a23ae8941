// Package monitor drives the sample generators on a fixed cadence and keeps
// the rolling state a dashboard needs: per-stream history, the alert feed,
// the current stress flags and the latest derived scores.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aegis-ai/aegis-sim/sim"
	"github.com/aegis-ai/aegis-sim/sim/history"
	"github.com/aegis-ai/aegis-sim/sim/policy"
)

// ErrUnknownFlag is returned by Toggle for names outside sim.FlagNames.
var ErrUnknownFlag = errors.New("unknown stress flag")

// TickResult is everything produced by one tick.
type TickResult struct {
	ML     sim.MLSample  `json:"mlMetrics"`
	LLM    sim.LLMSample `json:"llmMetrics"`
	Alerts []sim.Alert   `json:"alerts"`
	Risk   sim.RiskScore `json:"risk"`
}

// Snapshot is a consistent copy of the monitor state at one instant.
type Snapshot struct {
	Initializing bool            `json:"initializing"`
	ML           *sim.MLSample   `json:"mlMetrics,omitempty"`
	LLM          *sim.LLMSample  `json:"llmMetrics,omitempty"`
	MLStatus     sim.Status      `json:"mlStatus"`
	LLMStatus    sim.Status      `json:"llmStatus"`
	Risk         sim.RiskScore   `json:"risk"`
	Governance   *sim.Governance `json:"governance,omitempty"`
	Compliance   sim.Compliance  `json:"compliance"`
	MLHistory    []sim.MLSample  `json:"mlHistory"`
	LLMHistory   []sim.LLMSample `json:"llmHistory"`
	Alerts       []sim.Alert     `json:"alerts"`
	Ticks        int             `json:"ticks"`
	LastUpdate   time.Time       `json:"lastUpdate"`
	Flags        sim.StressFlags `json:"flags"`
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock replaces time.Now as the source of sample timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithPolicies adds operator rules evaluated after the built-in alert rules.
func WithPolicies(set *policy.Set) Option {
	return func(m *Monitor) { m.policies = set }
}

// Monitor owns the simulation state. Tick may be called from Run's goroutine
// and from request handlers; all access goes through mu.
type Monitor struct {
	mu sync.RWMutex

	cfg      Config
	mlRNG    *rand.Rand
	llmRNG   *rand.Rand
	now      func() time.Time
	policies *policy.Set

	flags      sim.StressFlags
	ml         *history.Ring[sim.MLSample]
	llm        *history.Ring[sim.LLMSample]
	alerts     []sim.Alert // newest first
	ticks      int
	lastTier   sim.RiskTier
	lastUpdate time.Time
}

// New validates cfg and returns a Monitor with empty history.
func New(cfg Config, opts ...Option) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid monitor config: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	m := &Monitor{
		cfg:      cfg,
		mlRNG:    rng.ForStream(sim.StreamML),
		llmRNG:   rng.ForStream(sim.StreamLLM),
		now:      time.Now,
		flags:    cfg.Flags,
		ml:       history.New[sim.MLSample](cfg.HistorySize),
		llm:      history.New[sim.LLMSample](cfg.HistorySize),
		alerts:   make([]sim.Alert, 0, cfg.AlertFeedSize),
		lastTier: sim.TierLow,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Config returns the configuration the monitor was built with.
func (m *Monitor) Config() Config {
	return m.cfg
}

// Tick generates one ML and one LLM sample under the current flags, derives
// alerts and risk, and folds them into the rolling state.
func (m *Monitor) Tick() TickResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	at := m.now()
	flags := m.flags
	ml := sim.GenerateMLSample(m.mlRNG, flags, at)
	llm := sim.GenerateLLMSample(m.llmRNG, flags, at)

	alerts := sim.GenerateAlerts(ml, llm, at)
	extra, err := m.policies.Evaluate(ml, llm, at)
	if err != nil {
		logrus.Warnf("policy evaluation: %v", err)
	}
	alerts = append(alerts, extra...)
	risk := sim.CalcRiskScore(ml, llm)

	m.ml.Push(ml)
	m.llm.Push(llm)
	m.pushAlerts(alerts)
	m.ticks++
	m.lastUpdate = at

	if risk.Tier != m.lastTier {
		logrus.Infof("risk tier %s -> %s (score %d)", m.lastTier, risk.Tier, risk.Score)
		m.lastTier = risk.Tier
	}
	logrus.Debugf("tick %d: risk=%d ml=%s llm=%s alerts=%d",
		m.ticks, risk.Score, sim.ClassifyML(ml).Label, sim.ClassifyLLM(llm).Label, len(alerts))

	return TickResult{ML: ml, LLM: llm, Alerts: alerts, Risk: risk}
}

// pushAlerts prepends a tick's alerts so the feed stays newest first, then
// truncates to AlertFeedSize. Caller holds mu.
func (m *Monitor) pushAlerts(alerts []sim.Alert) {
	if len(alerts) == 0 {
		return
	}
	feed := make([]sim.Alert, 0, min(len(alerts)+len(m.alerts), m.cfg.AlertFeedSize))
	feed = append(feed, alerts...)
	feed = append(feed, m.alerts...)
	if len(feed) > m.cfg.AlertFeedSize {
		feed = feed[:m.cfg.AlertFeedSize]
	}
	m.alerts = feed
}

// Run ticks once immediately and then every Interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	if m.cfg.Interval <= 0 {
		return fmt.Errorf("monitor: Run needs a positive interval, got %s", m.cfg.Interval)
	}
	m.Tick()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Tick()
		}
	}
}

// Flags returns the current stress flags.
func (m *Monitor) Flags() sim.StressFlags {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags
}

// SetFlags replaces all stress flags. Takes effect on the next tick.
func (m *Monitor) SetFlags(f sim.StressFlags) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f != m.flags {
		logrus.Infof("stress flags set to %+v", f)
	}
	m.flags = f
}

// Toggle flips one named flag and returns its new value.
func (m *Monitor) Toggle(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.flags.Get(name)
	if !ok {
		return false, fmt.Errorf("%w %q (want one of %v)", ErrUnknownFlag, name, sim.FlagNames)
	}
	m.flags, _ = m.flags.Set(name, !cur)
	logrus.Infof("stress flag %s = %t", name, !cur)
	return !cur, nil
}

// Acknowledge marks the feed alert with the given ID. Returns false if no
// alert in the feed has that ID.
func (m *Monitor) Acknowledge(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].Acknowledged = true
			return true
		}
	}
	return false
}

// Alerts returns a copy of the alert feed, newest first.
func (m *Monitor) Alerts() []sim.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]sim.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// MLHistory returns the retained ML samples, oldest first.
func (m *Monitor) MLHistory() []sim.MLSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ml.Items()
}

// LLMHistory returns the retained LLM samples, oldest first.
func (m *Monitor) LLMHistory() []sim.LLMSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.llm.Items()
}

// Snapshot copies the full dashboard state. Before the first tick it reports
// Initializing with neutral statuses and a zero LOW risk.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		MLHistory:  m.ml.Items(),
		LLMHistory: m.llm.Items(),
		Alerts:     make([]sim.Alert, len(m.alerts)),
		Ticks:      m.ticks,
		LastUpdate: m.lastUpdate,
		Flags:      m.flags,
	}
	copy(snap.Alerts, m.alerts)

	ml, okML := m.ml.Latest()
	llm, okLLM := m.llm.Latest()
	if !okML || !okLLM {
		snap.Initializing = true
		snap.MLStatus = sim.InitializingStatus
		snap.LLMStatus = sim.InitializingStatus
		snap.Risk = sim.RiskScore{Score: 0, Tier: sim.TierLow}
		snap.Compliance = sim.EvaluateCompliance(nil, nil)
		return snap
	}

	gov := sim.EvaluateGovernance(ml, llm)
	snap.ML = &ml
	snap.LLM = &llm
	snap.MLStatus = sim.ClassifyML(ml)
	snap.LLMStatus = sim.ClassifyLLM(llm)
	snap.Risk = sim.CalcRiskScore(ml, llm)
	snap.Governance = &gov
	snap.Compliance = sim.EvaluateCompliance(&ml, &llm)
	return snap
}

// Summary aggregates the retained history.
func (m *Monitor) Summary() *Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Summarize(m.ml.Items(), m.llm.Items())
}
