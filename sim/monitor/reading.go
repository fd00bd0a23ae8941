package monitor

import (
	"time"

	"github.com/aegis-ai/aegis-sim/sim"
)

// Reading is one stateless sample pair with everything derived from it.
type Reading struct {
	ML         sim.MLSample   `json:"mlMetrics"`
	LLM        sim.LLMSample  `json:"llmMetrics"`
	Alerts     []sim.Alert    `json:"alerts"`
	Risk       sim.RiskScore  `json:"risk"`
	Governance sim.Governance `json:"governance"`
}

// Sample draws a single pair from a fresh seeded generator. It touches no
// Monitor state, so the same seed and flags always give the same samples.
func Sample(seed int64, flags sim.StressFlags, at time.Time) Reading {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
	ml := sim.GenerateMLSample(rng.ForStream(sim.StreamML), flags, at)
	llm := sim.GenerateLLMSample(rng.ForStream(sim.StreamLLM), flags, at)
	return Reading{
		ML:         ml,
		LLM:        llm,
		Alerts:     sim.GenerateAlerts(ml, llm, at),
		Risk:       sim.CalcRiskScore(ml, llm),
		Governance: sim.EvaluateGovernance(ml, llm),
	}
}
