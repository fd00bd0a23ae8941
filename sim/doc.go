// Package sim provides the metrics simulation and risk-scoring engine behind
// the Aegis governance dashboard.
//
// # Reading Guide
//
// Start with these files:
//   - sample.go: MLSample/LLMSample and the two generators
//   - risk.go: the additive risk point table and tiers
//   - alert.go: threshold-triggered alerts
//
// Everything in this package is stateless. Randomness is injected as a
// *rand.Rand (see PartitionedRNG in rng.go), so a seed fully determines the
// generated samples. Retention of samples over time belongs to sim/monitor,
// which owns the bounded history rings and the tick loop.
//
// Derived governance views live alongside the engine:
//   - status.go: first-match-wins status ladders for the ML and LLM panels
//   - governance.go: weighted AI health score with findings and breakdown
//   - compliance.go: compliance controls, radar axes and cost projection
package sim
