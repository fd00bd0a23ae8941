package sim

import (
	"math"
	"math/rand"
	"time"
)

// MLSample is one synthetic observation of a classical ML model.
// All fraction fields lie in [0,1]; F1 is derived from Precision and Recall.
type MLSample struct {
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	F1         float64   `json:"f1"`
	DriftScore float64   `json:"driftScore"` // PSI-like distribution shift
	BiasScore  float64   `json:"biasScore"`  // demographic-parity gap
	LatencyMs  float64   `json:"latencyMs"`
	Throughput float64   `json:"throughput"` // predictions/sec
	Timestamp  time.Time `json:"timestamp"`
}

// LLMSample is one synthetic observation of a language model endpoint.
// CostUsd is derived from TokenUsage and the cost-stress flag.
type LLMSample struct {
	LatencyMs         float64   `json:"latencyMs"`
	TokenUsage        int       `json:"tokenUsage"`
	CostUsd           float64   `json:"costUsd"`
	HallucinationRate float64   `json:"hallucinationRate"`
	SafetyFlag        bool      `json:"safetyFlag"`
	ThroughputRpm     float64   `json:"throughputRpm"`
	ContextLength     int       `json:"contextLength"`
	Timestamp         time.Time `json:"timestamp"`
}

// Clamp ranges for generated fields.
const (
	MinClassifierScore = 0.6
	MaxClassifierScore = 0.999

	MinMLLatencyMs  = 30.0
	MaxMLLatencyMs  = 500.0
	MinMLThroughput = 100.0
	MaxMLThroughput = 1200.0

	MinLLMLatencyMs     = 200.0
	MaxLLMLatencyMs     = 5000.0
	MinTokenUsage       = 50
	MaxTokenUsage       = 4096
	MinThroughputRpm    = 5.0
	MaxThroughputRpm    = 200.0
	MinContextLength    = 512
	MaxContextLength    = 8192
	ContextLengthMean   = 2400.0
	ContextLengthStdDev = 800.0
)

// Per-1K-token prices in USD.
const (
	NominalTokenRate  = 0.025
	HighCostTokenRate = 0.06
)

// TokenRate returns the per-1K-token price for the given cost-stress state.
func TokenRate(highCost bool) float64 {
	if highCost {
		return HighCostTokenRate
	}
	return NominalTokenRate
}

// TokenCost prices tokenUsage at the rate selected by highCost.
func TokenCost(tokenUsage int, highCost bool) float64 {
	return (float64(tokenUsage) / 1000) * TokenRate(highCost)
}

// GenerateMLSample draws one ML sample. Draw order is fixed, so a seeded rng
// always yields the same sample for the same flags.
func GenerateMLSample(rng *rand.Rand, flags StressFlags, at time.Time) MLSample {
	drift := flags.Drift

	accuracy := clampedNormal(rng, pick(drift, 0.77, 0.926), pick(drift, 0.04, 0.008),
		MinClassifierScore, MaxClassifierScore)
	precision := clampedNormal(rng, pick(drift, 0.74, 0.908), pick(drift, 0.05, 0.01),
		MinClassifierScore, MaxClassifierScore)
	recall := clampedNormal(rng, pick(drift, 0.73, 0.893), pick(drift, 0.05, 0.01),
		MinClassifierScore, MaxClassifierScore)

	var driftScore float64
	if drift {
		driftScore = uniform(rng, 0.45, 0.40)
	} else {
		driftScore = uniform(rng, 0.08, 0.12)
	}
	driftScore = clamp(driftScore, 0, 1)
	biasScore := clamp(uniform(rng, 0.04, 0.12), 0, 1)

	latency := clampedNormal(rng, pick(drift, 210, 82), pick(drift, 40, 15), MinMLLatencyMs, MaxMLLatencyMs)
	throughput := clampedNormal(rng, pick(drift, 320, 780), 60, MinMLThroughput, MaxMLThroughput)

	return MLSample{
		Accuracy:   accuracy,
		Precision:  precision,
		Recall:     recall,
		F1:         harmonicMean(precision, recall),
		DriftScore: driftScore,
		BiasScore:  biasScore,
		LatencyMs:  latency,
		Throughput: throughput,
		Timestamp:  at,
	}
}

// GenerateLLMSample draws one LLM sample.
//
// Under attack (hallucination or safety stress) the safety flag is also
// raised with probability equal to the sampled hallucination rate, so unsafe
// outputs track hallucination severity.
func GenerateLLMSample(rng *rand.Rand, flags StressFlags, at time.Time) LLMSample {
	attack := flags.attack()
	highCost := flags.Cost

	latency := clampedNormal(rng, pick(attack, 2200, 680), pick(attack, 400, 120), MinLLMLatencyMs, MaxLLMLatencyMs)

	tokens := int(math.Round(normal(rng, pick(highCost, 1800, 420), pick(highCost, 300, 120))))
	tokens = max(MinTokenUsage, min(MaxTokenUsage, tokens))

	var hallucination float64
	if attack {
		hallucination = uniform(rng, 0.22, 0.25)
	} else {
		hallucination = uniform(rng, 0.02, 0.05)
	}
	hallucination = clamp(hallucination, 0, 1)

	safety := flags.Safety || (attack && rng.Float64() < hallucination)

	throughput := clampedNormal(rng, pick(attack, 28, 92), 12, MinThroughputRpm, MaxThroughputRpm)
	contextLength := int(math.Round(clampedNormal(rng, ContextLengthMean, ContextLengthStdDev,
		MinContextLength, MaxContextLength)))

	return LLMSample{
		LatencyMs:         latency,
		TokenUsage:        tokens,
		CostUsd:           TokenCost(tokens, highCost),
		HallucinationRate: hallucination,
		SafetyFlag:        safety,
		ThroughputRpm:     throughput,
		ContextLength:     contextLength,
		Timestamp:         at,
	}
}
