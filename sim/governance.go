package sim

import "math"

// HealthLevel is the governance label for an AI health score.
type HealthLevel string

const (
	HealthStable   HealthLevel = "STABLE"
	HealthMonitor  HealthLevel = "MONITORING"
	HealthElevated HealthLevel = "ELEVATED RISK"
	HealthCritical HealthLevel = "CRITICAL"
)

const healthMaxScore = 100.0

// Penalty weights of the health model.
const (
	DriftWeight         = 25.0
	AccuracyWeight      = 25.0
	HallucinationWeight = 20.0
	LatencyWeight       = 5.0
	CostWeight          = 10.0
)

// Normalization ceilings: an input at or beyond its ceiling takes the full weight.
const (
	SevereDriftPSI      = 0.3
	RiskyLatencySec     = 3.0
	RiskyTokenUsage     = 1500.0
	HallucinationCutoff = 0.15
)

// HealthBreakdown is the weighted penalty each factor contributed.
type HealthBreakdown struct {
	Drift         float64 `json:"driftImpact"`
	Accuracy      float64 `json:"accuracyImpact"`
	Hallucination float64 `json:"hallucinationImpact"`
	Latency       float64 `json:"latencyImpact"`
	Cost          float64 `json:"costImpact"`
}

// Total returns the sum of all penalties.
func (b HealthBreakdown) Total() float64 {
	return b.Drift + b.Accuracy + b.Hallucination + b.Latency + b.Cost
}

// Governance is the unified health verdict for one sample pair.
type Governance struct {
	HealthScore float64         `json:"aiHealthScore"`
	Level       HealthLevel     `json:"riskLevel"`
	Findings    []string        `json:"alerts"`
	Breakdown   HealthBreakdown `json:"breakdown"`
}

// HealthLevelFor maps a health score to its governance label.
func HealthLevelFor(score float64) HealthLevel {
	switch {
	case score >= 90:
		return HealthStable
	case score >= 75:
		return HealthMonitor
	case score >= 50:
		return HealthElevated
	default:
		return HealthCritical
	}
}

// hallucinationIndicator collapses the LLM safety signals to 0 or 1.
func hallucinationIndicator(llm LLMSample) float64 {
	if llm.HallucinationRate > HallucinationCutoff || llm.SafetyFlag {
		return 1
	}
	return 0
}

// EvaluateGovernance computes the AI health score (100 = healthy) from
// weighted, normalized penalties and lists the governance findings.
func EvaluateGovernance(ml MLSample, llm LLMSample) Governance {
	latencySec := llm.LatencyMs / 1000
	tokens := float64(llm.TokenUsage)
	halluc := hallucinationIndicator(llm)

	b := HealthBreakdown{
		Drift:         math.Min(ml.DriftScore/SevereDriftPSI, 1) * DriftWeight,
		Accuracy:      (1 - ml.Accuracy) * AccuracyWeight,
		Hallucination: halluc * HallucinationWeight,
		Latency:       math.Min(latencySec/RiskyLatencySec, 1) * LatencyWeight,
		Cost:          math.Min(tokens/RiskyTokenUsage, 1) * CostWeight,
	}

	score := clamp(healthMaxScore-b.Total(), 0, healthMaxScore)
	score = math.Round(score*100) / 100

	var findings []string
	if ml.DriftScore > 0.2 {
		findings = append(findings, "Data Drift Detected")
	}
	if ml.Accuracy < 0.8 {
		findings = append(findings, "Model Accuracy Degradation")
	}
	if halluc == 1 {
		findings = append(findings, "Hallucination Risk")
	}
	if latencySec > 2 {
		findings = append(findings, "High Latency")
	}
	if tokens > 1200 {
		findings = append(findings, "Token Cost Spike")
	}

	return Governance{
		HealthScore: score,
		Level:       HealthLevelFor(score),
		Findings:    findings,
		Breakdown:   b,
	}
}
