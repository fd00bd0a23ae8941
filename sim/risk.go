package sim

// RiskTier buckets a risk score.
type RiskTier string

const (
	TierLow    RiskTier = "LOW"
	TierMedium RiskTier = "MEDIUM"
	TierHigh   RiskTier = "HIGH"
)

// Score bounds and tier thresholds.
const (
	MaxRiskScore      = 100
	HighTierThreshold = 60
	MedTierThreshold  = 30
)

// RiskFactor names one rule that contributed points to a RiskScore.
type RiskFactor struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// RiskScore is the composite risk of one ML/LLM sample pair.
type RiskScore struct {
	Score   int          `json:"score"`
	Tier    RiskTier     `json:"level"`
	Factors []RiskFactor `json:"factors,omitempty"`
}

// TierFor maps a score to its tier: >=60 HIGH, >=30 MEDIUM, else LOW.
func TierFor(score int) RiskTier {
	switch {
	case score >= HighTierThreshold:
		return TierHigh
	case score >= MedTierThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// CalcRiskScore sums the point table over one sample pair and caps at 100.
// All rules contribute; only the drift pair and the hallucination pair are
// mutually exclusive (higher band wins).
func CalcRiskScore(ml MLSample, llm LLMSample) RiskScore {
	var factors []RiskFactor
	add := func(name string, points int) {
		factors = append(factors, RiskFactor{Name: name, Points: points})
	}

	switch {
	case ml.DriftScore > 0.45:
		add("drift_severe", 35)
	case ml.DriftScore > 0.25:
		add("drift_moderate", 18)
	}
	if ml.Accuracy < 0.80 {
		add("accuracy_low", 20)
	}
	if ml.BiasScore > 0.15 {
		add("bias_elevated", 10)
	}
	switch {
	case llm.SafetyFlag || llm.HallucinationRate > 0.20:
		add("llm_unsafe", 35)
	case llm.HallucinationRate > 0.10:
		add("hallucination_elevated", 18)
	}
	if llm.LatencyMs > 2500 {
		add("llm_latency", 10)
	}

	score := 0
	for _, f := range factors {
		score += f.Points
	}
	score = min(score, MaxRiskScore)

	return RiskScore{Score: score, Tier: TierFor(score), Factors: factors}
}
