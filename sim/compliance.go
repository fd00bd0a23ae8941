package sim

import "math"

// ControlStatus is the audit outcome of a compliance control.
type ControlStatus string

const (
	ControlPass ControlStatus = "pass"
	ControlWarn ControlStatus = "warn"
	ControlFail ControlStatus = "fail"
)

// Control is one row of the compliance table.
type Control struct {
	Name      string        `json:"name"`
	Owner     string        `json:"owner"`
	Status    ControlStatus `json:"status"`
	Score     float64       `json:"score"` // percent
	LastAudit string        `json:"lastAudit"`
}

// RadarAxis is one spoke of the responsible-AI radar.
type RadarAxis struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
}

// Compliance is the governance view derived from the latest sample pair.
type Compliance struct {
	Controls           []Control   `json:"controls"`
	Radar              []RadarAxis `json:"radar"`
	LLMComplianceScore float64     `json:"llmComplianceScore"`
	ProjectedDailyCost float64     `json:"projectedDailyCost"`
}

// CallsPerDay is the call volume used to project LLM spend.
const CallsPerDay = 8640

// ProjectedDailyCost extrapolates one call's cost to a day of traffic.
func ProjectedDailyCost(llm LLMSample) float64 {
	return llm.CostUsd * CallsPerDay
}

// FairnessScore converts a bias gap to a percent score (100 = no gap).
func FairnessScore(bias float64) float64 {
	return 100 - bias*500
}

// RobustnessScore converts a drift score to a percent score (100 = no drift).
func RobustnessScore(drift float64) float64 {
	return 100 - drift*100
}

// LLMComplianceScore is 25 for a safety incident, else 100-3h floored at 60.
func LLMComplianceScore(llm LLMSample) float64 {
	if llm.SafetyFlag {
		return 25
	}
	return math.Max(60, 100-llm.HallucinationRate*300)
}

// EvaluateCompliance builds the compliance table and radar. Either sample may
// be nil before the first tick; the affected rows fall back to their
// baseline audit values.
func EvaluateCompliance(ml *MLSample, llm *LLMSample) Compliance {
	fairness := Control{Name: "Demographic Fairness", Owner: "Risk", Status: ControlPass, Score: 91, LastAudit: "Today"}
	safety := Control{Name: "Content Safety & Toxicity", Owner: "LLMOps", Status: ControlPass, Score: 98.1, LastAudit: "Today"}
	drift := Control{Name: "Model Drift Monitoring", Owner: "MLOps", Status: ControlPass, Score: 92, LastAudit: "Real-time"}

	radar := []RadarAxis{
		{Subject: "Accuracy", Score: 90},
		{Subject: "Fairness", Score: 85},
		{Subject: "Safety", Score: 95},
		{Subject: "Privacy", Score: 96},
		{Subject: "Explainability", Score: 88},
		{Subject: "Robustness", Score: 90},
	}

	c := Compliance{LLMComplianceScore: 100}
	if ml != nil {
		fairness.Score = FairnessScore(ml.BiasScore)
		if ml.BiasScore > 0.15 {
			fairness.Status = ControlWarn
		}
		drift.Score = RobustnessScore(ml.DriftScore)
		switch {
		case ml.DriftScore > 0.4:
			drift.Status = ControlFail
		case ml.DriftScore > 0.25:
			drift.Status = ControlWarn
		}
		radar[0].Score = ml.Accuracy * 100
		radar[1].Score = FairnessScore(ml.BiasScore)
		radar[5].Score = RobustnessScore(ml.DriftScore)
	}
	if llm != nil {
		if llm.SafetyFlag {
			safety.Status = ControlFail
			safety.Score = 25
			radar[2].Score = 30
		} else {
			radar[2].Score = 100 - llm.HallucinationRate*300
		}
		c.LLMComplianceScore = LLMComplianceScore(*llm)
		c.ProjectedDailyCost = ProjectedDailyCost(*llm)
	}

	c.Controls = []Control{
		{Name: "Data Privacy & PII Protection", Owner: "DataOps", Status: ControlPass, Score: 100, LastAudit: "Today"},
		{Name: "Model Explainability (SHAP/LIME)", Owner: "MLOps", Status: ControlPass, Score: 94.2, LastAudit: "Today"},
		fairness,
		safety,
		{Name: "Audit Trail Completeness", Owner: "SecOps", Status: ControlPass, Score: 100, LastAudit: "Today"},
		drift,
		{Name: "Adversarial Robustness", Owner: "AI Security", Status: ControlPass, Score: 91.4, LastAudit: "Yesterday"},
	}
	c.Radar = radar
	return c
}

// Failing returns the controls that are not passing.
func (c Compliance) Failing() []Control {
	var out []Control
	for _, ctl := range c.Controls {
		if ctl.Status != ControlPass {
			out = append(out, ctl)
		}
	}
	return out
}
