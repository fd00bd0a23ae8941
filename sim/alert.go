package sim

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity is the urgency of an Alert.
type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity accepts danger, warning or info (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityDanger, SeverityWarning, SeverityInfo:
		return sev, nil
	}
	return "", fmt.Errorf("unknown severity %q (want danger, warning or info)", s)
}

// Alert kinds, used as ID prefixes.
const (
	KindDrift         = "drift"
	KindAccuracy      = "acc"
	KindSafety        = "safety"
	KindHallucination = "halluc"
	KindLatency       = "latency"
	KindBias          = "bias"
	KindPolicy        = "policy"
)

// Alert is a threshold-triggered notice derived from one sample pair.
type Alert struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Severity     Severity  `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	Acknowledged bool      `json:"acknowledged"`
}

// NewAlert builds an unacknowledged alert with a fresh ID.
func NewAlert(kind string, sev Severity, title, message string, at time.Time) Alert {
	return Alert{
		ID:        AlertID(kind, at),
		Kind:      kind,
		Severity:  sev,
		Title:     title,
		Message:   message,
		Timestamp: at,
	}
}

// AlertID returns "<kind>-<unixMillis>-<8 hex>". The kind keeps IDs distinct
// within one evaluation; the random suffix keeps them distinct across
// evaluations that land on the same millisecond.
func AlertID(kind string, at time.Time) string {
	return fmt.Sprintf("%s-%d-%s", kind, at.UnixMilli(), uuid.NewString()[:8])
}

// Alert thresholds.
const (
	AlertDriftThreshold         = 0.40
	AlertAccuracyThreshold      = 0.82
	AlertHallucinationThreshold = 0.15
	AlertLatencyThresholdMs     = 2000.0
	AlertBiasThreshold          = 0.14
)

// GenerateAlerts evaluates every alert rule independently, in fixed order:
// drift, accuracy, safety, hallucination, latency, bias.
func GenerateAlerts(ml MLSample, llm LLMSample, at time.Time) []Alert {
	alerts := make([]Alert, 0, 6)

	if ml.DriftScore > AlertDriftThreshold {
		alerts = append(alerts, NewAlert(KindDrift, SeverityDanger, "ML Model Drift Detected",
			fmt.Sprintf("PSI drift score %.1f%% exceeds threshold. Model retraining recommended.", ml.DriftScore*100), at))
	}
	if ml.Accuracy < AlertAccuracyThreshold {
		alerts = append(alerts, NewAlert(KindAccuracy, SeverityWarning, "Accuracy Degradation",
			fmt.Sprintf("Model accuracy dropped to %.1f%%. Performance SLA at risk.", ml.Accuracy*100), at))
	}
	if llm.SafetyFlag {
		alerts = append(alerts, NewAlert(KindSafety, SeverityDanger, "LLM Safety Incident",
			"Harmful content pattern detected in LLM response. HITL escalation initiated.", at))
	}
	if llm.HallucinationRate > AlertHallucinationThreshold {
		alerts = append(alerts, NewAlert(KindHallucination, SeverityWarning, "Elevated Hallucination Rate",
			fmt.Sprintf("Rate at %.1f%% exceeds 15%% compliance threshold.", llm.HallucinationRate*100), at))
	}
	if llm.LatencyMs > AlertLatencyThresholdMs {
		alerts = append(alerts, NewAlert(KindLatency, SeverityWarning, "High LLM Latency",
			fmt.Sprintf("Response latency %.0fms exceeds 2000ms SLA threshold.", llm.LatencyMs), at))
	}
	if ml.BiasScore > AlertBiasThreshold {
		alerts = append(alerts, NewAlert(KindBias, SeverityInfo, "Bias Score Elevated",
			fmt.Sprintf("Fairness metric at %.1f%%. Demographic audit triggered.", ml.BiasScore*100), at))
	}

	return alerts
}
