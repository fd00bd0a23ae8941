package sim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAlerts_DriftOnly_SingleDangerAlert(t *testing.T) {
	// GIVEN drift above threshold and everything else nominal
	ml := MLSample{DriftScore: 0.5, Accuracy: 0.90, BiasScore: 0.05}
	llm := LLMSample{SafetyFlag: false, HallucinationRate: 0.05, LatencyMs: 500}

	// WHEN alerts are generated
	alerts := GenerateAlerts(ml, llm, testTime)

	// THEN exactly one drift alert fires
	require.Len(t, alerts, 1)
	assert.Equal(t, KindDrift, alerts[0].Kind)
	assert.Equal(t, SeverityDanger, alerts[0].Severity)
	assert.Equal(t, "ML Model Drift Detected", alerts[0].Title)
	assert.Contains(t, alerts[0].Message, "50.0%")
	assert.False(t, alerts[0].Acknowledged)
	assert.True(t, alerts[0].Timestamp.Equal(testTime))
}

func TestGenerateAlerts_AllRules_FixedOrder(t *testing.T) {
	// GIVEN a sample pair that trips every rule
	ml := MLSample{DriftScore: 0.62, Accuracy: 0.71, BiasScore: 0.15}
	llm := LLMSample{SafetyFlag: true, HallucinationRate: 0.33, LatencyMs: 2450}

	// WHEN alerts are generated
	alerts := GenerateAlerts(ml, llm, testTime)

	// THEN all six fire in rule order with the expected severities
	wantKinds := []string{KindDrift, KindAccuracy, KindSafety, KindHallucination, KindLatency, KindBias}
	wantSev := []Severity{SeverityDanger, SeverityWarning, SeverityDanger, SeverityWarning, SeverityWarning, SeverityInfo}
	require.Len(t, alerts, len(wantKinds))
	for i, a := range alerts {
		assert.Equal(t, wantKinds[i], a.Kind, "alert %d kind", i)
		assert.Equal(t, wantSev[i], a.Severity, "alert %d severity", i)
	}

	// THEN messages interpolate the triggering values
	assert.Contains(t, alerts[0].Message, "62.0%")
	assert.Contains(t, alerts[1].Message, "71.0%")
	assert.Contains(t, alerts[3].Message, "33.0%")
	assert.Contains(t, alerts[4].Message, "2450ms")
	assert.Contains(t, alerts[5].Message, "15.0%")
}

func TestGenerateAlerts_NominalPair_NoAlerts(t *testing.T) {
	alerts := GenerateAlerts(nominalML(), nominalLLM(), testTime)
	assert.Empty(t, alerts)
}

func TestGenerateAlerts_BoundaryValues_DoNotFire(t *testing.T) {
	ml := MLSample{DriftScore: 0.40, Accuracy: 0.82, BiasScore: 0.14}
	llm := LLMSample{HallucinationRate: 0.15, LatencyMs: 2000}
	assert.Empty(t, GenerateAlerts(ml, llm, testTime))
}

func TestGenerateAlerts_SameMillisecond_UniqueIDs(t *testing.T) {
	// GIVEN two evaluations at the identical instant, each firing every rule
	ml := MLSample{DriftScore: 0.62, Accuracy: 0.71, BiasScore: 0.15}
	llm := LLMSample{SafetyFlag: true, HallucinationRate: 0.33, LatencyMs: 2450}

	first := GenerateAlerts(ml, llm, testTime)
	second := GenerateAlerts(ml, llm, testTime)

	// THEN no two alerts share an ID, within or across evaluations
	seen := make(map[string]bool)
	for _, a := range append(first, second...) {
		if seen[a.ID] {
			t.Fatalf("duplicate alert ID %q", a.ID)
		}
		seen[a.ID] = true
		if !strings.HasPrefix(a.ID, a.Kind+"-") {
			t.Errorf("ID %q does not start with kind %q", a.ID, a.Kind)
		}
	}
	assert.Len(t, seen, 12)
}

func TestParseSeverity(t *testing.T) {
	sev, err := ParseSeverity(" Warning ")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, sev)

	_, err = ParseSeverity("critical")
	assert.Error(t, err)
}
