package policy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-ai/aegis-sim/sim"
)

var testTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func costlyPair() (sim.MLSample, sim.LLMSample) {
	ml := sim.MLSample{Accuracy: 0.93, F1: 0.9, DriftScore: 0.1, BiasScore: 0.05}
	llm := sim.LLMSample{TokenUsage: 1800, CostUsd: 0.108, HallucinationRate: 0.04, LatencyMs: 700}
	return ml, llm
}

func TestCompile_ValidRules(t *testing.T) {
	set, err := Compile([]Rule{
		{Name: "cost-cap", Severity: "danger", Expr: "llm.costUsd > 0.05 && llm.tokenUsage > 1500"},
		{Name: "f1-floor", Expr: "ml.f1 < 0.8"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"cost-cap", "f1-floor"}, set.Names())
}

func TestCompile_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
		want  string
	}{
		{"empty name", []Rule{{Name: " ", Expr: "true"}}, "name can't be empty"},
		{"empty expr", []Rule{{Name: "a", Expr: ""}}, "expr can't be empty"},
		{"duplicate", []Rule{{Name: "a", Expr: "true"}, {Name: "a", Expr: "false"}}, "duplicate"},
		{"bad severity", []Rule{{Name: "a", Severity: "critical", Expr: "true"}}, "unknown severity"},
		{"syntax error", []Rule{{Name: "a", Expr: "ml.f1 <"}}, "compile"},
		{"undeclared variable", []Rule{{Name: "a", Expr: "model.f1 < 0.8"}}, "compile"},
		{"non-bool result", []Rule{{Name: "a", Expr: "1 + 2"}}, "must evaluate to bool"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.rules)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMustCompile_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustCompile([]Rule{{Name: "", Expr: "true"}}) })
}

func TestEvaluate_MatchingRuleRaisesPolicyAlert(t *testing.T) {
	// GIVEN a cost rule and a sample pair that exceeds it
	set := MustCompile([]Rule{
		{Name: "cost-cap", Severity: "danger", Expr: "llm.costUsd > 0.05 && llm.tokenUsage > 1500"},
		{Name: "f1-floor", Expr: "ml.f1 < 0.8"},
	})
	ml, llm := costlyPair()

	// WHEN evaluated
	alerts, err := set.Evaluate(ml, llm, testTime)

	// THEN only the cost rule fires, as a policy alert with default text
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	a := alerts[0]
	assert.Equal(t, sim.KindPolicy, a.Kind)
	assert.Equal(t, sim.SeverityDanger, a.Severity)
	assert.Equal(t, "Policy Violation: cost-cap", a.Title)
	assert.Contains(t, a.Message, "cost-cap")
	assert.True(t, strings.HasPrefix(a.ID, "policy-"))
	assert.True(t, a.Timestamp.Equal(testTime))
}

func TestEvaluate_CustomTitleAndDefaultSeverity(t *testing.T) {
	set := MustCompile([]Rule{{
		Name:    "unsafe",
		Expr:    "llm.safetyFlag || llm.hallucinationRate > 0.2",
		Title:   "Unsafe output",
		Message: "Escalate to reviewer.",
	}})
	ml, llm := costlyPair()
	llm.SafetyFlag = true

	alerts, err := set.Evaluate(ml, llm, testTime)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, sim.SeverityWarning, alerts[0].Severity)
	assert.Equal(t, "Unsafe output", alerts[0].Title)
	assert.Equal(t, "Escalate to reviewer.", alerts[0].Message)
}

func TestEvaluate_IntegerFields(t *testing.T) {
	set := MustCompile([]Rule{{Name: "long-context", Expr: "llm.contextLength >= 4096"}})
	ml, llm := costlyPair()

	llm.ContextLength = 4095
	alerts, err := set.Evaluate(ml, llm, testTime)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	llm.ContextLength = 4096
	alerts, err = set.Evaluate(ml, llm, testTime)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestEvaluate_RuntimeErrorDoesNotStopOtherRules(t *testing.T) {
	// GIVEN a rule referencing a missing key ahead of a valid rule
	set := MustCompile([]Rule{
		{Name: "typo", Expr: "ml.driftScroe > 0.3"},
		{Name: "cost-cap", Expr: "llm.costUsd > 0.05"},
	})
	ml, llm := costlyPair()

	// WHEN evaluated
	alerts, err := set.Evaluate(ml, llm, testTime)

	// THEN the error names the failing rule and the valid rule still fires
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"typo"`)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Policy Violation: cost-cap", alerts[0].Title)
}

func TestEvaluate_NilSet(t *testing.T) {
	var set *Set
	ml, llm := costlyPair()
	alerts, err := set.Evaluate(ml, llm, testTime)
	assert.NoError(t, err)
	assert.Nil(t, alerts)
	assert.Zero(t, set.Len())
	assert.Nil(t, set.Names())
}
