// Package policy evaluates operator-defined governance rules against each
// ML/LLM sample pair. Rules are CEL boolean expressions over two map
// variables, ml and llm, keyed by the sample's JSON field names:
//
//	llm.costUsd > 0.05 && llm.tokenUsage > 1500
//	ml.driftScore > 0.3 || ml.f1 < 0.8
//
// A rule that evaluates to true produces one sim.Alert of kind "policy".
package policy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/aegis-ai/aegis-sim/sim"
)

// Rule is one governance rule as written in the config file.
type Rule struct {
	Name     string `yaml:"name" json:"name"`
	Severity string `yaml:"severity,omitempty" json:"severity,omitempty"` // danger, warning (default) or info
	Expr     string `yaml:"expr" json:"expr"`
	Title    string `yaml:"title,omitempty" json:"title,omitempty"`
	Message  string `yaml:"message,omitempty" json:"message,omitempty"`
}

type compiledRule struct {
	rule     Rule
	severity sim.Severity
	program  cel.Program
}

// Set is a compiled, ordered collection of rules. The zero value and a nil
// *Set evaluate to no alerts.
type Set struct {
	rules []compiledRule
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("ml", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("llm", cel.MapType(cel.StringType, cel.DynType)),
	)
}

// Compile type-checks every rule and builds its program once.
// Rule names must be unique and non-empty; expressions must yield bool.
func Compile(rules []Rule) (*Set, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	seen := make(map[string]bool, len(rules))
	set := &Set{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			return nil, fmt.Errorf("policy #%d: name can't be empty", i)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("policy %q: duplicate name", r.Name)
		}
		seen[r.Name] = true
		if strings.TrimSpace(r.Expr) == "" {
			return nil, fmt.Errorf("policy %q: expr can't be empty", r.Name)
		}

		sev := sim.SeverityWarning
		if r.Severity != "" {
			if sev, err = sim.ParseSeverity(r.Severity); err != nil {
				return nil, fmt.Errorf("policy %q: %w", r.Name, err)
			}
		}

		ast, issues := env.Compile(r.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("policy %q: compile: %w", r.Name, issues.Err())
		}
		out := ast.OutputType()
		if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
			return nil, fmt.Errorf("policy %q: expr must evaluate to bool, got %s", r.Name, out)
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("policy %q: program: %w", r.Name, err)
		}
		set.rules = append(set.rules, compiledRule{rule: r, severity: sev, program: prg})
	}
	return set, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level rule sets.
func MustCompile(rules []Rule) *Set {
	s, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of compiled rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Names returns rule names in evaluation order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.rule.Name
	}
	return names
}

// Evaluate runs every rule in order against one sample pair.
// A rule that fails at runtime is skipped; its error is joined into the
// returned error while the remaining rules still run.
func (s *Set) Evaluate(ml sim.MLSample, llm sim.LLMSample, at time.Time) ([]sim.Alert, error) {
	if s.Len() == 0 {
		return nil, nil
	}
	vars := map[string]any{
		"ml":  MLVars(ml),
		"llm": LLMVars(llm),
	}

	var alerts []sim.Alert
	var errs []error
	for _, c := range s.rules {
		out, _, err := c.program.Eval(vars)
		if err != nil {
			errs = append(errs, fmt.Errorf("policy %q: eval: %w", c.rule.Name, err))
			continue
		}
		matched, ok := out.Value().(bool)
		if !ok {
			errs = append(errs, fmt.Errorf("policy %q: expected bool result, got %T", c.rule.Name, out.Value()))
			continue
		}
		if matched {
			alerts = append(alerts, c.alert(at))
		}
	}
	return alerts, errors.Join(errs...)
}

func (c compiledRule) alert(at time.Time) sim.Alert {
	title := c.rule.Title
	if title == "" {
		title = "Policy Violation: " + c.rule.Name
	}
	msg := c.rule.Message
	if msg == "" {
		msg = fmt.Sprintf("Governance policy %q matched (%s).", c.rule.Name, c.rule.Expr)
	}
	return sim.NewAlert(sim.KindPolicy, c.severity, title, msg, at)
}

// MLVars exposes an ML sample to CEL under its JSON field names.
func MLVars(m sim.MLSample) map[string]any {
	return map[string]any{
		"accuracy":   m.Accuracy,
		"precision":  m.Precision,
		"recall":     m.Recall,
		"f1":         m.F1,
		"driftScore": m.DriftScore,
		"biasScore":  m.BiasScore,
		"latencyMs":  m.LatencyMs,
		"throughput": m.Throughput,
	}
}

// LLMVars exposes an LLM sample to CEL under its JSON field names.
func LLMVars(m sim.LLMSample) map[string]any {
	return map[string]any{
		"latencyMs":         m.LatencyMs,
		"tokenUsage":        int64(m.TokenUsage),
		"costUsd":           m.CostUsd,
		"hallucinationRate": m.HallucinationRate,
		"safetyFlag":        m.SafetyFlag,
		"throughputRpm":     m.ThroughputRpm,
		"contextLength":     int64(m.ContextLength),
	}
}
