package monitor

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/aegis-ai/aegis-sim/sim"
)

// Summary aggregates a window of samples.
type Summary struct {
	MLSamples  int `json:"mlSamples"`
	LLMSamples int `json:"llmSamples"`

	MeanAccuracy float64 `json:"meanAccuracy"`
	MeanF1       float64 `json:"meanF1"`
	MeanDrift    float64 `json:"meanDrift"`
	MaxDrift     float64 `json:"maxDrift"`

	MeanHallucination float64 `json:"meanHallucination"`
	SafetyIncidents   int     `json:"safetyIncidents"`
	MeanLLMLatencyMs  float64 `json:"meanLlmLatencyMs"`
	P95LLMLatencyMs   float64 `json:"p95LlmLatencyMs"`

	// CumulativeCost[i] is the running total after the i-th LLM sample.
	TotalCost          decimal.Decimal   `json:"totalCost"`
	CumulativeCost     []decimal.Decimal `json:"cumulativeCost"`
	ProjectedDailyCost float64           `json:"projectedDailyCost"`
}

// Summarize computes aggregate statistics over the given histories.
// Safe for nil or empty input (returns zero-value fields).
func Summarize(ml []sim.MLSample, llm []sim.LLMSample) *Summary {
	s := &Summary{
		MLSamples:      len(ml),
		LLMSamples:     len(llm),
		TotalCost:      decimal.Zero,
		CumulativeCost: make([]decimal.Decimal, 0, len(llm)),
	}

	if len(ml) > 0 {
		var acc, f1, drift float64
		for _, m := range ml {
			acc += m.Accuracy
			f1 += m.F1
			drift += m.DriftScore
			s.MaxDrift = math.Max(s.MaxDrift, m.DriftScore)
		}
		n := float64(len(ml))
		s.MeanAccuracy = acc / n
		s.MeanF1 = f1 / n
		s.MeanDrift = drift / n
	}

	if len(llm) > 0 {
		var halluc float64
		latencies := make([]float64, 0, len(llm))
		for _, m := range llm {
			halluc += m.HallucinationRate
			if m.SafetyFlag {
				s.SafetyIncidents++
			}
			latencies = append(latencies, m.LatencyMs)
			s.TotalCost = s.TotalCost.Add(decimal.NewFromFloat(m.CostUsd))
			s.CumulativeCost = append(s.CumulativeCost, s.TotalCost)
		}
		n := float64(len(llm))
		s.MeanHallucination = halluc / n
		s.MeanLLMLatencyMs = mean(latencies)
		slices.Sort(latencies)
		s.P95LLMLatencyMs = percentile(latencies, 95)
		s.ProjectedDailyCost = sim.ProjectedDailyCost(llm[len(llm)-1])
	}

	return s
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// percentile linearly interpolates the p-th percentile of sorted data.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := p / 100.0 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= n {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

// WriteReport prints s as a plain-text block. A nil Summary prints nothing.
func (s *Summary) WriteReport(w io.Writer) error {
	if s == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, `=== Monitoring Summary ===
ML samples            : %d
Mean accuracy         : %.2f%%
Mean F1               : %.2f%%
Mean / max drift      : %.3f / %.3f
LLM samples           : %d
Mean hallucination    : %.2f%%
Safety incidents      : %d
LLM latency mean / p95: %.0fms / %.0fms
Total cost            : $%s
Projected daily cost  : $%.2f
`,
		s.MLSamples,
		s.MeanAccuracy*100,
		s.MeanF1*100,
		s.MeanDrift, s.MaxDrift,
		s.LLMSamples,
		s.MeanHallucination*100,
		s.SafetyIncidents,
		s.MeanLLMLatencyMs, s.P95LLMLatencyMs,
		s.TotalCost.StringFixed(4),
		s.ProjectedDailyCost,
	)
	return err
}
