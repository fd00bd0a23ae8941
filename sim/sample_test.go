package sim

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func flagName(f StressFlags) string {
	return fmt.Sprintf("drift=%t,halluc=%t,cost=%t,safety=%t", f.Drift, f.Hallucination, f.Cost, f.Safety)
}

func inRange(t *testing.T, field string, v, lo, hi float64) {
	t.Helper()
	if v < lo || v > hi {
		t.Errorf("%s = %v, want in [%v, %v]", field, v, lo, hi)
	}
}

func TestGenerateMLSample_AllFlagCombinations_StayWithinClampRanges(t *testing.T) {
	for _, flags := range AllFlagCombinations() {
		t.Run(flagName(flags), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			for i := 0; i < 500; i++ {
				s := GenerateMLSample(rng, flags, testTime)
				inRange(t, "accuracy", s.Accuracy, 0.6, 0.999)
				inRange(t, "precision", s.Precision, 0.6, 0.999)
				inRange(t, "recall", s.Recall, 0.6, 0.999)
				inRange(t, "f1", s.F1, 0.6-1e-9, 0.999+1e-9)
				inRange(t, "driftScore", s.DriftScore, 0, 1)
				inRange(t, "biasScore", s.BiasScore, 0.04, 0.16)
				inRange(t, "latencyMs", s.LatencyMs, 30, 500)
				inRange(t, "throughput", s.Throughput, 100, 1200)
			}
		})
	}
}

func TestGenerateLLMSample_AllFlagCombinations_StayWithinClampRanges(t *testing.T) {
	for _, flags := range AllFlagCombinations() {
		t.Run(flagName(flags), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			for i := 0; i < 500; i++ {
				s := GenerateLLMSample(rng, flags, testTime)
				inRange(t, "latencyMs", s.LatencyMs, 200, 5000)
				if s.TokenUsage < 50 || s.TokenUsage > 4096 {
					t.Errorf("tokenUsage = %d, want in [50, 4096]", s.TokenUsage)
				}
				inRange(t, "hallucinationRate", s.HallucinationRate, 0, 1)
				inRange(t, "throughputRpm", s.ThroughputRpm, 5, 200)
				if s.ContextLength < 512 || s.ContextLength > 8192 {
					t.Errorf("contextLength = %d, want in [512, 8192]", s.ContextLength)
				}
				if s.CostUsd <= 0 {
					t.Errorf("costUsd = %v, want > 0", s.CostUsd)
				}
			}
		})
	}
}

func TestGenerateMLSample_F1IsExactHarmonicMean(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, flags := range []StressFlags{{}, {Drift: true}} {
		for i := 0; i < 1000; i++ {
			s := GenerateMLSample(rng, flags, testTime)
			want := 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
			if s.F1 != want {
				t.Fatalf("f1 = %v, want exactly %v (p=%v r=%v)", s.F1, want, s.Precision, s.Recall)
			}
		}
	}
}

func TestGenerateLLMSample_CostIsTokensTimesRate(t *testing.T) {
	tests := []struct {
		name  string
		flags StressFlags
		rate  float64
	}{
		{"nominal", StressFlags{}, 0.025},
		{"cost stress", StressFlags{Cost: true}, 0.06},
		{"cost stress under attack", StressFlags{Cost: true, Safety: true}, 0.06},
		{"attack without cost stress", StressFlags{Hallucination: true}, 0.025},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(11))
			for i := 0; i < 500; i++ {
				s := GenerateLLMSample(rng, tt.flags, testTime)
				want := (float64(s.TokenUsage) / 1000) * tt.rate
				if s.CostUsd != want {
					t.Fatalf("costUsd = %v, want exactly %v (tokens=%d)", s.CostUsd, want, s.TokenUsage)
				}
			}
		})
	}
}

func TestGenerateMLSample_NominalFlags_NeverHighRisk(t *testing.T) {
	// GIVEN nominal flags
	rng := rand.New(rand.NewSource(2024))

	// WHEN generating 1000 samples
	for i := 0; i < 1000; i++ {
		s := GenerateMLSample(rng, StressFlags{}, testTime)

		// THEN drift stays in the nominal band and the ladder never reports High Risk
		inRange(t, "driftScore", s.DriftScore, 0.08, 0.20)
		if got := ClassifyML(s); got.Label == "High Risk" {
			t.Fatalf("sample %d classified High Risk: %+v", i, s)
		}
	}
}

func TestGenerateMLSample_DriftFlag_ShiftsDriftBand(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 1000; i++ {
		s := GenerateMLSample(rng, StressFlags{Drift: true}, testTime)
		inRange(t, "driftScore", s.DriftScore, 0.45, 0.85)
	}
}

func TestGenerateMLSample_DriftFlag_DegradesMeanAccuracy(t *testing.T) {
	rngN := rand.New(rand.NewSource(3))
	rngD := rand.New(rand.NewSource(3))
	var nominal, drifted float64
	const n = 2000
	for i := 0; i < n; i++ {
		nominal += GenerateMLSample(rngN, StressFlags{}, testTime).Accuracy
		drifted += GenerateMLSample(rngD, StressFlags{Drift: true}, testTime).Accuracy
	}
	assert.InDelta(t, 0.926, nominal/n, 0.005, "nominal mean accuracy")
	assert.InDelta(t, 0.77, drifted/n, 0.01, "drifted mean accuracy")
}

func TestGenerateLLMSample_SafetyFlagCoupling(t *testing.T) {
	t.Run("safety stress always flags", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 500; i++ {
			if !GenerateLLMSample(rng, StressFlags{Safety: true}, testTime).SafetyFlag {
				t.Fatal("safety stress produced an unflagged sample")
			}
		}
	})

	t.Run("no attack never flags", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 500; i++ {
			if GenerateLLMSample(rng, StressFlags{Cost: true, Drift: true}, testTime).SafetyFlag {
				t.Fatal("non-attack sample was flagged unsafe")
			}
		}
	})

	t.Run("hallucination attack flags at roughly the hallucination rate", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		const n = 5000
		flagged := 0
		rateSum := 0.0
		for i := 0; i < n; i++ {
			s := GenerateLLMSample(rng, StressFlags{Hallucination: true}, testTime)
			inRange(t, "hallucinationRate", s.HallucinationRate, 0.22, 0.47)
			rateSum += s.HallucinationRate
			if s.SafetyFlag {
				flagged++
			}
		}
		assert.InDelta(t, rateSum/n, float64(flagged)/n, 0.03,
			"flag frequency should track mean hallucination rate")
	})
}

func TestGenerateLLMSample_Timestamp_IsGenerationTime(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := GenerateLLMSample(rng, StressFlags{}, testTime)
	m := GenerateMLSample(rng, StressFlags{}, testTime)
	assert.True(t, s.Timestamp.Equal(testTime))
	assert.True(t, m.Timestamp.Equal(testTime))
}

func TestHarmonicMean_ZeroDenominator_Panics(t *testing.T) {
	assert.Panics(t, func() { harmonicMean(0, 0) })
	assert.Equal(t, 0.5, harmonicMean(0.5, 0.5))
}

func TestTokenRate(t *testing.T) {
	assert.Equal(t, 0.06, TokenRate(true))
	assert.Equal(t, 0.025, TokenRate(false))
	assert.InDelta(t, 0.0105, TokenCost(420, false), 1e-12)
}

func TestStressFlags_GetSet(t *testing.T) {
	f, ok := StressFlags{}.Set("Drift", true)
	assert.True(t, ok)
	assert.True(t, f.Drift)
	assert.True(t, f.Any())

	v, ok := f.Get(FlagDrift)
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = f.Set("latency", true)
	assert.False(t, ok)
	_, ok = f.Get("latency")
	assert.False(t, ok)

	assert.Len(t, AllFlagCombinations(), 16)
	assert.False(t, StressFlags{}.Any())
}
