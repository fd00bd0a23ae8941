// Package testutil provides shared test infrastructure for the sim packages:
// the golden scenario dataset and float assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one hand-computed scenario. ML and LLM hold samples in
// their JSON wire form so this package stays free of sim imports.
type GoldenTestCase struct {
	Name     string          `json:"name"`
	ML       json.RawMessage `json:"ml"`
	LLM      json.RawMessage `json:"llm"`
	Expected GoldenExpected  `json:"expected"`
}

// GoldenExpected holds the derived values every scenario must reproduce.
type GoldenExpected struct {
	// Exact match
	RiskScore  int      `json:"risk_score"`
	RiskTier   string   `json:"risk_tier"`
	MLStatus   string   `json:"ml_status"`
	LLMStatus  string   `json:"llm_status"`
	AlertKinds []string `json:"alert_kinds"`
	Findings   []string `json:"findings"`

	// Floating point, compared with relative tolerance
	HealthScore        float64 `json:"health_score"`
	HealthLevel        string  `json:"health_level"`
	ProjectedDailyCost float64 `json:"projected_daily_cost"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	if len(dataset.Tests) == 0 {
		t.Fatal("Golden dataset has no test cases")
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
