package sim

// Level is the traffic-light severity of a panel status.
type Level string

const (
	LevelStable  Level = "stable"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// Status is a labelled panel state such as "High Risk"/danger.
type Status struct {
	Label string `json:"label"`
	Level Level  `json:"level"`
}

// InitializingStatus is reported before the first sample exists.
var InitializingStatus = Status{Label: "Initializing", Level: LevelStable}

// statusRule is one rung of a first-match-wins ladder.
type statusRule[T any] struct {
	match  func(T) bool
	status Status
}

// mlStatusLadder is evaluated top to bottom; order encodes priority.
var mlStatusLadder = []statusRule[MLSample]{
	{
		match:  func(m MLSample) bool { return m.DriftScore > 0.45 },
		status: Status{Label: "High Risk", Level: LevelDanger},
	},
	{
		match:  func(m MLSample) bool { return m.DriftScore > 0.25 || m.Accuracy < 0.82 },
		status: Status{Label: "Warning", Level: LevelWarning},
	},
}

var mlStable = Status{Label: "Stable", Level: LevelStable}

// llmStatusLadder is evaluated top to bottom; order encodes priority.
var llmStatusLadder = []statusRule[LLMSample]{
	{
		match:  func(m LLMSample) bool { return m.SafetyFlag || m.HallucinationRate > 0.20 },
		status: Status{Label: "Unsafe", Level: LevelDanger},
	},
	{
		match:  func(m LLMSample) bool { return m.LatencyMs > 2000 || m.HallucinationRate > 0.10 },
		status: Status{Label: "Degraded", Level: LevelWarning},
	},
}

var llmSafe = Status{Label: "Safe", Level: LevelStable}

func classify[T any](ladder []statusRule[T], v T, fallback Status) Status {
	for _, rule := range ladder {
		if rule.match(v) {
			return rule.status
		}
	}
	return fallback
}

// ClassifyML returns the ML panel status for a sample.
func ClassifyML(m MLSample) Status {
	return classify(mlStatusLadder, m, mlStable)
}

// ClassifyLLM returns the LLM panel status for a sample.
func ClassifyLLM(m LLMSample) Status {
	return classify(llmStatusLadder, m, llmSafe)
}
