package sim

import "strings"

// StressFlags are the simulation toggles that bias the generators toward
// degraded output. Each flag is independent.
type StressFlags struct {
	Drift         bool `json:"triggerDrift" yaml:"drift"`
	Hallucination bool `json:"triggerHallucination" yaml:"hallucination"`
	Cost          bool `json:"triggerCost" yaml:"cost"`
	Safety        bool `json:"triggerSafety" yaml:"safety"`
}

// Flag names accepted by StressFlags.Set and the CLI/API toggles.
const (
	FlagDrift         = "drift"
	FlagHallucination = "hallucination"
	FlagCost          = "cost"
	FlagSafety        = "safety"
)

// FlagNames lists the stress flags in display order.
var FlagNames = []string{FlagDrift, FlagHallucination, FlagCost, FlagSafety}

// attack reports whether the LLM generator runs in adversarial mode.
func (f StressFlags) attack() bool {
	return f.Hallucination || f.Safety
}

// Any reports whether at least one stress flag is set.
func (f StressFlags) Any() bool {
	return f.Drift || f.Hallucination || f.Cost || f.Safety
}

// Get returns the named flag. ok is false for unknown names.
func (f StressFlags) Get(name string) (value bool, ok bool) {
	switch strings.ToLower(name) {
	case FlagDrift:
		return f.Drift, true
	case FlagHallucination:
		return f.Hallucination, true
	case FlagCost:
		return f.Cost, true
	case FlagSafety:
		return f.Safety, true
	}
	return false, false
}

// Set assigns the named flag and returns the updated flags.
// ok is false (and f is returned unchanged) for unknown names.
func (f StressFlags) Set(name string, value bool) (StressFlags, bool) {
	switch strings.ToLower(name) {
	case FlagDrift:
		f.Drift = value
	case FlagHallucination:
		f.Hallucination = value
	case FlagCost:
		f.Cost = value
	case FlagSafety:
		f.Safety = value
	default:
		return f, false
	}
	return f, true
}

// AllFlagCombinations enumerates all 16 StressFlags values.
func AllFlagCombinations() []StressFlags {
	out := make([]StressFlags, 0, 16)
	for mask := 0; mask < 16; mask++ {
		out = append(out, StressFlags{
			Drift:         mask&1 != 0,
			Hallucination: mask&2 != 0,
			Cost:          mask&4 != 0,
			Safety:        mask&8 != 0,
		})
	}
	return out
}
