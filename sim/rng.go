package sim

import (
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible sample sequence.
// Two monitors with the same SimulationKey and identical flag history
// MUST produce bit-for-bit identical samples.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Stream Constants ===

const (
	// StreamML is the RNG stream for ML samples.
	// Uses the master seed directly so `tick --seed n` matches the first
	// ML sample of `run --seed n`.
	StreamML = "ml"

	// StreamLLM is the RNG stream for LLM samples.
	StreamLLM = "llm"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per stream.
//
// Derivation formula:
//   - For StreamML: uses masterSeed directly
//   - For all other streams: masterSeed XOR fnv1a64(streamName)
//
// Streams are isolated: the extra safety draw made under attack never
// shifts the ML sequence.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key     SimulationKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:     key,
		streams: make(map[string]*rand.Rand),
	}
}

// ForStream returns a deterministically-seeded RNG for the named stream.
// The same stream name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForStream(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == StreamML {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.streams[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
