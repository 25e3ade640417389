package simulate

const (
	splitMix64Golden = 0x9E3779B97F4A7C15
	splitMix64MulA   = 0xBF58476D1CE4E5B9
	splitMix64MulB   = 0x94D049BB133111EB
)

// splitMix64Output applies SplitMix64's avalanche/finalizer step to a raw
// state value, producing one pseudo-random 64-bit output.
func splitMix64Output(state uint64) uint64 {
	z := state
	z = (z ^ (z >> 30)) * splitMix64MulA
	z = (z ^ (z >> 27)) * splitMix64MulB
	return z ^ (z >> 31)
}

// deriveTrialSeed computes the PRNG seed for global trial index i as a
// pure function of (masterSeed, i), independent of how trials are
// partitioned across workers. SplitMix64's state advance is state +=
// golden constant per step, so the i-th state is masterSeed plus i+1
// golden-constant increments; computing it directly (rather than
// iterating a stream) means trial i always draws the same seed whether
// it runs on worker 0 under W=1 or on worker 7 under W=8 — the per-trial
// samples are invariant to the worker count. The duration statistics,
// percentiles and criticality counts derived from them are identical for
// any W; the per-task moment sums (Σd_i, Σd_i², ΣD·d_i) are added per
// worker and then merged, so correlation and impact scores can differ
// between worker counts in the last floating-point bits.
func deriveTrialSeed(masterSeed uint64, trialIndex int) uint64 {
	state := masterSeed + uint64(trialIndex+1)*splitMix64Golden
	return splitMix64Output(state)
}
