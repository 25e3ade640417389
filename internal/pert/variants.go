package pert

import (
	"math"
	"math/rand"
)

// Uniform samples a duration uniformly in [O, P], ignoring M. Not wired
// to any CLI flag; exercised directly in tests as an alternate estimation
// family behind the same Distribution interface.
type Uniform struct {
	O, P float64
}

func (u Uniform) Sample(rng *rand.Rand) float64 {
	if u.P <= u.O {
		return u.O
	}
	return u.O + rng.Float64()*(u.P-u.O)
}

// Triangular samples from the triangular distribution with mode M on
// [O, P].
type Triangular struct {
	O, M, P float64
}

func (t Triangular) Sample(rng *rand.Rand) float64 {
	if t.P <= t.O {
		return t.O
	}
	u := rng.Float64()
	fc := 0.0
	if t.P != t.O {
		fc = (t.M - t.O) / (t.P - t.O)
	}
	if u < fc {
		return t.O + math.Sqrt(u*(t.P-t.O)*(t.M-t.O))
	}
	return t.P - math.Sqrt((1-u)*(t.P-t.O)*(t.P-t.M))
}
