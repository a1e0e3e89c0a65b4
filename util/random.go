// Package util holds small helpers shared by the test suites.
package util

import (
	"golang.org/x/exp/rand"
)

// Market is a randomly drawn but sane set of option parameters.
type Market struct {
	Spot     float64
	Strike   float64
	Rate     float64
	Maturity float64
	Vol      float64
}

// RandomFloat generates a uniform draw on [min, max).
func RandomFloat(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// RandomMarket generates parameters well inside the region where every
// pricer is defined, so property tests never trip validation.
func RandomMarket(seed uint64) Market {
	rng := rand.New(rand.NewSource(seed))
	spot := RandomFloat(rng, 50, 150)
	return Market{
		Spot:     spot,
		Strike:   RandomFloat(rng, 0.7, 1.3) * spot,
		Rate:     RandomFloat(rng, 0.0, 0.08),
		Maturity: RandomFloat(rng, 0.1, 3.0),
		Vol:      RandomFloat(rng, 0.08, 0.6),
	}
}

// RandomCorrMatrix generates a valid d-asset correlation matrix by scaling
// a single off-diagonal level rho into [0, 1/(d-1)) so it stays positive
// definite.
func RandomCorrMatrix(seed uint64, d int) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	rho := 0.0
	if d > 1 {
		rho = RandomFloat(rng, 0, 0.95/float64(d-1))
	}
	corr := make([][]float64, d)
	for i := range corr {
		corr[i] = make([]float64, d)
		for j := range corr[i] {
			if i == j {
				corr[i][j] = 1
			} else {
				corr[i][j] = rho
			}
		}
	}
	return corr
}

// RandomWeights generates d positive weights summing to one.
func RandomWeights(rng *rand.Rand, d int) []float64 {
	w := make([]float64, d)
	total := 0.0
	for i := range w {
		w[i] = RandomFloat(rng, 0.1, 1.0)
		total += w[i]
	}
	for i := range w {
		w[i] /= total
	}
	return w
}
