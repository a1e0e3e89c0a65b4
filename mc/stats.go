package mc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Estimate summarises a Monte Carlo sample: mean, sample standard deviation
// and a two-sided normal-approximation confidence interval.
type Estimate struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	SD     float64 `json:"sd"`
	SE     float64 `json:"se"`
	Alpha  float64 `json:"alpha"`
	CILow  float64 `json:"ci_low"`
	CIHigh float64 `json:"ci_high"`
}

// MeanCI computes an Estimate at confidence level 1-alpha. The normal
// approximation is standard at Monte Carlo sample sizes.
func MeanCI(samples []float64, alpha float64) (Estimate, error) {
	n := len(samples)
	if n < 2 {
		return Estimate{}, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInsufficientSamples, n)
	}
	if alpha <= 0 || alpha >= 1 {
		return Estimate{}, fmt.Errorf("%w: alpha must be in (0,1), got %v", ErrInvalidInput, alpha)
	}

	mu := stat.Mean(samples, nil)
	sd := stat.StdDev(samples, nil)
	se := sd / math.Sqrt(float64(n))
	z := distuv.Normal{Mu: 0.0, Sigma: 1.0}.Quantile(1.0 - alpha/2.0)

	return Estimate{
		N:      n,
		Mean:   mu,
		SD:     sd,
		SE:     se,
		Alpha:  alpha,
		CILow:  mu - z*se,
		CIHigh: mu + z*se,
	}, nil
}
