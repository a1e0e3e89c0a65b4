// Package calibration turns observed option prices into implied-volatility
// smiles and a simple surface. The fits are deliberately plain: linear and
// shape-preserving cubic interpolation only, stable primitives that can be
// upgraded to full arbitrage-free fitting without changing call sites.
package calibration

import (
	"fmt"
	"sort"

	"github.com/banachtech/quantmc/mc"
	"github.com/banachtech/quantmc/pricing"
	"gonum.org/v1/gonum/interp"
)

// Implied vols are clamped to this range to keep the interpolators
// well-behaved on noisy quotes.
const (
	VolClampLow  = 1e-6
	VolClampHigh = 5.0
)

// SmileFunc maps a strike to an implied volatility.
type SmileFunc func(strike float64) float64

// ImpliedVolsFromPrices inverts each quote by bisection and clamps the
// result. strikes and prices must have equal length.
func ImpliedVolsFromPrices(strikes, prices []float64, spot, rate, maturity float64, isCall bool) ([]float64, error) {
	if len(strikes) != len(prices) {
		return nil, fmt.Errorf("%w: %d strikes but %d prices", mc.ErrDimensionMismatch, len(strikes), len(prices))
	}
	vols := make([]float64, len(strikes))
	for i := range strikes {
		v, err := pricing.ImpliedVol(prices[i], isCall, spot, strikes[i], rate, maturity)
		if err != nil {
			return nil, fmt.Errorf("strike %v: %w", strikes[i], err)
		}
		if v < VolClampLow {
			v = VolClampLow
		}
		if v > VolClampHigh {
			v = VolClampHigh
		}
		vols[i] = v
	}
	return vols, nil
}

// sortedNodes returns strikes and vols paired and sorted by strike,
// rejecting duplicates, which the interpolators cannot take.
func sortedNodes(strikes, vols []float64) ([]float64, []float64, error) {
	if len(strikes) != len(vols) {
		return nil, nil, fmt.Errorf("%w: %d strikes but %d vols", mc.ErrDimensionMismatch, len(strikes), len(vols))
	}
	if len(strikes) < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 nodes, got %d", mc.ErrInsufficientSamples, len(strikes))
	}
	idx := make([]int, len(strikes))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return strikes[idx[a]] < strikes[idx[b]] })

	xs := make([]float64, len(strikes))
	ys := make([]float64, len(strikes))
	for i, j := range idx {
		xs[i] = strikes[j]
		ys[i] = vols[j]
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] == xs[i-1] {
			return nil, nil, fmt.Errorf("%w: duplicate strike %v", mc.ErrInvalidInput, xs[i])
		}
	}
	return xs, ys, nil
}

// FitSmileLinear fits vol(K) by piecewise-linear interpolation with constant
// extrapolation beyond the quoted range.
func FitSmileLinear(strikes, vols []float64) (SmileFunc, error) {
	xs, ys, err := sortedNodes(strikes, vols)
	if err != nil {
		return nil, err
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("%w: %v", mc.ErrInvalidInput, err)
	}
	lo, hi := xs[0], xs[len(xs)-1]
	return func(strike float64) float64 {
		return pl.Predict(clamp(strike, lo, hi))
	}, nil
}

// FitSmilePCHIP fits vol(K) with the Fritsch-Butland shape-preserving cubic.
// Unlike generic splines it cannot oscillate between nodes, which matters
// when the smile is fed back into pricing.
func FitSmilePCHIP(strikes, vols []float64) (SmileFunc, error) {
	xs, ys, err := sortedNodes(strikes, vols)
	if err != nil {
		return nil, err
	}
	var fb interp.FritschButland
	if err := fb.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("%w: %v", mc.ErrInvalidInput, err)
	}
	lo, hi := xs[0], xs[len(xs)-1]
	return func(strike float64) float64 {
		return fb.Predict(clamp(strike, lo, hi))
	}, nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
