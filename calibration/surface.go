package calibration

import (
	"fmt"
	"math"
	"sort"

	"github.com/banachtech/quantmc/mc"
	"gonum.org/v1/gonum/interp"
)

// SmileSlice is the quoted smile at a single maturity.
type SmileSlice struct {
	Maturity float64
	Strikes  []float64
	Vols     []float64
}

// SurfaceFunc maps (maturity, strike) to an implied volatility. Queries at
// non-positive maturity return NaN.
type SurfaceFunc func(maturity, strike float64) float64

type varianceSlice struct {
	maturity float64
	kLo, kHi float64
	w        interp.FritschButland
}

func (s *varianceSlice) at(logMoneyness float64) float64 {
	return s.w.Predict(clamp(logMoneyness, s.kLo, s.kHi))
}

// SurfaceTotalVariance builds vol(T, K) from per-maturity smiles by fitting
// total variance w(k) = vol(k)^2 * T on log-moneyness k = log(K/F(T)) with a
// shape-preserving cubic per slice, then interpolating w linearly between
// the bracketing maturities. Interpolating in total variance rather than in
// vol keeps short-dated queries stable. Outside the quoted maturity range
// the nearest slice is used flat.
func SurfaceTotalVariance(slices []SmileSlice, spot, rate, div float64) (SurfaceFunc, error) {
	if len(slices) < 2 {
		return nil, fmt.Errorf("%w: need at least two maturities, got %d", mc.ErrInsufficientSamples, len(slices))
	}
	if spot <= 0 {
		return nil, fmt.Errorf("%w: S0 must be > 0", mc.ErrInvalidInput)
	}

	fitted := make([]*varianceSlice, 0, len(slices))
	for _, s := range slices {
		if s.Maturity <= 0 {
			return nil, fmt.Errorf("%w: slice maturity must be > 0", mc.ErrInvalidInput)
		}
		xs, ys, err := sortedNodes(s.Strikes, s.Vols)
		if err != nil {
			return nil, fmt.Errorf("slice T=%v: %w", s.Maturity, err)
		}
		fw := forward(spot, rate, div, s.Maturity)
		ks := make([]float64, len(xs))
		ws := make([]float64, len(xs))
		for i := range xs {
			ks[i] = math.Log(xs[i] / fw)
			ws[i] = ys[i] * ys[i] * s.Maturity
		}
		vs := &varianceSlice{maturity: s.Maturity, kLo: ks[0], kHi: ks[len(ks)-1]}
		if err := vs.w.Fit(ks, ws); err != nil {
			return nil, fmt.Errorf("%w: %v", mc.ErrInvalidInput, err)
		}
		fitted = append(fitted, vs)
	}
	sort.Slice(fitted, func(a, b int) bool { return fitted[a].maturity < fitted[b].maturity })

	return func(maturity, strike float64) float64 {
		if maturity <= 0 || strike <= 0 {
			return math.NaN()
		}
		k := math.Log(strike / forward(spot, rate, div, maturity))

		var w float64
		first, last := fitted[0], fitted[len(fitted)-1]
		switch {
		case maturity <= first.maturity:
			w = first.at(k)
		case maturity >= last.maturity:
			w = last.at(k)
		default:
			j := sort.Search(len(fitted), func(i int) bool { return fitted[i].maturity >= maturity })
			lo, hi := fitted[j-1], fitted[j]
			lam := (maturity - lo.maturity) / (hi.maturity - lo.maturity)
			w = (1.0-lam)*lo.at(k) + lam*hi.at(k)
		}
		return math.Sqrt(math.Max(w, 0.0) / maturity)
	}, nil
}

func forward(spot, rate, div, maturity float64) float64 {
	return spot * math.Exp((rate-div)*maturity)
}
