package calibration

import (
	"fmt"
	"math"

	"github.com/banachtech/quantmc/mc"
	"gonum.org/v1/gonum/optimize"
)

// SVIParams holds the raw parameterisation of an SVI total-variance slice
//
//	w(k) = a + b*(rho*(k-m) + sqrt((k-m)^2 + sigma^2))
//
// on log-moneyness k. Constraints b > 0, sigma > 0 and |rho| < 1 are kept by
// fitting in a transformed space.
type SVIParams struct {
	A, B, Rho, M, Sigma float64
}

// TotalVariance evaluates the slice at log-moneyness k.
func (p SVIParams) TotalVariance(k float64) float64 {
	d := k - p.M
	return p.A + p.B*(p.Rho*d+math.Sqrt(d*d+p.Sigma*p.Sigma))
}

// get maps the parameters to the unconstrained domain (-Inf, Inf).
func (p SVIParams) get() []float64 {
	return []float64{p.A, math.Log(p.B), math.Atanh(p.Rho), p.M, math.Log(p.Sigma)}
}

// set recovers parameters from the unconstrained domain.
func sviSet(x []float64) SVIParams {
	return SVIParams{
		A:     x[0],
		B:     math.Exp(x[1]),
		Rho:   math.Tanh(x[2]),
		M:     x[3],
		Sigma: math.Exp(x[4]),
	}
}

func sviMSE(x []float64, ks, ws []float64) float64 {
	p := sviSet(x)
	loss := 0.0
	for i := range ks {
		v := p.TotalVariance(ks[i])
		loss += (v - ws[i]) * (v - ws[i])
	}
	return loss / float64(len(ks))
}

// FitSVI calibrates an SVI slice to quoted implied vols at one maturity by
// Nelder-Mead on the mean squared total-variance error. It returns the raw
// parameters and the fitted smile on strike. With five free parameters the
// fit needs at least five distinct strikes.
func FitSVI(strikes, vols []float64, spot, rate, maturity float64) (SVIParams, SmileFunc, error) {
	if spot <= 0 || maturity <= 0 {
		return SVIParams{}, nil, fmt.Errorf("%w: S0 and T must be > 0", mc.ErrInvalidInput)
	}
	xs, ys, err := sortedNodes(strikes, vols)
	if err != nil {
		return SVIParams{}, nil, err
	}
	if len(xs) < 5 {
		return SVIParams{}, nil, fmt.Errorf("%w: SVI needs at least 5 strikes, got %d", mc.ErrInsufficientSamples, len(xs))
	}

	fw := forward(spot, rate, 0, maturity)
	ks := make([]float64, len(xs))
	ws := make([]float64, len(xs))
	meanW := 0.0
	for i := range xs {
		ks[i] = math.Log(xs[i] / fw)
		ws[i] = ys[i] * ys[i] * maturity
		meanW += ws[i]
	}
	meanW /= float64(len(ws))

	start := SVIParams{A: 0.5 * meanW, B: 0.1, Rho: 0.0, M: 0.0, Sigma: 0.1}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return sviMSE(x, ks, ws)
		},
	}
	res, err := optimize.Minimize(problem, start.get(), nil, &optimize.NelderMead{})
	if err != nil {
		return SVIParams{}, nil, fmt.Errorf("svi fit: %w", err)
	}
	fitted := sviSet(res.X)

	smile := func(strike float64) float64 {
		if strike <= 0 {
			return math.NaN()
		}
		k := math.Log(strike / fw)
		w := fitted.TotalVariance(k)
		return clamp(math.Sqrt(math.Max(w, 0)/maturity), VolClampLow, VolClampHigh)
	}
	return fitted, smile, nil
}
