package pricing

import (
	"fmt"
	"math"

	"github.com/banachtech/quantmc/mc"
	"gonum.org/v1/gonum/stat/distuv"
)

// Below this value of sigma*sqrt(T) the d1/d2 terms are ill-conditioned and
// the deterministic forward limit is returned instead.
const epsVolSqrtT = 1e-10

var stdNormal = distuv.Normal{Mu: 0.0, Sigma: 1.0}

func validateBS(spot, strike, rate, maturity, vol float64) error {
	if spot <= 0 {
		return fmt.Errorf("%w: S0 must be > 0", mc.ErrInvalidInput)
	}
	if strike <= 0 {
		return fmt.Errorf("%w: K must be > 0", mc.ErrInvalidInput)
	}
	if maturity <= 0 {
		return fmt.Errorf("%w: T must be > 0", mc.ErrInvalidInput)
	}
	if vol <= 0 {
		return fmt.Errorf("%w: sigma must be > 0", mc.ErrInvalidInput)
	}
	return nil
}

func d1d2(spot, strike, rate, maturity, vol float64) (float64, float64, float64) {
	vsqrt := vol * math.Sqrt(maturity)
	if vsqrt < epsVolSqrtT {
		return math.NaN(), math.NaN(), vsqrt
	}
	d1 := (math.Log(spot/strike) + (rate+0.5*vol*vol)*maturity) / vsqrt
	return d1, d1 - vsqrt, vsqrt
}

// BSCall prices a European call under Black-Scholes without dividends.
func BSCall(spot, strike, rate, maturity, vol float64) (float64, error) {
	if err := validateBS(spot, strike, rate, maturity, vol); err != nil {
		return 0, err
	}
	d1, d2, _ := d1d2(spot, strike, rate, maturity, vol)
	df := math.Exp(-rate * maturity)
	if math.IsNaN(d1) {
		return math.Max(spot-strike*df, 0.0), nil
	}
	return spot*stdNormal.CDF(d1) - strike*df*stdNormal.CDF(d2), nil
}

// BSPut prices a European put under Black-Scholes without dividends.
func BSPut(spot, strike, rate, maturity, vol float64) (float64, error) {
	if err := validateBS(spot, strike, rate, maturity, vol); err != nil {
		return 0, err
	}
	d1, d2, _ := d1d2(spot, strike, rate, maturity, vol)
	df := math.Exp(-rate * maturity)
	if math.IsNaN(d1) {
		return math.Max(strike*df-spot, 0.0), nil
	}
	return strike*df*stdNormal.CDF(-d2) - spot*stdNormal.CDF(-d1), nil
}

// Greeks holds call and put prices with first-order sensitivities.
type Greeks struct {
	Call      float64 `json:"call"`
	Put       float64 `json:"put"`
	DeltaCall float64 `json:"delta_call"`
	DeltaPut  float64 `json:"delta_put"`
	Gamma     float64 `json:"gamma"`
	Vega      float64 `json:"vega"`
	ThetaCall float64 `json:"theta_call"`
	ThetaPut  float64 `json:"theta_put"`
	RhoCall   float64 `json:"rho_call"`
	RhoPut    float64 `json:"rho_put"`
}

// BSGreeks computes Black-Scholes call/put prices and greeks. In the
// near-deterministic regime gamma and vega collapse to zero and theta/rho
// are reported as NaN.
func BSGreeks(spot, strike, rate, maturity, vol float64) (Greeks, error) {
	if err := validateBS(spot, strike, rate, maturity, vol); err != nil {
		return Greeks{}, err
	}
	d1, d2, _ := d1d2(spot, strike, rate, maturity, vol)
	df := math.Exp(-rate * maturity)
	sqT := math.Sqrt(maturity)

	if math.IsNaN(d1) {
		call := math.Max(spot-strike*df, 0.0)
		put := math.Max(strike*df-spot, 0.0)
		deltaCall := 0.0
		if call > 0 {
			deltaCall = 1.0
		}
		return Greeks{
			Call: call, Put: put,
			DeltaCall: deltaCall, DeltaPut: deltaCall - 1.0,
			ThetaCall: math.NaN(), ThetaPut: math.NaN(),
			RhoCall: math.NaN(), RhoPut: math.NaN(),
		}, nil
	}

	pdf := stdNormal.Prob(d1)
	cdf1 := stdNormal.CDF(d1)
	cdf2 := stdNormal.CDF(d2)

	return Greeks{
		Call:      spot*cdf1 - strike*df*cdf2,
		Put:       strike*df*stdNormal.CDF(-d2) - spot*stdNormal.CDF(-d1),
		DeltaCall: cdf1,
		DeltaPut:  cdf1 - 1.0,
		Gamma:     pdf / (spot * vol * sqT),
		Vega:      spot * pdf * sqT,
		ThetaCall: -(spot*pdf*vol)/(2.0*sqT) - rate*strike*df*cdf2,
		ThetaPut:  -(spot*pdf*vol)/(2.0*sqT) + rate*strike*df*stdNormal.CDF(-d2),
		RhoCall:   strike * maturity * df * cdf2,
		RhoPut:    -strike * maturity * df * stdNormal.CDF(-d2),
	}, nil
}

// ImpliedVol inverts the Black-Scholes price by bisection, expanding the
// upper bracket when needed. Bisection is slower than Newton but cannot blow
// up near zero vega.
func ImpliedVol(price float64, isCall bool, spot, strike, rate, maturity float64) (float64, error) {
	if price <= 0 {
		return 0, fmt.Errorf("%w: price must be > 0", mc.ErrInvalidInput)
	}
	if spot <= 0 || strike <= 0 || maturity <= 0 {
		return 0, fmt.Errorf("%w: S0, K and T must be > 0", mc.ErrInvalidInput)
	}

	const (
		tol     = 1e-10
		maxIter = 200
	)

	f := func(sigma float64) float64 {
		var p float64
		if isCall {
			p, _ = BSCall(spot, strike, rate, maturity, sigma)
		} else {
			p, _ = BSPut(spot, strike, rate, maturity, sigma)
		}
		return p - price
	}

	lo, hi := 1e-6, 5.0
	flo, fhi := f(lo), f(hi)
	for expand := 0; flo*fhi > 0 && hi < 50.0 && expand < 30; expand++ {
		hi *= 1.5
		fhi = f(hi)
	}
	if flo*fhi > 0 {
		return 0, fmt.Errorf("%w: implied vol not bracketed in [%g, %g], check price against no-arbitrage bounds", mc.ErrUnbracketedRoot, lo, hi)
	}

	for i := 0; i < maxIter; i++ {
		mid := 0.5 * (lo + hi)
		fmid := f(mid)
		if math.Abs(fmid) < tol || hi-lo < tol {
			return mid, nil
		}
		if flo*fmid <= 0 {
			hi = mid
		} else {
			lo = mid
			flo = fmid
		}
	}
	return 0.5 * (lo + hi), nil
}
