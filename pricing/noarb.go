package pricing

import (
	"math"
)

// Bounds is a closed no-arbitrage price interval.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// NoArbCallBounds returns the model-free bounds for a European call:
// max(S0 - K*df, 0) <= C <= S0.
func NoArbCallBounds(spot, strike, rate, maturity float64) (Bounds, error) {
	if err := validateNoArb(spot, strike, maturity); err != nil {
		return Bounds{}, err
	}
	df := math.Exp(-rate * maturity)
	return Bounds{Lower: math.Max(spot-strike*df, 0.0), Upper: spot}, nil
}

// NoArbPutBounds returns the model-free bounds for a European put:
// max(K*df - S0, 0) <= P <= K*df.
func NoArbPutBounds(spot, strike, rate, maturity float64) (Bounds, error) {
	if err := validateNoArb(spot, strike, maturity); err != nil {
		return Bounds{}, err
	}
	df := math.Exp(-rate * maturity)
	return Bounds{Lower: math.Max(strike*df-spot, 0.0), Upper: strike * df}, nil
}

// Contains reports whether price lies inside the interval.
func (b Bounds) Contains(price float64) bool {
	return price >= b.Lower && price <= b.Upper
}

// ParityResidual is C - P - (S0 - K*df). Zero for quotes consistent with
// European put-call parity; the sign points at the rich leg.
func ParityResidual(call, put, spot, strike, rate, maturity float64) (float64, error) {
	if err := validateNoArb(spot, strike, maturity); err != nil {
		return 0, err
	}
	df := math.Exp(-rate * maturity)
	return call - put - (spot - strike*df), nil
}

func validateNoArb(spot, strike, maturity float64) error {
	// Vol plays no part in model-free bounds; reuse the price checks with a
	// placeholder.
	return validateBS(spot, strike, 0, maturity, 1)
}
