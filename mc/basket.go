package mc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// BasketSpec parameterises a European call on a weighted basket of d assets
// under single-period correlated GBM.
//
// LatinHypercube is a legacy toggle kept for callers predating the unified
// method selector; when set it forces Sampler.Method to lhs.
type BasketSpec struct {
	Spot     []float64
	Weights  []float64
	Vol      []float64
	Corr     [][]float64
	Strike   float64
	Rate     float64
	Maturity float64
	Paths    int

	Sampler           SamplerConfig
	LatinHypercube    bool
	UseControlVariate bool
	UseExtraControl   bool
	Alpha             float64
}

// normalize resolves the legacy toggle before any validation runs.
func (s *BasketSpec) normalize() {
	if s.LatinHypercube {
		s.Sampler.Method = LatinHypercube
	}
	if s.Sampler.Method == "" {
		s.Sampler.Method = Plain
	}
}

func (s *BasketSpec) validate() error {
	d := len(s.Spot)
	if d == 0 {
		return fmt.Errorf("%w: empty basket", ErrInvalidInput)
	}
	if len(s.Weights) != d || len(s.Vol) != d {
		return fmt.Errorf("%w: S0 has %d assets, w has %d, vol has %d", ErrDimensionMismatch, d, len(s.Weights), len(s.Vol))
	}
	if len(s.Corr) != d {
		return fmt.Errorf("%w: corr has %d rows, want %d", ErrDimensionMismatch, len(s.Corr), d)
	}
	for i := range s.Corr {
		if len(s.Corr[i]) != d {
			return fmt.Errorf("%w: corr row %d has %d columns, want %d", ErrDimensionMismatch, i, len(s.Corr[i]), d)
		}
	}
	if s.Paths < MinPaths {
		return fmt.Errorf("%w: n_paths must be >= %d for a stable CI", ErrInvalidInput, MinPaths)
	}
	if s.Maturity <= 0 {
		return fmt.Errorf("%w: T must be > 0", ErrInvalidInput)
	}
	if s.Strike <= 0 {
		return fmt.Errorf("%w: K must be > 0", ErrInvalidInput)
	}
	for i := 0; i < d; i++ {
		if s.Spot[i] <= 0 || s.Vol[i] <= 0 {
			return fmt.Errorf("%w: spot and vol entries must be > 0", ErrInvalidInput)
		}
	}
	return nil
}

func corrDense(corr [][]float64) *mat.Dense {
	d := len(corr)
	m := mat.NewDense(d, d, nil)
	for i := range corr {
		m.SetRow(i, corr[i])
	}
	return m
}

// PriceBasket prices a basket call with Monte Carlo over correlated terminal
// prices. Controls: the discounted geometric-basket payoff against its
// closed form, and with UseExtraControl the discounted linear basket against
// the discounted basket forward.
func PriceBasket(spec BasketSpec) (*Result, error) {
	spec.normalize()
	if err := spec.validate(); err != nil {
		return nil, err
	}
	d := len(spec.Spot)

	z, err := CorrelatedNormals(spec.Paths, corrDense(spec.Corr), spec.Sampler)
	if err != nil {
		return nil, err
	}
	nEff, _ := z.Dims()

	df := math.Exp(-spec.Rate * spec.Maturity)
	sqT := math.Sqrt(spec.Maturity)
	drift := make([]float64, d)
	for j := 0; j < d; j++ {
		drift[j] = (spec.Rate - 0.5*spec.Vol[j]*spec.Vol[j]) * spec.Maturity
	}

	payoff := make([]float64, nEff)
	geo := make([]float64, nEff)
	lin := make([]float64, nEff)
	for i := 0; i < nEff; i++ {
		basket := 0.0
		logGeo := 0.0
		for j := 0; j < d; j++ {
			logS := math.Log(spec.Spot[j]) + drift[j] + spec.Vol[j]*sqT*z.At(i, j)
			basket += spec.Weights[j] * math.Exp(logS)
			logGeo += spec.Weights[j] * logS
		}
		payoff[i] = df * math.Max(basket-spec.Strike, 0.0)
		geo[i] = df * math.Max(math.Exp(logGeo)-spec.Strike, 0.0)
		lin[i] = df * basket
	}

	baseline, err := MeanCI(payoff, spec.Alpha)
	if err != nil {
		return nil, err
	}
	out := &Result{Method: spec.Sampler.Method, Antithetic: spec.Sampler.Antithetic, Baseline: baseline}
	if !spec.UseControlVariate {
		return out, nil
	}

	geoMean, err := GeometricBasketCall(spec.Spot, spec.Weights, spec.Strike, spec.Rate, spec.Maturity, spec.Vol, spec.Corr)
	if err != nil {
		return nil, err
	}
	controls := [][]float64{geo}
	means := []float64{geoMean}
	names := []string{"geom_basket_call"}
	if spec.UseExtraControl {
		forward := floats.Dot(spec.Weights, spec.Spot) * math.Exp(spec.Rate*spec.Maturity)
		controls = append(controls, lin)
		means = append(means, df*forward)
		names = append(names, "disc_linear_basket")
	}

	vr, err := AdjustWithControls(payoff, controls, means, DefaultRidge)
	if err != nil {
		return nil, err
	}
	adjusted, err := MeanCI(vr.Adjusted, spec.Alpha)
	if err != nil {
		return nil, err
	}
	out.ControlVariate = &ControlVariateReport{
		Controls:        names,
		Beta:            vr.Beta,
		ReductionFactor: vr.ReductionFactor,
		Adjusted:        adjusted,
	}
	return out, nil
}

// GeometricBasketCall prices a call on the weighted geometric mean of the
// terminal prices in closed form: log G is normal under correlated GBM, with
// a drift correction aggregating the per-asset Ito terms through the
// weights. Weights are treated as lognormal exponents and are not required
// to sum to one; callers wanting a true geometric mean should normalise.
func GeometricBasketCall(spot, weights []float64, strike, rate, maturity float64, vol []float64, corr [][]float64) (float64, error) {
	d := len(spot)
	if d == 0 {
		return 0, fmt.Errorf("%w: empty basket", ErrInvalidInput)
	}
	if len(weights) != d || len(vol) != d || len(corr) != d {
		return 0, fmt.Errorf("%w: S0/w/vol/corr disagree on asset count", ErrDimensionMismatch)
	}
	for i := range corr {
		if len(corr[i]) != d {
			return 0, fmt.Errorf("%w: corr row %d has %d columns, want %d", ErrDimensionMismatch, i, len(corr[i]), d)
		}
	}
	if strike <= 0 || maturity <= 0 {
		return 0, fmt.Errorf("%w: K and T must be > 0", ErrInvalidInput)
	}

	sumWV2 := 0.0
	meanLog := 0.0
	for j := 0; j < d; j++ {
		wv := weights[j] * vol[j]
		sumWV2 += wv * wv
		meanLog += weights[j] * math.Log(spot[j])
	}
	meanLog += (rate - 0.5*sumWV2) * maturity

	varLog := 0.0
	for a := 0; a < d; a++ {
		for b := 0; b < d; b++ {
			varLog += weights[a] * weights[b] * vol[a] * vol[b] * corr[a][b]
		}
	}
	varLog *= maturity

	df := math.Exp(-rate * maturity)
	return df * lognormalCall(meanLog, varLog, strike), nil
}
