package mc

import (
	"testing"

	"github.com/banachtech/quantmc/util"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func basketScenario() BasketSpec {
	return BasketSpec{
		Spot:    []float64{100, 95, 105},
		Weights: []float64{0.5, 0.3, 0.2},
		Vol:     []float64{0.2, 0.25, 0.18},
		Corr: [][]float64{
			{1.0, 0.5, 0.3},
			{0.5, 1.0, 0.4},
			{0.3, 0.4, 1.0},
		},
		Strike:   100,
		Rate:     0.02,
		Maturity: 1,
		Paths:    30000,
		Sampler:  SamplerConfig{Method: Plain, Antithetic: true, Seed: 321},
		Alpha:    0.05,
	}
}

func TestPriceBasketDeterministic(t *testing.T) {
	spec := basketScenario()
	spec.UseControlVariate = true

	a, err := PriceBasket(spec)
	require.NoError(t, err)
	b, err := PriceBasket(spec)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestPriceBasketControlVariates(t *testing.T) {
	spec := basketScenario()
	spec.UseControlVariate = true
	spec.UseExtraControl = true

	res, err := PriceBasket(spec)
	require.NoError(t, err)
	require.Equal(t, 30000, res.Baseline.N)
	require.NotNil(t, res.ControlVariate)

	cv := res.ControlVariate
	require.Equal(t, []string{"geom_basket_call", "disc_linear_basket"}, cv.Controls)
	require.Len(t, cv.Beta, 2)
	require.Less(t, cv.Adjusted.SD, 0.9*res.Baseline.SD)
	require.Greater(t, cv.ReductionFactor, 1.0)
}

func TestPriceBasketLegacyLHSToggle(t *testing.T) {
	spec := basketScenario()
	spec.LatinHypercube = true

	res, err := PriceBasket(spec)
	require.NoError(t, err)
	require.Equal(t, LatinHypercube, res.Method)

	// The toggle and the explicit selector must agree draw for draw.
	explicit := basketScenario()
	explicit.Sampler.Method = LatinHypercube
	res2, err := PriceBasket(explicit)
	require.NoError(t, err)
	require.Equal(t, res, res2)
}

func TestPriceBasketDimensionChecks(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*BasketSpec)
		wantErr error
	}{
		{
			name:    "VOL_COUNT",
			mutate:  func(s *BasketSpec) { s.Vol = []float64{0.2, 0.25} },
			wantErr: ErrDimensionMismatch,
		},
		{
			name:    "WEIGHT_COUNT",
			mutate:  func(s *BasketSpec) { s.Weights = []float64{0.5, 0.5} },
			wantErr: ErrDimensionMismatch,
		},
		{
			name:    "CORR_ROWS",
			mutate:  func(s *BasketSpec) { s.Corr = s.Corr[:2] },
			wantErr: ErrDimensionMismatch,
		},
		{
			name:    "CORR_RAGGED",
			mutate:  func(s *BasketSpec) { s.Corr[1] = []float64{0.5, 1.0} },
			wantErr: ErrDimensionMismatch,
		},
		{
			name:    "EMPTY",
			mutate:  func(s *BasketSpec) { s.Spot = nil },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "FEW_PATHS",
			mutate:  func(s *BasketSpec) { s.Paths = 100 },
			wantErr: ErrInvalidInput,
		},
		{
			name: "NOT_POSITIVE_DEFINITE",
			mutate: func(s *BasketSpec) {
				s.Corr = [][]float64{
					{1.0, 0.99, -0.99},
					{0.99, 1.0, 0.99},
					{-0.99, 0.99, 1.0},
				}
			},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			spec := basketScenario()
			tc.mutate(&spec)
			_, err := PriceBasket(spec)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPriceBasketRandomisedInputs(t *testing.T) {
	// Any valid random basket must price to a positive value bracketed by
	// its own confidence interval, with the geometric closed form below the
	// arithmetic estimate.
	for seed := uint64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		const d = 3
		m := util.RandomMarket(seed)
		weights := util.RandomWeights(rng, d)
		corr := util.RandomCorrMatrix(seed, d)
		spot := make([]float64, d)
		vol := make([]float64, d)
		for j := 0; j < d; j++ {
			spot[j] = util.RandomFloat(rng, 80, 120)
			vol[j] = util.RandomFloat(rng, 0.1, 0.4)
		}

		spec := BasketSpec{
			Spot:              spot,
			Weights:           weights,
			Vol:               vol,
			Corr:              corr,
			Strike:            m.Strike,
			Rate:              m.Rate,
			Maturity:          m.Maturity,
			Paths:             10000,
			Sampler:           SamplerConfig{Method: Plain, Antithetic: true, Seed: seed},
			UseControlVariate: true,
			Alpha:             0.05,
		}
		res, err := PriceBasket(spec)
		require.NoError(t, err, "seed %d", seed)
		require.GreaterOrEqual(t, res.Baseline.Mean, 0.0)
		require.LessOrEqual(t, res.Baseline.CILow, res.Baseline.Mean)
		require.GreaterOrEqual(t, res.Baseline.CIHigh, res.Baseline.Mean)

		geo, err := GeometricBasketCall(spot, weights, m.Strike, m.Rate, m.Maturity, vol, corr)
		require.NoError(t, err)
		require.LessOrEqual(t, geo, res.Baseline.Mean+4*res.Baseline.SE+1e-9, "seed %d", seed)
	}
}

func TestGeometricBasketCall(t *testing.T) {
	// A one-asset basket with unit weight collapses to a call on that asset,
	// which the single-date geometric Asian closed form also prices.
	got, err := GeometricBasketCall([]float64{100}, []float64{1}, 100, 0.05, 1, []float64{0.2}, [][]float64{{1}})
	require.NoError(t, err)
	want, err := GeometricAsianCall(100, 100, 0.05, 1, 0.2, 1)
	require.NoError(t, err)
	require.InDelta(t, want, got, 1e-12)

	// Positive correlation raises basket variance and so the price.
	lo, err := GeometricBasketCall(
		[]float64{100, 100}, []float64{0.5, 0.5}, 100, 0.02, 1,
		[]float64{0.2, 0.2}, [][]float64{{1, 0.1}, {0.1, 1}})
	require.NoError(t, err)
	hi, err := GeometricBasketCall(
		[]float64{100, 100}, []float64{0.5, 0.5}, 100, 0.02, 1,
		[]float64{0.2, 0.2}, [][]float64{{1, 0.9}, {0.9, 1}})
	require.NoError(t, err)
	require.Greater(t, hi, lo)

	_, err = GeometricBasketCall([]float64{100, 100}, []float64{1}, 100, 0.02, 1, []float64{0.2, 0.2}, [][]float64{{1, 0}, {0, 1}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}
