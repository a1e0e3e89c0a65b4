package pricing

import (
	"math"
	"testing"

	"github.com/banachtech/quantmc/mc"
	"github.com/banachtech/quantmc/util"
	"github.com/stretchr/testify/require"
)

func TestNoArbBoundsContainBSPrices(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		m := util.RandomMarket(seed)

		call, err := BSCall(m.Spot, m.Strike, m.Rate, m.Maturity, m.Vol)
		require.NoError(t, err)
		cb, err := NoArbCallBounds(m.Spot, m.Strike, m.Rate, m.Maturity)
		require.NoError(t, err)
		require.True(t, cb.Contains(call), "call outside bounds for seed %d", seed)

		put, err := BSPut(m.Spot, m.Strike, m.Rate, m.Maturity, m.Vol)
		require.NoError(t, err)
		pb, err := NoArbPutBounds(m.Spot, m.Strike, m.Rate, m.Maturity)
		require.NoError(t, err)
		require.True(t, pb.Contains(put), "put outside bounds for seed %d", seed)
	}
}

func TestNoArbBoundsKnownValues(t *testing.T) {
	cb, err := NoArbCallBounds(100, 100, 0.05, 1)
	require.NoError(t, err)
	df := math.Exp(-0.05)
	require.InDelta(t, 100-100*df, cb.Lower, 1e-12)
	require.InDelta(t, 100.0, cb.Upper, 1e-12)

	pb, err := NoArbPutBounds(80, 100, 0.05, 1)
	require.NoError(t, err)
	require.InDelta(t, 100*df-80, pb.Lower, 1e-12)
	require.InDelta(t, 100*df, pb.Upper, 1e-12)

	require.False(t, cb.Contains(150), "a call above spot violates the upper bound")
}

func TestParityResidual(t *testing.T) {
	// Black-Scholes pairs satisfy parity exactly.
	for seed := uint64(1); seed <= 10; seed++ {
		m := util.RandomMarket(seed)
		call, err := BSCall(m.Spot, m.Strike, m.Rate, m.Maturity, m.Vol)
		require.NoError(t, err)
		put, err := BSPut(m.Spot, m.Strike, m.Rate, m.Maturity, m.Vol)
		require.NoError(t, err)

		res, err := ParityResidual(call, put, m.Spot, m.Strike, m.Rate, m.Maturity)
		require.NoError(t, err)
		require.InDelta(t, 0.0, res, 1e-9, "seed %d", seed)
	}

	// A call quoted one unit rich shows up with positive sign.
	res, err := ParityResidual(11.4506, 5.5735, 100, 100, 0.05, 1)
	require.NoError(t, err)
	require.InDelta(t, 1.0, res, 1e-3)
}

func TestNoArbValidation(t *testing.T) {
	_, err := NoArbCallBounds(0, 100, 0.05, 1)
	require.ErrorIs(t, err, mc.ErrInvalidInput)
	_, err = NoArbPutBounds(100, 100, 0.05, 0)
	require.ErrorIs(t, err, mc.ErrInvalidInput)
	_, err = ParityResidual(10, 5, 100, 0, 0.05, 1)
	require.ErrorIs(t, err, mc.ErrInvalidInput)
}
