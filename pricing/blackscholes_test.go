package pricing

import (
	"math"
	"testing"

	"github.com/banachtech/quantmc/mc"
	"github.com/banachtech/quantmc/util"
	"github.com/stretchr/testify/require"
)

func TestBSCallKnownValue(t *testing.T) {
	// Standard textbook point: S=100, K=100, r=5%, T=1, sigma=20%.
	call, err := BSCall(100, 100, 0.05, 1, 0.2)
	require.NoError(t, err)
	require.InDelta(t, 10.4506, call, 1e-4)

	put, err := BSPut(100, 100, 0.05, 1, 0.2)
	require.NoError(t, err)
	require.InDelta(t, 5.5735, put, 1e-4)
}

func TestPutCallParity(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		m := util.RandomMarket(seed)
		call, err := BSCall(m.Spot, m.Strike, m.Rate, m.Maturity, m.Vol)
		require.NoError(t, err)
		put, err := BSPut(m.Spot, m.Strike, m.Rate, m.Maturity, m.Vol)
		require.NoError(t, err)

		forward := m.Spot - m.Strike*math.Exp(-m.Rate*m.Maturity)
		require.InDelta(t, forward, call-put, 1e-9, "parity violated for seed %d", seed)
	}
}

func TestBSTinyVolLimit(t *testing.T) {
	// Deep in the vsqrt underflow regime the price is the discounted forward
	// intrinsic value.
	call, err := BSCall(120, 100, 0.05, 1e-18, 0.2)
	require.NoError(t, err)
	require.InDelta(t, 20.0, call, 1e-6)

	put, err := BSPut(80, 100, 0.05, 1e-18, 0.2)
	require.NoError(t, err)
	require.InDelta(t, 20.0, put, 1e-6)
}

func TestBSValidation(t *testing.T) {
	_, err := BSCall(0, 100, 0.05, 1, 0.2)
	require.ErrorIs(t, err, mc.ErrInvalidInput)
	_, err = BSPut(100, 100, 0.05, 0, 0.2)
	require.ErrorIs(t, err, mc.ErrInvalidInput)
	_, err = BSCall(100, 100, 0.05, 1, -0.2)
	require.ErrorIs(t, err, mc.ErrInvalidInput)
}

func TestBSGreeks(t *testing.T) {
	g, err := BSGreeks(100, 100, 0.05, 1, 0.2)
	require.NoError(t, err)

	require.InDelta(t, 10.4506, g.Call, 1e-4)
	require.InDelta(t, 5.5735, g.Put, 1e-4)
	require.InDelta(t, 0.6368, g.DeltaCall, 1e-4)
	require.InDelta(t, g.DeltaCall-1, g.DeltaPut, 1e-12)
	require.Greater(t, g.Gamma, 0.0)
	require.Greater(t, g.Vega, 0.0)
	require.Less(t, g.ThetaCall, 0.0)
	require.Greater(t, g.RhoCall, 0.0)
	require.Less(t, g.RhoPut, 0.0)

	// Finite-difference cross-checks on delta and vega.
	const h = 1e-5
	up, err := BSCall(100+h, 100, 0.05, 1, 0.2)
	require.NoError(t, err)
	dn, err := BSCall(100-h, 100, 0.05, 1, 0.2)
	require.NoError(t, err)
	require.InDelta(t, (up-dn)/(2*h), g.DeltaCall, 1e-6)

	vu, err := BSCall(100, 100, 0.05, 1, 0.2+h)
	require.NoError(t, err)
	vd, err := BSCall(100, 100, 0.05, 1, 0.2-h)
	require.NoError(t, err)
	require.InDelta(t, (vu-vd)/(2*h), g.Vega, 1e-4)
}

func TestImpliedVolRoundTrip(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		m := util.RandomMarket(seed)

		call, err := BSCall(m.Spot, m.Strike, m.Rate, m.Maturity, m.Vol)
		require.NoError(t, err)
		if call < 1e-4 {
			continue
		}
		iv, err := ImpliedVol(call, true, m.Spot, m.Strike, m.Rate, m.Maturity)
		require.NoError(t, err)
		require.InDelta(t, m.Vol, iv, 1e-4, "call round trip for seed %d", seed)

		put, err := BSPut(m.Spot, m.Strike, m.Rate, m.Maturity, m.Vol)
		require.NoError(t, err)
		if put < 1e-4 {
			continue
		}
		iv, err = ImpliedVol(put, false, m.Spot, m.Strike, m.Rate, m.Maturity)
		require.NoError(t, err)
		require.InDelta(t, m.Vol, iv, 1e-4, "put round trip for seed %d", seed)
	}
}

func TestImpliedVolUnbracketed(t *testing.T) {
	// A call quote above the spot violates no-arbitrage, so no volatility
	// can reproduce it.
	_, err := ImpliedVol(150, true, 100, 100, 0.05, 1)
	require.ErrorIs(t, err, mc.ErrUnbracketedRoot)
}

func TestImpliedVolValidation(t *testing.T) {
	_, err := ImpliedVol(0, true, 100, 100, 0.05, 1)
	require.ErrorIs(t, err, mc.ErrInvalidInput)
	_, err = ImpliedVol(10, true, 100, 100, 0.05, 0)
	require.ErrorIs(t, err, mc.ErrInvalidInput)
}
