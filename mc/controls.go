package mc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultRidge is the diagonal regularisation added to the control
// covariance before solving for beta. It keeps the solve stable when
// controls are nearly collinear.
const DefaultRidge = 1e-12

// VarianceReduction holds the output of a control-variate adjustment.
type VarianceReduction struct {
	Beta            []float64
	Adjusted        []float64
	BaselineSD      float64
	AdjustedSD      float64
	ReductionFactor float64
}

// AdjustWithControls applies optimal linear control variates to target.
// controls holds k simulated control vectors, each of length len(target),
// generated from the same underlying draws as the target; controlMeans holds
// their known expectations. The variance-minimising weights solve
//
//	Var(Y) beta = Cov(Y, x)
//
// the multivariate form of beta* = Cov(x,y)/Var(y). Adjusted sample i is
// target_i + sum_j beta_j*(mean_j - control_ij). A singular covariance falls
// back to beta = 0, leaving the target untouched: no adjustment is always a
// valid answer.
func AdjustWithControls(target []float64, controls [][]float64, controlMeans []float64, ridge float64) (*VarianceReduction, error) {
	n := len(target)
	k := len(controls)
	if k == 0 || len(controlMeans) != k {
		return nil, fmt.Errorf("%w: %d controls with %d means", ErrDimensionMismatch, k, len(controlMeans))
	}
	for j := range controls {
		if len(controls[j]) != n {
			return nil, fmt.Errorf("%w: control %d has %d samples, target has %d", ErrDimensionMismatch, j, len(controls[j]), n)
		}
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInsufficientSamples, n)
	}

	baselineSD := stat.StdDev(target, nil)

	xc := make([]float64, n)
	xMean := stat.Mean(target, nil)
	for i, v := range target {
		xc[i] = v - xMean
	}
	yc := make([][]float64, k)
	for j := range controls {
		m := stat.Mean(controls[j], nil)
		yc[j] = make([]float64, n)
		for i, v := range controls[j] {
			yc[j][i] = v - m
		}
	}

	covYY := mat.NewSymDense(k, nil)
	covYx := mat.NewVecDense(k, nil)
	den := float64(n - 1)
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			c := floats.Dot(yc[a], yc[b]) / den
			if a == b {
				c += ridge
			}
			covYY.SetSym(a, b, c)
		}
		covYx.SetVec(a, floats.Dot(yc[a], xc)/den)
	}

	beta := make([]float64, k)
	var sol mat.VecDense
	if err := sol.SolveVec(covYY, covYx); err == nil {
		copy(beta, sol.RawVector().Data)
	}

	adjusted := make([]float64, n)
	copy(adjusted, target)
	for j := 0; j < k; j++ {
		if beta[j] == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			adjusted[i] += beta[j] * (controlMeans[j] - controls[j][i])
		}
	}

	adjustedSD := stat.StdDev(adjusted, nil)
	vrf := math.Inf(1)
	if adjustedSD != 0 {
		vrf = baselineSD / adjustedSD
	}

	return &VarianceReduction{
		Beta:            beta,
		Adjusted:        adjusted,
		BaselineSD:      baselineSD,
		AdjustedSD:      adjustedSD,
		ReductionFactor: vrf,
	}, nil
}
