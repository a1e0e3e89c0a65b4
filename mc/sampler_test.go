package mc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestParseMethod(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    Method
		wantErr bool
	}{
		{name: "EMPTY_DEFAULTS_PLAIN", input: "", want: Plain},
		{name: "PLAIN", input: "plain", want: Plain},
		{name: "LHS", input: "lhs", want: LatinHypercube},
		{name: "LHS_ALIAS", input: "latin-hypercube", want: LatinHypercube},
		{name: "SOBOL", input: "sobol", want: Sobol},
		{name: "HALTON", input: "halton", want: Halton},
		{name: "UNKNOWN", input: "mersenne", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMethod(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnknownMethod)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestStandardNormalsDeterministic(t *testing.T) {
	for _, method := range []Method{Plain, LatinHypercube, Sobol, Halton} {
		t.Run(string(method), func(t *testing.T) {
			cfg := SamplerConfig{Method: method, Seed: 42, Scramble: true}
			a, err := StandardNormals(64, 3, cfg)
			require.NoError(t, err)
			b, err := StandardNormals(64, 3, cfg)
			require.NoError(t, err)
			require.True(t, mat.Equal(a, b), "same config must reproduce identical draws")
		})
	}
}

func TestStandardNormalsSeedChangesOutput(t *testing.T) {
	a, err := StandardNormals(64, 2, SamplerConfig{Method: Plain, Seed: 1})
	require.NoError(t, err)
	b, err := StandardNormals(64, 2, SamplerConfig{Method: Plain, Seed: 2})
	require.NoError(t, err)
	require.False(t, mat.Equal(a, b))
}

func TestStandardNormalsAntithetic(t *testing.T) {
	for _, method := range []Method{Plain, LatinHypercube, Sobol, Halton} {
		t.Run(string(method), func(t *testing.T) {
			cfg := SamplerConfig{Method: method, Antithetic: true, Seed: 7}
			z, err := StandardNormals(101, 2, cfg)
			require.NoError(t, err)

			rows, cols := z.Dims()
			require.Equal(t, 102, rows, "odd request rounds up to an even pair count")
			require.Equal(t, 2, cols)

			nBase := rows / 2
			for i := 0; i < nBase; i++ {
				for j := 0; j < cols; j++ {
					require.InDelta(t, -z.At(i, j), z.At(nBase+i, j), 1e-9,
						"row %d must mirror row %d", nBase+i, i)
				}
			}
		})
	}
}

func TestStandardNormalsInvalidShape(t *testing.T) {
	_, err := StandardNormals(0, 3, SamplerConfig{})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = StandardNormals(100, 0, SamplerConfig{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLHSStratification(t *testing.T) {
	const n, d = 200, 3
	u := lhsUniforms(n, d, 99)

	// Each dimension must place exactly one point in each stratum [i/n, (i+1)/n).
	for j := 0; j < d; j++ {
		seen := make([]bool, n)
		for i := 0; i < n; i++ {
			v := u[i*d+j]
			require.Greater(t, v, 0.0)
			require.Less(t, v, 1.0)
			k := int(v * n)
			require.False(t, seen[k], "dimension %d has two points in stratum %d", j, k)
			seen[k] = true
		}
	}
}

func TestLowDiscrepancyUniformsInRange(t *testing.T) {
	const n, d = 512, 5

	su, err := sobolUniforms(n, d, 11, true)
	require.NoError(t, err)
	hu := haltonUniforms(n, d, 11, true)

	for _, u := range [][]float64{su, hu} {
		require.Len(t, u, n*d)
		for _, v := range u {
			require.Greater(t, v, 0.0)
			require.Less(t, v, 1.0)
		}
	}
}

func TestScrambledHaltonInteriorAndCollisionFree(t *testing.T) {
	// The digit permutation keeps 0 fixed, so no index can collapse to an
	// exact 0.0 and distinct indices never collide within a dimension.
	const n, d = 512, 5
	u := haltonUniforms(n, d, 11, true)

	for j := 0; j < d; j++ {
		seen := make(map[float64]int, n)
		for i := 0; i < n; i++ {
			v := u[i*d+j]
			require.Greater(t, v, 0.0, "dimension %d index %d", j, i)
			require.Less(t, v, 1.0, "dimension %d index %d", j, i)
			if prev, dup := seen[v]; dup {
				t.Fatalf("dimension %d: indices %d and %d collide at %v", j, prev, i, v)
			}
			seen[v] = i
		}
	}
}

func TestSobolFirstDimensionUnscrambled(t *testing.T) {
	// Without scrambling, dimension 0 is the van der Corput sequence in base 2
	// starting at index 1: 0.5, 0.25, 0.75, 0.125, ...
	u, err := sobolUniforms(4, 1, 0, false)
	require.NoError(t, err)
	require.InDelta(t, 0.5, u[0], 1e-12)
	require.InDelta(t, 0.75, u[1], 1e-12)
	require.InDelta(t, 0.25, u[2], 1e-12)
	require.InDelta(t, 0.375, u[3], 1e-12)
}

func TestCorrelatedNormals(t *testing.T) {
	corr := mat.NewDense(2, 2, []float64{1, 0.8, 0.8, 1})
	cfg := SamplerConfig{Method: Plain, Seed: 5}

	z, err := CorrelatedNormals(50000, corr, cfg)
	require.NoError(t, err)

	rows, cols := z.Dims()
	require.Equal(t, 50000, rows)
	require.Equal(t, 2, cols)

	// Sample correlation should land near the target.
	var sxy, sxx, syy float64
	for i := 0; i < rows; i++ {
		x, y := z.At(i, 0), z.At(i, 1)
		sxy += x * y
		sxx += x * x
		syy += y * y
	}
	rho := sxy / math.Sqrt(sxx*syy)
	require.InDelta(t, 0.8, rho, 0.02)
}

func TestCorrelatedNormalsRejectsBadMatrix(t *testing.T) {
	cfg := SamplerConfig{Method: Plain, Seed: 5}

	_, err := CorrelatedNormals(100, mat.NewDense(2, 3, nil), cfg)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	notPD := mat.NewDense(2, 2, []float64{1, 2, 2, 1})
	_, err = CorrelatedNormals(100, notPD, cfg)
	require.ErrorIs(t, err, ErrInvalidInput)
}
