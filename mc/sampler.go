package mc

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Method selects the sampling scheme for normal variate generation.
type Method string

const (
	Plain          Method = "plain"
	LatinHypercube Method = "lhs"
	Sobol          Method = "sobol"
	Halton         Method = "halton"
)

// ParseMethod maps a request string onto a Method. "latin-hypercube" is
// accepted as an alias of "lhs".
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", string(Plain):
		return Plain, nil
	case string(LatinHypercube), "latin-hypercube":
		return LatinHypercube, nil
	case string(Sobol):
		return Sobol, nil
	case string(Halton):
		return Halton, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// SamplerConfig describes how to generate standard normal draws. A config is
// constructed per pricing call and owns its random stream exclusively, so
// identical configs reproduce bit-identical output.
type SamplerConfig struct {
	Method     Method
	Antithetic bool
	Seed       uint64
	Scramble   bool
}

// uniforms away from 0 and 1 before quantile inversion
const clipEps = 1e-12

func clipU(u float64) float64 {
	if u < clipEps {
		return clipEps
	}
	if u > 1.0-clipEps {
		return 1.0 - clipEps
	}
	return u
}

// StandardNormals generates an (nEff x d) matrix of N(0,1) draws. With
// antithetic pairing nEff = 2*ceil(n/2); the second half mirrors the first
// (negated normals, or complemented uniforms before inversion).
func StandardNormals(n, d int, cfg SamplerConfig) (*mat.Dense, error) {
	if n <= 0 || d <= 0 {
		return nil, fmt.Errorf("%w: n and d must be > 0", ErrInvalidInput)
	}

	nBase := n
	if cfg.Antithetic {
		nBase = (n + 1) / 2
	}

	switch cfg.Method {
	case "", Plain:
		return plainNormals(nBase, d, cfg)
	case LatinHypercube:
		u := lhsUniforms(nBase, d, cfg.Seed)
		return invertUniforms(u, nBase, d, cfg.Antithetic), nil
	case Sobol:
		u, err := sobolUniforms(nBase, d, cfg.Seed, cfg.Scramble)
		if err != nil {
			return nil, err
		}
		return invertUniforms(u, nBase, d, cfg.Antithetic), nil
	case Halton:
		u := haltonUniforms(nBase, d, cfg.Seed, cfg.Scramble)
		return invertUniforms(u, nBase, d, cfg.Antithetic), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, cfg.Method)
}

func plainNormals(nBase, d int, cfg SamplerConfig) (*mat.Dense, error) {
	dist := distuv.Normal{Mu: 0.0, Sigma: 1.0, Src: rand.NewSource(cfg.Seed)}
	rows := nBase
	if cfg.Antithetic {
		rows = 2 * nBase
	}
	z := mat.NewDense(rows, d, nil)
	for i := 0; i < nBase; i++ {
		for j := 0; j < d; j++ {
			v := dist.Rand()
			z.Set(i, j, v)
			if cfg.Antithetic {
				z.Set(nBase+i, j, -v)
			}
		}
	}
	return z, nil
}

// lhsUniforms stratifies (0,1) into nBase strata per dimension, draws one
// uniform per stratum and permutes the stratum assignment independently for
// each dimension. Correlation, if any, is imposed later via Cholesky.
func lhsUniforms(nBase, d int, seed uint64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	u := make([]float64, nBase*d)
	col := make([]float64, nBase)
	for j := 0; j < d; j++ {
		for i := 0; i < nBase; i++ {
			col[i] = (float64(i) + rng.Float64()) / float64(nBase)
		}
		rng.Shuffle(nBase, func(a, b int) { col[a], col[b] = col[b], col[a] })
		for i := 0; i < nBase; i++ {
			u[i*d+j] = col[i]
		}
	}
	return u
}

// invertUniforms maps base uniforms (row-major nBase x d) through the
// standard normal quantile, appending complemented rows first when pairing
// antithetically.
func invertUniforms(u []float64, nBase, d int, antithetic bool) *mat.Dense {
	norm := distuv.Normal{Mu: 0.0, Sigma: 1.0}
	rows := nBase
	if antithetic {
		rows = 2 * nBase
	}
	z := mat.NewDense(rows, d, nil)
	for i := 0; i < nBase; i++ {
		for j := 0; j < d; j++ {
			v := u[i*d+j]
			z.Set(i, j, norm.Quantile(clipU(v)))
			if antithetic {
				z.Set(nBase+i, j, norm.Quantile(clipU(1.0-v)))
			}
		}
	}
	return z
}

// CorrelatedNormals generates draws with the given correlation structure by
// right-multiplying independent normals with the transposed Cholesky factor
// of corr. The matrix must be square and positive definite.
func CorrelatedNormals(n int, corr mat.Matrix, cfg SamplerConfig) (*mat.Dense, error) {
	r, c := corr.Dims()
	if r != c {
		return nil, fmt.Errorf("%w: correlation matrix is %dx%d, want square", ErrDimensionMismatch, r, c)
	}

	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			sym.SetSym(i, j, corr.At(i, j))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, fmt.Errorf("%w: correlation matrix is not positive definite", ErrInvalidInput)
	}
	var l mat.TriDense
	chol.LTo(&l)

	z, err := StandardNormals(n, r, cfg)
	if err != nil {
		return nil, err
	}
	rows, _ := z.Dims()
	out := mat.NewDense(rows, r, nil)
	out.Mul(z, l.T())
	return out, nil
}
