package mc

import (
	"fmt"
	"math/bits"
	"sync"

	"golang.org/x/exp/rand"
)

// Sobol points are built from 32-bit direction vectors in Gray-code order.
// Direction vectors come from primitive polynomials over GF(2), found in
// increasing order at runtime, with odd initial direction numbers drawn from
// a fixed internal stream. The table only ever grows, so a given dimension
// always sees the same directions and output stays bit-reproducible.
const sobolBits = 32

// fixed stream for initial direction numbers, unrelated to user seeds
const sobolTableSeed = 0x9e3779b97f4a7c15

var (
	sobolMu    sync.Mutex
	sobolDirs  [][sobolBits]uint32
	sobolNextS = 1
	sobolNextC uint64
	sobolRng   = rand.New(rand.NewSource(sobolTableSeed))
)

// polyMulMod multiplies GF(2) polynomials a and b modulo p of degree s.
func polyMulMod(a, b, p uint64, s int) uint64 {
	var out uint64
	for b != 0 {
		if b&1 == 1 {
			out ^= a
		}
		b >>= 1
		a <<= 1
		if a&(1<<uint(s)) != 0 {
			a ^= p
		}
	}
	return out
}

func polyPowMod(a uint64, e uint64, p uint64, s int) uint64 {
	out := uint64(1)
	for e > 0 {
		if e&1 == 1 {
			out = polyMulMod(out, a, p, s)
		}
		a = polyMulMod(a, a, p, s)
		e >>= 1
	}
	return out
}

func primeFactors(m uint64) []uint64 {
	var fs []uint64
	for q := uint64(2); q*q <= m; q++ {
		if m%q == 0 {
			fs = append(fs, q)
			for m%q == 0 {
				m /= q
			}
		}
	}
	if m > 1 {
		fs = append(fs, m)
	}
	return fs
}

// isPrimitive reports whether p of degree s is primitive over GF(2), i.e.
// x has order 2^s-1 in GF(2)[x]/(p).
func isPrimitive(p uint64, s int) bool {
	m := uint64(1)<<uint(s) - 1
	if polyPowMod(2, m, p, s) != 1 {
		return false
	}
	for _, q := range primeFactors(m) {
		if polyPowMod(2, m/q, p, s) == 1 {
			return false
		}
	}
	return true
}

// nextPrimitivePoly returns the next primitive polynomial in increasing
// numeric order, together with its degree. Candidates have constant term 1.
func nextPrimitivePoly() (uint64, int) {
	for {
		if sobolNextC == 0 {
			sobolNextC = 1<<uint(sobolNextS) + 1
		}
		limit := uint64(1) << uint(sobolNextS+1)
		for c := sobolNextC; c < limit; c += 2 {
			if isPrimitive(c, sobolNextS) {
				sobolNextC = c + 2
				return c, sobolNextS
			}
		}
		sobolNextS++
		sobolNextC = 0
	}
}

// ensureSobolDims extends the direction-vector table to cover d dimensions.
func ensureSobolDims(d int) {
	for len(sobolDirs) < d {
		var v [sobolBits]uint32
		if len(sobolDirs) == 0 {
			for c := 0; c < sobolBits; c++ {
				v[c] = 1 << uint(sobolBits-1-c)
			}
		} else {
			p, s := nextPrimitivePoly()
			for i := 1; i <= s && i <= sobolBits; i++ {
				// odd m_i < 2^i
				m := 2*(sobolRng.Uint64()%(1<<uint(i-1))) + 1
				v[i-1] = uint32(m) << uint(sobolBits-i)
			}
			for i := s; i < sobolBits; i++ {
				v[i] = v[i-s] ^ (v[i-s] >> uint(s))
				for k := 1; k < s; k++ {
					if (p>>uint(s-k))&1 == 1 {
						v[i] ^= v[i-k]
					}
				}
			}
		}
		sobolDirs = append(sobolDirs, v)
	}
}

// sobolUniforms produces n points of the d-dimensional Sobol net, skipping
// the all-zero point at index 0. Scrambling applies a seeded digital shift
// per dimension.
func sobolUniforms(n, d int, seed uint64, scramble bool) ([]float64, error) {
	if n <= 0 || d <= 0 {
		return nil, fmt.Errorf("%w: n and d must be > 0", ErrInvalidInput)
	}
	sobolMu.Lock()
	ensureSobolDims(d)
	dirs := make([][sobolBits]uint32, d)
	copy(dirs, sobolDirs[:d])
	sobolMu.Unlock()

	shift := make([]uint32, d)
	if scramble {
		rng := rand.New(rand.NewSource(seed))
		for j := range shift {
			shift[j] = uint32(rng.Uint64())
		}
	}

	u := make([]float64, n*d)
	x := make([]uint32, d)
	const scale = 1.0 / (1 << 32)
	for i := 0; i < n; i++ {
		// Gray-code update advancing from integer index i to i+1: flip
		// along the lowest zero bit of i.
		c := bits.TrailingZeros64(^uint64(i))
		for j := 0; j < d; j++ {
			x[j] ^= dirs[j][c]
		}
		for j := 0; j < d; j++ {
			u[i*d+j] = float64(x[j]^shift[j]) * scale
		}
	}
	return u, nil
}

// first d primes, extended on demand
func haltonBases(d int) []int {
	bases := make([]int, 0, d)
	for c := 2; len(bases) < d; c++ {
		isPrime := true
		for _, p := range bases {
			if p*p > c {
				break
			}
			if c%p == 0 {
				isPrime = false
				break
			}
		}
		if isPrime {
			bases = append(bases, c)
		}
	}
	return bases
}

// haltonUniforms produces n points of the d-dimensional Halton sequence,
// skipping the zero point. Scrambling permutes the nonzero digits of each
// base with a seeded per-dimension permutation; digit 0 stays fixed so the
// implicit trailing zeros keep their value and distinct indices stay
// distinct.
func haltonUniforms(n, d int, seed uint64, scramble bool) []float64 {
	bases := haltonBases(d)

	perms := make([][]int, d)
	for j, b := range bases {
		perm := make([]int, b)
		for k := range perm {
			perm[k] = k
		}
		if scramble {
			rng := rand.New(rand.NewSource(seed + uint64(j)*0x9e3779b9))
			tail := perm[1:]
			rng.Shuffle(len(tail), func(a, c int) { tail[a], tail[c] = tail[c], tail[a] })
		}
		perms[j] = perm
	}

	u := make([]float64, n*d)
	for j, b := range bases {
		perm := perms[j]
		for i := 0; i < n; i++ {
			f := 1.0 / float64(b)
			inv := 0.0
			for x := i + 1; x > 0; x /= b {
				inv += float64(perm[x%b]) * f
				f /= float64(b)
			}
			u[i*d+j] = inv
		}
	}
	return u
}
