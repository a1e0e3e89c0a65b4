package pricing

import (
	"fmt"
	"math"

	"github.com/banachtech/quantmc/mc"
	"gonum.org/v1/gonum/stat/combin"
)

// Payoff maps a terminal (or intermediate) asset price to a payoff.
type Payoff func(price float64) float64

// CRRParams parameterises a Cox-Ross-Rubinstein binomial tree.
type CRRParams struct {
	Spot     float64
	Strike   float64
	Rate     float64
	Maturity float64
	Vol      float64
	Steps    int
}

func (p CRRParams) lattice() (u, d, q, df float64, err error) {
	if p.Steps <= 0 {
		return 0, 0, 0, 0, fmt.Errorf("%w: steps must be > 0", mc.ErrInvalidInput)
	}
	if p.Spot <= 0 || p.Maturity <= 0 || p.Vol <= 0 {
		return 0, 0, 0, 0, fmt.Errorf("%w: S0, T and sigma must be > 0", mc.ErrInvalidInput)
	}
	dt := p.Maturity / float64(p.Steps)
	u = math.Exp(p.Vol * math.Sqrt(dt))
	d = 1.0 / u
	df = math.Exp(-p.Rate * dt)
	q = (math.Exp(p.Rate*dt) - d) / (u - d)
	if q <= 0 || q >= 1 {
		return 0, 0, 0, 0, fmt.Errorf("%w: risk-neutral probability %v outside (0,1)", mc.ErrInvalidInput, q)
	}
	return u, d, q, df, nil
}

// CRREuropean prices a European payoff on the terminal binomial
// distribution directly.
func CRREuropean(p CRRParams, payoff Payoff) (float64, error) {
	u, d, q, df, err := p.lattice()
	if err != nil {
		return 0, err
	}
	n := p.Steps
	price := 0.0
	for j := 0; j <= n; j++ {
		st := p.Spot * math.Pow(u, float64(j)) * math.Pow(d, float64(n-j))
		prob := float64(combin.Binomial(n, j)) * math.Pow(q, float64(j)) * math.Pow(1.0-q, float64(n-j))
		price += prob * payoff(st)
	}
	return math.Pow(df, float64(n)) * price, nil
}

// CRRAmerican prices an American payoff by backward induction with early
// exercise at every node.
func CRRAmerican(p CRRParams, payoff Payoff) (float64, error) {
	u, d, q, df, err := p.lattice()
	if err != nil {
		return 0, err
	}
	n := p.Steps
	values := make([]float64, n+1)
	for j := 0; j <= n; j++ {
		values[j] = payoff(p.Spot * math.Pow(u, float64(j)) * math.Pow(d, float64(n-j)))
	}
	for step := n - 1; step >= 0; step-- {
		for j := 0; j <= step; j++ {
			cont := df * (q*values[j+1] + (1.0-q)*values[j])
			exer := payoff(p.Spot * math.Pow(u, float64(j)) * math.Pow(d, float64(step-j)))
			values[j] = math.Max(exer, cont)
		}
	}
	return values[0], nil
}

// OneStepReplication solves the one-period replicating portfolio: delta
// units of stock and B in bonds matching the up and down option values.
func OneStepReplication(spot, up, down, valueUp, valueDown, rateDt float64) (delta, bond float64, err error) {
	if up == down {
		return 0, 0, fmt.Errorf("%w: up and down prices coincide, cannot replicate", mc.ErrInvalidInput)
	}
	delta = (valueUp - valueDown) / (up - down)
	bond = math.Exp(-rateDt) * (valueUp - delta*up)
	return delta, bond, nil
}
