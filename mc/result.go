package mc

// ControlVariateReport describes the estimator adjustment applied on top of
// the baseline statistics.
type ControlVariateReport struct {
	Controls        []string  `json:"controls"`
	Beta            []float64 `json:"beta"`
	ReductionFactor float64   `json:"variance_reduction_factor"`
	Adjusted        Estimate  `json:"adjusted"`
}

// Result packages one Monte Carlo pricing call. ControlVariate is nil when
// the adjustment was not requested.
type Result struct {
	Method         Method                `json:"method"`
	Antithetic     bool                  `json:"antithetic"`
	Baseline       Estimate              `json:"baseline"`
	ControlVariate *ControlVariateReport `json:"control_variate,omitempty"`
}
