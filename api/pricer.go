package api

import (
	"net/http"

	"github.com/banachtech/quantmc/mc"
	"github.com/gin-gonic/gin"
)

const (
	defaultPaths = 20000
	defaultAlpha = 0.05
)

type asianRequest struct {
	S0                float64 `json:"S0" binding:"required,gt=0"`
	K                 float64 `json:"K" binding:"required,gt=0"`
	R                 float64 `json:"r"`
	T                 float64 `json:"T" binding:"required,gt=0"`
	Sigma             float64 `json:"sigma" binding:"required,gt=0"`
	NObs              int     `json:"n_obs" binding:"required,min=1"`
	NPaths            int     `json:"n_paths"`
	Seed              uint64  `json:"seed"`
	Method            string  `json:"method"`
	Antithetic        bool    `json:"antithetic"`
	QMCScramble       bool    `json:"qmc_scramble"`
	UseControlVariate bool    `json:"use_control_variate"`
	UseExtraControl   bool    `json:"use_extra_control"`
	Alpha             float64 `json:"alpha"`
}

func (server *Server) asianMC(c *gin.Context) {
	var req asianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	method, err := mc.ParseMethod(req.Method)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if req.NPaths == 0 {
		req.NPaths = defaultPaths
	}
	if req.Alpha == 0 {
		req.Alpha = defaultAlpha
	}

	result, err := mc.PriceAsian(mc.AsianSpec{
		Spot:     req.S0,
		Strike:   req.K,
		Rate:     req.R,
		Maturity: req.T,
		Vol:      req.Sigma,
		Obs:      req.NObs,
		Paths:    req.NPaths,
		Sampler: mc.SamplerConfig{
			Method:     method,
			Antithetic: req.Antithetic,
			Seed:       req.Seed,
			Scramble:   req.QMCScramble,
		},
		UseControlVariate: req.UseControlVariate,
		UseExtraControl:   req.UseExtraControl,
		Alpha:             req.Alpha,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type basketRequest struct {
	S0                []float64   `json:"S0" binding:"required"`
	W                 []float64   `json:"w" binding:"required"`
	K                 float64     `json:"K" binding:"required,gt=0"`
	R                 float64     `json:"r"`
	T                 float64     `json:"T" binding:"required,gt=0"`
	Vol               []float64   `json:"vol" binding:"required"`
	Corr              [][]float64 `json:"corr" binding:"required"`
	NPaths            int         `json:"n_paths"`
	Seed              uint64      `json:"seed"`
	Method            string      `json:"method"`
	LHS               bool        `json:"lhs"`
	Antithetic        bool        `json:"antithetic"`
	QMCScramble       bool        `json:"qmc_scramble"`
	UseControlVariate bool        `json:"use_control_variate"`
	UseExtraControl   bool        `json:"use_extra_control"`
	Alpha             float64     `json:"alpha"`
}

func (server *Server) basketMC(c *gin.Context) {
	var req basketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	method, err := mc.ParseMethod(req.Method)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if req.NPaths == 0 {
		req.NPaths = defaultPaths
	}
	if req.Alpha == 0 {
		req.Alpha = defaultAlpha
	}

	result, err := mc.PriceBasket(mc.BasketSpec{
		Spot:     req.S0,
		Weights:  req.W,
		Vol:      req.Vol,
		Corr:     req.Corr,
		Strike:   req.K,
		Rate:     req.R,
		Maturity: req.T,
		Paths:    req.NPaths,
		Sampler: mc.SamplerConfig{
			Method:     method,
			Antithetic: req.Antithetic,
			Seed:       req.Seed,
			Scramble:   req.QMCScramble,
		},
		LatinHypercube:    req.LHS,
		UseControlVariate: req.UseControlVariate,
		UseExtraControl:   req.UseExtraControl,
		Alpha:             req.Alpha,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type adjustRequest struct {
	Target       []float64   `json:"target" binding:"required"`
	Controls     [][]float64 `json:"controls" binding:"required"`
	ControlMeans []float64   `json:"control_means" binding:"required"`
	Ridge        float64     `json:"ridge"`
}

// adjustControls exposes the estimator on its own for custom control
// designs.
func (server *Server) adjustControls(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if req.Ridge == 0 {
		req.Ridge = mc.DefaultRidge
	}
	result, err := mc.AdjustWithControls(req.Target, req.Controls, req.ControlMeans, req.Ridge)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"beta":                      result.Beta,
		"adjusted_samples":          result.Adjusted,
		"baseline_sd":               result.BaselineSD,
		"adjusted_sd":               result.AdjustedSD,
		"variance_reduction_factor": result.ReductionFactor,
	})
}

type geometricAsianRequest struct {
	S0    float64 `json:"S0" binding:"required,gt=0"`
	K     float64 `json:"K" binding:"required,gt=0"`
	R     float64 `json:"r"`
	T     float64 `json:"T" binding:"required,gt=0"`
	Sigma float64 `json:"sigma" binding:"required,gt=0"`
	NObs  int     `json:"n_obs" binding:"required,min=1"`
}

func (server *Server) geometricAsian(c *gin.Context) {
	var req geometricAsianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	price, err := mc.GeometricAsianCall(req.S0, req.K, req.R, req.T, req.Sigma, req.NObs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": price})
}

type geometricBasketRequest struct {
	S0   []float64   `json:"S0" binding:"required"`
	W    []float64   `json:"w" binding:"required"`
	K    float64     `json:"K" binding:"required,gt=0"`
	R    float64     `json:"r"`
	T    float64     `json:"T" binding:"required,gt=0"`
	Vol  []float64   `json:"vol" binding:"required"`
	Corr [][]float64 `json:"corr" binding:"required"`
}

func (server *Server) geometricBasket(c *gin.Context) {
	var req geometricBasketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	price, err := mc.GeometricBasketCall(req.S0, req.W, req.K, req.R, req.T, req.Vol, req.Corr)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": price})
}
