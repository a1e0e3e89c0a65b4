package api

import (
	"fmt"
	"net/http"

	"github.com/banachtech/quantmc/mc"
	"github.com/banachtech/quantmc/pricing"
	"github.com/gin-gonic/gin"
)

type bsRequest struct {
	S0     float64 `json:"S0" binding:"required,gt=0"`
	K      float64 `json:"K" binding:"required,gt=0"`
	R      float64 `json:"r"`
	T      float64 `json:"T" binding:"required,gt=0"`
	Sigma  float64 `json:"sigma" binding:"required,gt=0"`
	IsCall *bool   `json:"is_call" binding:"required"`
}

func (server *Server) blackScholes(c *gin.Context) {
	var req bsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	var price float64
	var err error
	if *req.IsCall {
		price, err = pricing.BSCall(req.S0, req.K, req.R, req.T, req.Sigma)
	} else {
		price, err = pricing.BSPut(req.S0, req.K, req.R, req.T, req.Sigma)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": price})
}

func (server *Server) greeks(c *gin.Context) {
	var req bsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	g, err := pricing.BSGreeks(req.S0, req.K, req.R, req.T, req.Sigma)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

type impliedVolRequest struct {
	Price  float64 `json:"price" binding:"required,gt=0"`
	IsCall *bool   `json:"is_call" binding:"required"`
	S0     float64 `json:"S0" binding:"required,gt=0"`
	K      float64 `json:"K" binding:"required,gt=0"`
	R      float64 `json:"r"`
	T      float64 `json:"T" binding:"required,gt=0"`
}

func (server *Server) impliedVol(c *gin.Context) {
	var req impliedVolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	vol, err := pricing.ImpliedVol(req.Price, *req.IsCall, req.S0, req.K, req.R, req.T)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"implied_vol": vol})
}

type binomialRequest struct {
	S0       float64 `json:"S0" binding:"required,gt=0"`
	K        float64 `json:"K" binding:"required,gt=0"`
	R        float64 `json:"r"`
	T        float64 `json:"T" binding:"required,gt=0"`
	Sigma    float64 `json:"sigma" binding:"required,gt=0"`
	Steps    int     `json:"n" binding:"required,min=1"`
	Exercise string  `json:"exercise"`
	IsCall   *bool   `json:"is_call" binding:"required"`
}

func (server *Server) binomial(c *gin.Context) {
	var req binomialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	strike := req.K
	var payoff pricing.Payoff
	if *req.IsCall {
		payoff = func(price float64) float64 {
			if price > strike {
				return price - strike
			}
			return 0
		}
	} else {
		payoff = func(price float64) float64 {
			if strike > price {
				return strike - price
			}
			return 0
		}
	}

	params := pricing.CRRParams{Spot: req.S0, Strike: req.K, Rate: req.R, Maturity: req.T, Vol: req.Sigma, Steps: req.Steps}
	var price float64
	var err error
	switch req.Exercise {
	case "", "european":
		price, err = pricing.CRREuropean(params, payoff)
	case "american":
		price, err = pricing.CRRAmerican(params, payoff)
	default:
		abortWithError(c, fmt.Errorf("%w: exercise must be european or american", mc.ErrInvalidInput))
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": price, "exercise": req.Exercise, "is_call": *req.IsCall})
}
