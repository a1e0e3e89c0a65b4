package api

import (
	"fmt"
	"net/http"

	"github.com/banachtech/quantmc/calibration"
	"github.com/banachtech/quantmc/mc"
	"github.com/gin-gonic/gin"
)

type smileRequest struct {
	S0      float64   `json:"S0" binding:"required,gt=0"`
	R       float64   `json:"r"`
	T       float64   `json:"T" binding:"required,gt=0"`
	IsCall  *bool     `json:"is_call" binding:"required"`
	Strikes []float64 `json:"strikes" binding:"required"`
	Prices  []float64 `json:"prices" binding:"required"`
	Fit     string    `json:"fit"`
	Query   []float64 `json:"query"`
}

func (server *Server) smile(c *gin.Context) {
	var req smileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	vols, err := calibration.ImpliedVolsFromPrices(req.Strikes, req.Prices, req.S0, req.R, req.T, *req.IsCall)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var smile calibration.SmileFunc
	var svi *calibration.SVIParams
	switch req.Fit {
	case "", "pchip":
		smile, err = calibration.FitSmilePCHIP(req.Strikes, vols)
	case "linear":
		smile, err = calibration.FitSmileLinear(req.Strikes, vols)
	case "svi":
		var params calibration.SVIParams
		params, smile, err = calibration.FitSVI(req.Strikes, vols, req.S0, req.R, req.T)
		svi = &params
	default:
		abortWithError(c, fmt.Errorf("%w: fit must be pchip, linear or svi", mc.ErrInvalidInput))
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	fitted := make([]float64, len(req.Query))
	for i, k := range req.Query {
		fitted[i] = smile(k)
	}
	resp := gin.H{
		"strikes":    req.Strikes,
		"vols":       vols,
		"query":      req.Query,
		"query_vols": fitted,
	}
	if svi != nil {
		resp["svi"] = gin.H{"a": svi.A, "b": svi.B, "rho": svi.Rho, "m": svi.M, "sigma": svi.Sigma}
	}
	c.JSON(http.StatusOK, resp)
}

type surfaceSlice struct {
	T       float64   `json:"T" binding:"required,gt=0"`
	Strikes []float64 `json:"strikes" binding:"required"`
	Vols    []float64 `json:"vols" binding:"required"`
}

type surfacePoint struct {
	K float64 `json:"K" binding:"required,gt=0"`
	T float64 `json:"T" binding:"required,gt=0"`
}

type surfaceRequest struct {
	S0     float64        `json:"S0" binding:"required,gt=0"`
	R      float64        `json:"r"`
	Div    float64        `json:"q"`
	Slices []surfaceSlice `json:"slices" binding:"required"`
	Query  []surfacePoint `json:"query" binding:"required"`
}

func (server *Server) surface(c *gin.Context) {
	var req surfaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	slices := make([]calibration.SmileSlice, len(req.Slices))
	for i, s := range req.Slices {
		slices[i] = calibration.SmileSlice{Maturity: s.T, Strikes: s.Strikes, Vols: s.Vols}
	}
	surf, err := calibration.SurfaceTotalVariance(slices, req.S0, req.R, req.Div)
	if err != nil {
		abortWithError(c, err)
		return
	}

	vols := make([]float64, len(req.Query))
	for i, p := range req.Query {
		vols[i] = surf(p.T, p.K)
	}
	c.JSON(http.StatusOK, gin.H{"query": req.Query, "vols": vols})
}
