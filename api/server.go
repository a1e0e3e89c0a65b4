package api

import (
	"errors"
	"net/http"

	"github.com/banachtech/quantmc/mc"
	"github.com/gin-gonic/gin"
)

// Config carries everything the server needs from the environment.
type Config struct {
	// Bcrypt hash of the accepted API key. Empty disables authentication,
	// e.g. for local use.
	APIKeyHash string
}

// Server serves HTTP requests for the pricing and calibration service.
type Server struct {
	config Config
	router *gin.Engine
}

// NewServer creates a new HTTP server and sets up routing.
func NewServer(config Config) *Server {
	server := &Server{config: config}
	server.setupRouter()
	return server
}

func (server *Server) setupRouter() {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	v1 := router.Group("/v1").Use(server.authentication)
	v1.POST("/mc/asian", server.rateLimited, server.asianMC)
	v1.POST("/mc/basket", server.rateLimited, server.basketMC)
	v1.POST("/mc/adjust", server.adjustControls)
	v1.POST("/price/blackscholes", server.blackScholes)
	v1.POST("/greeks", server.greeks)
	v1.POST("/impliedvol", server.impliedVol)
	v1.POST("/price/binomial", server.binomial)
	v1.POST("/price/geometric_asian", server.geometricAsian)
	v1.POST("/price/geometric_basket", server.geometricBasket)
	v1.POST("/calibration/smile", server.smile)
	v1.POST("/calibration/surface", server.surface)

	server.router = router
}

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}

// abortWithError maps the core error taxonomy onto HTTP statuses: caller
// mistakes are 400s, everything else is a 500.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, mc.ErrInvalidInput),
		errors.Is(err, mc.ErrDimensionMismatch),
		errors.Is(err, mc.ErrInsufficientSamples),
		errors.Is(err, mc.ErrUnknownMethod),
		errors.Is(err, mc.ErrUnbracketedRoot):
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, errorResponse(err))
}
