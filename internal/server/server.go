package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
	"github.com/YashMane007/Crypto-track-pappa/internal/engine"
	"github.com/YashMane007/Crypto-track-pappa/internal/feed"
)

// Server exposes the engine over a JSON API: the holdings/rate CRUD plus the
// read-only valuation surface. It renders values, it does not compute them;
// rounding happens here and only here.
type Server struct {
	engine *engine.Engine
	feed   *feed.Worker
	router *gin.Engine
	http   *http.Server
}

// New builds the server and its routes.
func New(eng *engine.Engine, fw *feed.Worker, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine: eng,
		feed:   fw,
		router: gin.New(),
	}
	s.router.Use(gin.Recovery())

	api := s.router.Group("/api")
	{
		api.GET("/coins", s.listCoins)
		api.POST("/coins", s.addCoin)
		api.PUT("/coins/:id/symbol", s.renameCoin)
		api.PUT("/coins/:id/quantity", s.resizeCoin)
		api.DELETE("/coins/:id", s.deleteCoin)

		api.GET("/rate", s.getRate)
		api.PUT("/rate", s.setRate)

		api.GET("/valuations", s.listValuations)
		api.GET("/valuations/:symbol", s.getValuation)
		api.GET("/total", s.getTotal)
		api.GET("/feed", s.getFeedState)
	}

	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.router}
	slog.Info("API server listening", slog.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// httpStatus maps the engine error taxonomy onto status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}
