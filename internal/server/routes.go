package server

import (
	"net/http"

	"github.com/kstonekuan/splatter-mcp-app/internal/api"
	"github.com/kstonekuan/splatter-mcp-app/internal/app"

	"github.com/gin-gonic/gin"
)

// SetupAdapterRoutes exposes the public inference surface: the dispatch
// gate plus artifact retrieval.
func (s *Server) SetupAdapterRoutes(app *app.App) {
	s.setupHealthz()
	s.ginEngine.GET("/file/:filename", handlerWrapper(app, api.GetFile))

	apiV1 := s.ginEngine.Group("/v1")
	apiV1.POST("/generate-splat", handlerWrapper(app, api.GenerateSplat))
}

// SetupEngineRoutes exposes the execution-unit surface consumed by the
// adapter's upstream calls.
func (s *Server) SetupEngineRoutes(app *app.App) {
	s.setupHealthz()

	apiV1 := s.ginEngine.Group("/v1")
	apiV1.POST("/predict", handlerWrapper(app, api.PredictSplat))
}

// Liveness only; says nothing about the core's correctness.
func (s *Server) setupHealthz() {
	s.ginEngine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func handlerWrapper(app *app.App, f func(c *gin.Context)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("app", app)
		f(ctx)
	}
}
