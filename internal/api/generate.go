package api

import (
	"errors"
	"net/http"

	"github.com/kstonekuan/splatter-mcp-app/internal/app"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/inference"
	"github.com/kstonekuan/splatter-mcp-app/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateSplat handles the adapter's POST /v1/generate-splat. Boundary
// validation runs here; the dispatch gate never sees a malformed request.
func GenerateSplat(c *gin.Context) {
	app := c.MustGet("app").(*app.App)

	data := types.GenerateSplatRequest{}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to parse request body"})
		return
	}

	validated, err := data.Validate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	resp, err := app.Inference().GenerateSplat(c.Request.Context(), validated)
	if err != nil {
		status := http.StatusInternalServerError
		var upstreamErr *inference.UpstreamError
		switch {
		case errors.Is(err, inference.ErrNotConfigured):
			status = http.StatusServiceUnavailable
		case errors.As(err, &upstreamErr):
			status = http.StatusBadGateway
		}

		app.Logger.Error("splat generation failed",
			zap.Int("status", status),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
