package api

import (
	"errors"
	"net/http"

	"github.com/kstonekuan/splatter-mcp-app/internal/app"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/predictor"
	"github.com/kstonekuan/splatter-mcp-app/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PredictSplat handles the engine's POST /v1/predict: the synchronous
// "run and return (filename, bytes)" contract consumed by the adapter.
func PredictSplat(c *gin.Context) {
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

	resp, err := app.Engine().Predict(c.Request.Context(), validated)
	if err != nil {
		var exitErr *predictor.ProcessExitError
		var notFoundErr *predictor.OutputNotFoundError
		switch {
		case errors.As(err, &exitErr):
			app.Logger.Error("prediction process failed",
				zap.Int("exit_code", exitErr.ExitCode),
				zap.String("stderr", exitErr.Stderr),
			)
		case errors.As(err, &notFoundErr):
			app.Logger.Error("prediction produced no artifact", zap.Error(err))
		default:
			app.Logger.Error("prediction failed", zap.Error(err))
		}

		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
