package api

import (
	"net/http"

	"github.com/kstonekuan/splatter-mcp-app/internal/app"
	"github.com/kstonekuan/splatter-mcp-app/internal/config"
	"github.com/kstonekuan/splatter-mcp-app/internal/services/filestorage"
	"github.com/kstonekuan/splatter-mcp-app/internal/types"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// GetFile serves an archived artifact by name.
func GetFile(c *gin.Context) {
	app := c.MustGet("app").(*app.App)

	filename, err := types.NormalizeFilename(c.Param("filename"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	storage, err := filestorage.NewFileStorage(app.Config())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	if app.Config().FilesystemType == config.FilesystemLocal {
		path, err := storage.ResolveFile(filename)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "file not found"})
			return
		}

		c.File(path)
		return
	}

	file, err := storage.GetFile(filename)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "file not found"})
		return
	}

	c.Data(http.StatusOK, mimetype.Detect(file.Content).String(), file.Content)
}
