package transport

import (
	"net/http"

	"github.com/ds124wfegd/zip-renamer/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func InitRoutes(archiveHandler *ArchiveHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	{
		api.POST("/process", archiveHandler.ProcessArchive)
		api.POST("/archives", archiveHandler.UploadArchive)
		api.GET("/archives/:id", archiveHandler.GetArchive)
		api.GET("/archives/:id/download", archiveHandler.DownloadArchive)
		api.DELETE("/archives/:id", archiveHandler.DeleteArchive)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "zip-renamer",
		})
	})
	return router
}
