package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports that the server is alive. HEAD requests only get the status.
func Health(c *gin.Context) {
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

func Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Drive API is running",
		"version": "1.0.0",
	})
}
