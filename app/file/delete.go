package file

import (
	"bitwise74/drive-api/app/respond"
	"bitwise74/drive-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileDelete moves a file to the trash
func FileDelete(c *gin.Context, d *internal.Deps) {
	_, err := d.Tree.TrashFile(c.Request.Context(), c.MustGet("userID").(string), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File moved to trash",
	})
}

// FileDeletePermanent removes a file and its content for good
func FileDeletePermanent(c *gin.Context, d *internal.Deps) {
	err := d.Tree.DeleteFile(c.Request.Context(), c.MustGet("userID").(string), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File deleted permanently",
	})
}
