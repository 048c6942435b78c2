package file

import (
	"bitwise74/drive-api/app/respond"
	"bitwise74/drive-api/internal"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

func FileFetch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	file, err := d.Tree.GetFile(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

// FileDownload streams the content of a file
func FileDownload(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	file, rc, err := d.Tree.OpenFile(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, rc, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}),
	})
}
