package file

import (
	"bitwise74/drive-api/app/respond"
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileList returns the files directly inside ?folder_id=, or the root ones
func FileList(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var folderID *string
	if raw, ok := c.GetQuery("folder_id"); ok {
		folderID = validators.NormalizeFolderID(&raw)
	}

	files, err := d.Tree.ListFiles(c.Request.Context(), userID, folderID)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

func FileTrashed(c *gin.Context, d *internal.Deps) {
	files, err := d.Tree.TrashedFiles(c.Request.Context(), c.MustGet("userID").(string))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

func FileStarred(c *gin.Context, d *internal.Deps) {
	files, err := d.Tree.StarredFiles(c.Request.Context(), c.MustGet("userID").(string))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

func FileRecent(c *gin.Context, d *internal.Deps) {
	files, err := d.Tree.RecentFiles(c.Request.Context(), c.MustGet("userID").(string))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

// FileUsage returns the storage used by the caller
func FileUsage(c *gin.Context, d *internal.Deps) {
	stats, err := d.Tree.Usage(c.Request.Context(), c.MustGet("userID").(string))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
