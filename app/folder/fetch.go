package folder

import (
	"bitwise74/drive-api/app/respond"
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
)

func FolderFetch(c *gin.Context, d *internal.Deps) {
	folder, err := d.Tree.GetFolder(c.Request.Context(), c.MustGet("userID").(string), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// FolderList returns the folders directly inside ?parent_id=, or the root ones
func FolderList(c *gin.Context, d *internal.Deps) {
	var parentID *string
	if raw, ok := c.GetQuery("parent_id"); ok {
		parentID = validators.NormalizeFolderID(&raw)
	}

	folders, err := d.Tree.ListFolders(c.Request.Context(), c.MustGet("userID").(string), parentID)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, folders)
}

func FolderTrashed(c *gin.Context, d *internal.Deps) {
	folders, err := d.Tree.TrashedFolders(c.Request.Context(), c.MustGet("userID").(string))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, folders)
}

func FolderStarred(c *gin.Context, d *internal.Deps) {
	folders, err := d.Tree.StarredFolders(c.Request.Context(), c.MustGet("userID").(string))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, folders)
}

func FolderRecent(c *gin.Context, d *internal.Deps) {
	folders, err := d.Tree.RecentFolders(c.Request.Context(), c.MustGet("userID").(string))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, folders)
}
