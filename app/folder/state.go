package folder

import (
	"bitwise74/drive-api/app/respond"
	"bitwise74/drive-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

func FolderStar(c *gin.Context, d *internal.Deps) {
	folder, err := d.Tree.ToggleFolderStar(c.Request.Context(), c.MustGet("userID").(string), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	msg := "Folder unstarred"
	if folder.IsStarred {
		msg = "Folder starred"
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    msg,
		"is_starred": folder.IsStarred,
	})
}

// FolderDelete moves a folder to the trash, its contents stay where they are
func FolderDelete(c *gin.Context, d *internal.Deps) {
	_, err := d.Tree.TrashFolder(c.Request.Context(), c.MustGet("userID").(string), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Folder moved to trash",
	})
}

func FolderRestore(c *gin.Context, d *internal.Deps) {
	folder, err := d.Tree.RestoreFolder(c.Request.Context(), c.MustGet("userID").(string), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Folder restored",
		"folder":  folder,
	})
}

// FolderDeletePermanent removes a folder with everything inside it
func FolderDeletePermanent(c *gin.Context, d *internal.Deps) {
	err := d.Tree.DeleteFolder(c.Request.Context(), c.MustGet("userID").(string), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Folder deleted permanently",
	})
}
