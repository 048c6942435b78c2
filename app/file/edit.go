package file

import (
	"bitwise74/drive-api/app/respond"
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type editBody struct {
	Name string `json:"name"`
	// Missing or null moves the file to the root
	FolderID *string `json:"folder_id"`
}

// FileEdit renames and moves a file
func FileEdit(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data editBody
	if err := c.ShouldBindJSON(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))

		respond.BadRequest(c, "Invalid request body")
		return
	}

	file, err := d.Tree.UpdateFile(c.Request.Context(), userID, c.Param("id"), data.Name, validators.NormalizeFolderID(data.FolderID))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

func FileStar(c *gin.Context, d *internal.Deps) {
	file, err := d.Tree.ToggleFileStar(c.Request.Context(), c.MustGet("userID").(string), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	msg := "File unstarred"
	if file.IsStarred {
		msg = "File starred"
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    msg,
		"is_starred": file.IsStarred,
	})
}

func FileRestore(c *gin.Context, d *internal.Deps) {
	file, err := d.Tree.RestoreFile(c.Request.Context(), c.MustGet("userID").(string), c.Param("id"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File restored",
		"file":    file,
	})
}
