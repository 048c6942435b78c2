// Package folder contains handlers for managing folders
package folder

import (
	"bitwise74/drive-api/app/respond"
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type folderBody struct {
	Name string `json:"name"`
	// Missing or null means the root
	ParentID *string `json:"parent_id"`
}

func FolderCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data folderBody
	if err := c.ShouldBindJSON(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))

		respond.BadRequest(c, "Invalid request body")
		return
	}

	folder, err := d.Tree.CreateFolder(c.Request.Context(), userID, data.Name, validators.NormalizeFolderID(data.ParentID))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// FolderEdit renames and moves a folder
func FolderEdit(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data folderBody
	if err := c.ShouldBindJSON(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))

		respond.BadRequest(c, "Invalid request body")
		return
	}

	folder, err := d.Tree.UpdateFolder(c.Request.Context(), userID, c.Param("id"), data.Name, validators.NormalizeFolderID(data.ParentID))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, folder)
}
