// Package file contains handlers for uploading and managing files
package file

import (
	"bitwise74/drive-api/app/respond"
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/pkg/middleware"
	"bitwise74/drive-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FileUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "Request body size exceeds limit",
				"requestID": requestID,
			})
			return
		}

		zap.L().Debug("Failed to open multipart file", zap.String("requestID", requestID), zap.Error(err))

		respond.BadRequest(c, "No file provided")
		return
	}

	code, f, err := validators.FileValidator(fh, d.Config.Upload.MaxSize)
	if err != nil {
		if code == http.StatusInternalServerError {
			respond.Fail(c, err)
			return
		}

		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	var folderID *string
	if raw, ok := c.GetPostForm("folder_id"); ok {
		folderID = validators.NormalizeFolderID(&raw)
	}

	file, err := d.Uploader.Do(c.Request.Context(), service.Upload{
		OwnerID:  userID,
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Size:     fh.Size,
		FolderID: folderID,
		Body:     f,
	})
	if err != nil {
		respond.Fail(c, err)
		return
	}

	zap.L().Debug("File uploaded", zap.String("fileID", file.ID), zap.Int64("size", file.Size), zap.String("requestID", requestID))

	c.JSON(http.StatusOK, file)
}
