// Package auth contains handlers for signing up, logging in and out
package auth

import (
	"bitwise74/drive-api/app/respond"
	"bitwise74/drive-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type signupBody struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func AuthSignup(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data signupBody
	if err := c.ShouldBindJSON(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))

		respond.BadRequest(c, "Invalid request body")
		return
	}

	user, err := d.Accounts.Signup(c.Request.Context(), data.Email, data.Name, data.Password)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	zap.L().Info("New user registered", zap.String("userID", user.ID), zap.String("requestID", requestID))

	c.JSON(http.StatusOK, user)
}
