package auth

import (
	"bitwise74/drive-api/app/respond"
	"bitwise74/drive-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func AuthLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))

		respond.BadRequest(c, "Invalid request body")
		return
	}

	user, err := d.Accounts.Authenticate(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	token, err := d.Sessions.Issue(user.Email)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(d.Sessions.TTL().Seconds()),
	})
}
