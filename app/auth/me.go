package auth

import (
	"bitwise74/drive-api/app/respond"
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/security"
	"net/http"

	"github.com/gin-gonic/gin"
)

func AuthMe(c *gin.Context, d *internal.Deps) {
	user, err := d.Accounts.ByEmail(c.Request.Context(), c.MustGet("email").(string))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// AuthLogout revokes the token used for the request
func AuthLogout(c *gin.Context, d *internal.Deps) {
	claims := c.MustGet("claims").(*security.Claims)

	if err := d.Sessions.Revoke(c.Request.Context(), claims); err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}
