package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CheckAuth sits behind the auth middleware, so reaching it at all
// means the session is valid. Clients use it as the auth gate probe.
func CheckAuth(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user_id":       userID.String(),
	})
}
