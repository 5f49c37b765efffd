package handlers

import (
	"net/http"

	usersvc "github.com/novaai/backend/internal/app/service/user"
	"github.com/novaai/backend/internal/platform/firebaseauth"
	"github.com/novaai/backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      Get user profile
// @Description  Returns the caller's account with its tier resolved and current quota usage.
// @Tags         User
// @Produce      json
// @Param        user_id query string false "User id, ignored when a bearer ID token is sent"
// @Success      200  {object}  handlers.RespUserProfile
// @Router       /api/v1/user/profile [get]
func ApiGetProfile(svc *usersvc.Service, verifier firebaseauth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolveUserID(c, verifier, c.Query("user_id"), c.Query("userId"), c.Query("uid"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
			return
		}
		profile, err := svc.GetProfile(c.Request.Context(), userID)
		if err != nil {
			c.JSON(usageErrorStatus(err), response.ErrorT[any](response.CodeFor(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(profile))
	}
}

func RegisterUserRoutes(r gin.IRouter, svc *usersvc.Service, verifier firebaseauth.TokenVerifier) {
	// Mount under provided group, expected at "/api/v1/user"
	r.GET("/profile", ApiGetProfile(svc, verifier))
}
