package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/novaai/backend/internal/app/service/usage"
	"github.com/novaai/backend/internal/platform/firebaseauth"
	"github.com/novaai/backend/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// UsageStatusResponse is the flat shape the desktop client expects from
// the AI quota endpoints. These predate the response envelope and are
// kept as-is for compatibility.
type UsageStatusResponse struct {
	Success      bool   `json:"success"`
	Plan         string `json:"plan,omitempty"`
	CurrentUsage int64  `json:"currentUsage"`
	Limit        int64  `json:"limit"`
	Remaining    int64  `json:"remaining"`
	CanUse       bool   `json:"canUse"`
	Error        string `json:"error,omitempty"`
}

func usageStatusResponse(st *usage.Status, success bool) *UsageStatusResponse {
	return &UsageStatusResponse{
		Success:      success,
		Plan:         string(st.Plan),
		CurrentUsage: st.CurrentUsage,
		Limit:        st.Limit,
		Remaining:    st.Remaining,
		CanUse:       st.CanUse,
	}
}

// resolveUserID identifies the caller. A presented bearer token must
// verify; without one the first non-empty fallback value wins. Callers
// pass the id parameters their client actually sends, in precedence
// order.
func resolveUserID(c *gin.Context, verifier firebaseauth.TokenVerifier, fallbacks ...string) (string, error) {
	header := c.GetHeader("Authorization")
	if raw, ok := strings.CutPrefix(header, "Bearer "); ok && raw != "" {
		identity, err := verifier.Verify(c.Request.Context(), raw)
		if err != nil {
			return "", err
		}
		return identity.UID, nil
	}
	for _, uid := range fallbacks {
		if uid != "" {
			return uid, nil
		}
	}
	return "", apperr.ErrUnauthorized
}

func usageErrorStatus(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// @Summary      Check AI call quota
// @Description  Reports the caller's plan, current usage and remaining quota. Resets the counter first when a new billing period has started.
// @Tags         AI
// @Produce      json
// @Param        userId query string false "User id, ignored when a bearer ID token is sent"
// @Success      200  {object}  handlers.UsageStatusResponse
// @Router       /api/ai/check-limit [get]
func ApiCheckLimit(svc *usage.Service, verifier firebaseauth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolveUserID(c, verifier, c.Query("userId"), c.Query("uid"))
		if err != nil {
			c.JSON(usageErrorStatus(err), &UsageStatusResponse{Error: err.Error()})
			return
		}
		st, err := svc.CheckLimit(c.Request.Context(), userID)
		if err != nil {
			c.JSON(usageErrorStatus(err), &UsageStatusResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, usageStatusResponse(st, true))
	}
}

// IncrementUsageRequest is the body the desktop client posts.
type IncrementUsageRequest struct {
	UserID string `json:"userId"`
}

// @Summary      Consume one AI call
// @Description  Atomically consumes one unit of the caller's quota. Returns 429 when the quota is exhausted.
// @Tags         AI
// @Accept       json
// @Produce      json
// @Param        request body handlers.IncrementUsageRequest false "User id, ignored when a bearer ID token is sent"
// @Success      200  {object}  handlers.UsageStatusResponse
// @Failure      429  {object}  handlers.UsageStatusResponse
// @Router       /api/ai/increment-usage [post]
func ApiIncrementUsage(svc *usage.Service, verifier firebaseauth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IncrementUsageRequest
		_ = c.ShouldBindJSON(&req)
		userID, err := resolveUserID(c, verifier, req.UserID, c.Query("userId"), c.Query("uid"))
		if err != nil {
			c.JSON(usageErrorStatus(err), &UsageStatusResponse{Error: err.Error()})
			return
		}
		st, admitted, err := svc.Increment(c.Request.Context(), userID)
		if err != nil {
			c.JSON(usageErrorStatus(err), &UsageStatusResponse{Error: err.Error()})
			return
		}
		if !admitted {
			resp := usageStatusResponse(st, false)
			resp.Error = "usage limit exceeded"
			c.JSON(http.StatusTooManyRequests, resp)
			return
		}
		c.JSON(http.StatusOK, usageStatusResponse(st, true))
	}
}

func RegisterUsageRoutes(r gin.IRouter, svc *usage.Service, verifier firebaseauth.TokenVerifier) {
	// Mount under provided group, expected at "/api/ai"
	r.GET("/check-limit", ApiCheckLimit(svc, verifier))
	r.POST("/increment-usage", ApiIncrementUsage(svc, verifier))
}
