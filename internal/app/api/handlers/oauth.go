package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/novaai/backend/internal/app/service/oauthsession"
	"github.com/novaai/backend/pkg/apperr"
	cfgpkg "github.com/novaai/backend/pkg/config"
	"github.com/novaai/backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateOAuthSessionResponse struct {
	SessionID string `json:"sessionId"`
	LoginURL  string `json:"loginUrl"`
}

// ConsumeOAuthSessionResponse is returned while the session is pending
// and once it completes. Identity is nil until completion.
type ConsumeOAuthSessionResponse struct {
	Status   string                 `json:"status"`
	Identity *oauthsession.Identity `json:"identity,omitempty"`
}

func oauthErrorStatus(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrExpired):
		return http.StatusGone
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// @Summary      Create OAuth session
// @Description  Opens a pending login session for the desktop client and returns the web login URL to open in a browser.
// @Tags         OAuth
// @Produce      json
// @Success      200  {object}  handlers.RespCreateOAuthSession
// @Router       /api/v1/oauth/session [post]
func ApiCreateOAuthSession(svc *oauthsession.Service, cfg *cfgpkg.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := svc.Create(c.Request.Context())
		if err != nil {
			c.JSON(oauthErrorStatus(err), response.ErrorT[any](response.CodeFor(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(&CreateOAuthSessionResponse{
			SessionID: session.ID,
			LoginURL:  fmt.Sprintf("%s?session=%s", cfg.OAuth.LoginURL, session.ID),
		}))
	}
}

// @Summary      Complete OAuth session
// @Description  Attaches the logged-in identity to a pending session. Called by the web app after login succeeds.
// @Tags         OAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "Session id"
// @Param        request body oauthsession.CompleteInput true "Resolved identity"
// @Success      200  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Failure      410  {object}  handlers.RespOK
// @Router       /api/v1/oauth/session/{id}/complete [post]
func ApiCompleteOAuthSession(svc *oauthsession.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in oauthsession.CompleteInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := svc.Complete(c.Request.Context(), c.Param("id"), &in); err != nil {
			c.JSON(oauthErrorStatus(err), response.ErrorT[any](response.CodeFor(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Poll OAuth session
// @Description  Polls a session. Pending sessions report waiting; a completed session returns the identity exactly once, then the record is gone. Expired sessions report 410.
// @Tags         OAuth
// @Produce      json
// @Param        id path string true "Session id"
// @Success      200  {object}  handlers.RespConsumeOAuthSession
// @Failure      404  {object}  handlers.RespOK
// @Failure      410  {object}  handlers.RespOK
// @Router       /api/v1/oauth/session/{id} [get]
func ApiConsumeOAuthSession(svc *oauthsession.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := svc.Consume(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(oauthErrorStatus(err), response.ErrorT[any](response.CodeFor(err), err.Error()))
			return
		}
		if identity == nil {
			c.JSON(http.StatusOK, response.OKT(&ConsumeOAuthSessionResponse{Status: "pending"}))
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ConsumeOAuthSessionResponse{Status: "completed", Identity: identity}))
	}
}

func RegisterOAuthRoutes(r gin.IRouter, svc *oauthsession.Service, cfg *cfgpkg.Config) {
	// Mount under provided group, expected at "/api/v1/oauth"
	r.POST("/session", ApiCreateOAuthSession(svc, cfg))
	r.POST("/session/:id/complete", ApiCompleteOAuthSession(svc))
	r.GET("/session/:id", ApiConsumeOAuthSession(svc))
}
