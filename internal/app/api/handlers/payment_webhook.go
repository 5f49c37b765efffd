package handlers

import (
	"net/http"

	"github.com/novaai/backend/internal/app/service/webhook"
	"github.com/novaai/backend/pkg/logctx"
	"github.com/novaai/backend/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary      Payment Webhook
// @Description  Handles asynchronous payment-provider notifications. Always acknowledges with 200 regardless of internal outcome so the provider does not retry-storm.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        payload body webhook.Event true "Provider notification envelope"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payment/webhook [post]
// ApiPaymentWebhook ingests provider notifications
func ApiPaymentWebhook(svc *webhook.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logctx.FromCtx(c, log).Infow("payment_webhook_received")

		raw, err := c.GetRawData()
		if err != nil {
			logctx.FromCtx(c, log).Errorw("payment_webhook_read_error", "error", err.Error())
			c.JSON(http.StatusOK, response.OKT[any](nil))
			return
		}

		svc.Handle(c.Request.Context(), raw)
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterPaymentWebhookRoutes(r gin.IRouter, svc *webhook.Service, log *zap.SugaredLogger) {
	// Mount under provided group, expected at "/api/v1/payment"
	r.POST("/webhook", ApiPaymentWebhook(svc, log))
}
