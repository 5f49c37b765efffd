package handlers

import (
	"net/http"

	"github.com/novaai/backend/internal/app/service/billing"
	"github.com/novaai/backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      Run scheduled billing
// @Description  Charges every due recurring subscription and returns the run summary. Guarded by the trigger token; the cron schedule calls the same service internally.
// @Tags         Billing
// @Produce      json
// @Success      200  {object}  handlers.RespBillingSummary
// @Router       /api/v1/billing/run [post]
func ApiRunBilling(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := svc.Run(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(summary))
	}
}

func RegisterBillingRoutes(r gin.IRouter, svc *billing.Service) {
	// Mount under provided group, expected at "/api/v1/billing"
	r.POST("/run", ApiRunBilling(svc))
}
