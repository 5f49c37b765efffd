package handlers

import (
	"net/http"

	paysvc "github.com/novaai/backend/internal/app/service/payment"
	"github.com/novaai/backend/internal/app/service/statistics"
	usersvc "github.com/novaai/backend/internal/app/service/user"
	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      List Payments (Admin)
// @Description  Retrieves a paginated and filterable list of payment records.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body payment.ScanPaymentsRequest true "List payments request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListPayments
// @Router       /api/v1/admin/list_payments [post]
func ApiListPayments(svc *paysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req paysvc.ScanPaymentsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.ScanPayments(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type DeletePaymentRequest struct {
	PaymentID        string `json:"payment_id"`
	CancelAtProvider bool   `json:"cancel_at_provider"`
	Reason           string `json:"reason"`
}

// @Summary      Delete Payment (Admin)
// @Description  Removes a payment record, optionally cancelling it at the gateway first. The gateway cancel is best-effort.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.DeletePaymentRequest true "Delete payment request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/delete_payment [post]
func ApiDeletePayment(svc *paysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DeletePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.PaymentID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing payment_id"))
			return
		}
		if err := svc.Delete(c.Request.Context(), req.PaymentID, req.CancelAtProvider, req.Reason); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.CodeFor(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

type SetSubscriptionRequest struct {
	UserID       string               `json:"user_id"`
	Plan         string               `json:"plan"`
	Subscription *models.Subscription `json:"subscription"`
}

// @Summary      Set Subscription (Admin)
// @Description  Replaces a user's subscription sub-object and root plan directly, bypassing the webhook state machine.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.SetSubscriptionRequest true "Subscription override"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/set_subscription [post]
func ApiSetSubscription(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.UserID == "" || req.Subscription == nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id or subscription"))
			return
		}
		if err := svc.SetSubscription(c.Request.Context(), req.UserID, req.Subscription, req.Plan); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.CodeFor(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Get Payment Statistics (Admin)
// @Description  Retrieves daily payment and subscription statistics.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.PaymentStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespPaymentStatistic
// @Router       /api/v1/admin/get_payment_statistic [post]
func ApiGetPaymentStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.PaymentStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetPaymentStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, pay *paysvc.Service, users *usersvc.Service, stats *statistics.Service) {
	r.POST("/list_payments", ApiListPayments(pay))
	r.POST("/delete_payment", ApiDeletePayment(pay))
	r.POST("/set_subscription", ApiSetSubscription(users))
	r.POST("/get_payment_statistic", ApiGetPaymentStatistic(stats))
}
