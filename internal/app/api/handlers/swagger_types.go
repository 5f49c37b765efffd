package handlers

import (
	paysvc "github.com/novaai/backend/internal/app/service/payment"
	"github.com/novaai/backend/internal/app/service/statistics"
	usersvc "github.com/novaai/backend/internal/app/service/user"
	"github.com/novaai/backend/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespListPayments wraps ScanPaymentsResponse in the standard envelope.
type RespListPayments struct {
	Code    response.APIResponseCode    `json:"code"`
	Message string                      `json:"message"`
	Data    paysvc.ScanPaymentsResponse `json:"data"`
}

// RespPaymentStatistic wraps PaymentStatisticResponse in the standard envelope.
type RespPaymentStatistic struct {
	Code    response.APIResponseCode            `json:"code"`
	Message string                              `json:"message"`
	Data    statistics.PaymentStatisticResponse `json:"data"`
}

// RespUserProfile wraps the resolved profile in the standard envelope.
type RespUserProfile struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    usersvc.Profile          `json:"data"`
}

// RespCreateOAuthSession wraps CreateOAuthSessionResponse in the standard envelope.
type RespCreateOAuthSession struct {
	Code    response.APIResponseCode   `json:"code"`
	Message string                     `json:"message"`
	Data    CreateOAuthSessionResponse `json:"data"`
}

// RespConsumeOAuthSession wraps ConsumeOAuthSessionResponse in the standard envelope.
type RespConsumeOAuthSession struct {
	Code    response.APIResponseCode    `json:"code"`
	Message string                      `json:"message"`
	Data    ConsumeOAuthSessionResponse `json:"data"`
}

// RespBillingSummary wraps the billing run summary in the standard envelope.
type RespBillingSummary struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}
