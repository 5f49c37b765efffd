package response

import (
	"errors"

	"github.com/novaai/backend/pkg/apperr"
)

type APIResponseCode int

const (
	APIResponseCodeOK           APIResponseCode = 0
	APIResponseCodeBadRequest   APIResponseCode = 40000
	APIResponseCodeUnauthorized APIResponseCode = 40100
	APIResponseCodeNotFound     APIResponseCode = 40400
	APIResponseCodeExpired      APIResponseCode = 41000
	APIResponseCodeError        APIResponseCode = 50000
	APIResponseCodeUpstream     APIResponseCode = 50200
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:           "ok",
	APIResponseCodeBadRequest:   "bad request",
	APIResponseCodeUnauthorized: "unauthorized",
	APIResponseCodeNotFound:     "not found",
	APIResponseCodeExpired:      "expired",
	APIResponseCodeError:        "unexpected error",
	APIResponseCodeUpstream:     "upstream failure",
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}

// CodeFor classifies an error against the apperr taxonomy.
func CodeFor(err error) APIResponseCode {
	switch {
	case err == nil:
		return APIResponseCodeOK
	case errors.Is(err, apperr.ErrValidation):
		return APIResponseCodeBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return APIResponseCodeUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		return APIResponseCodeNotFound
	case errors.Is(err, apperr.ErrExpired):
		return APIResponseCodeExpired
	case errors.Is(err, apperr.ErrUpstream):
		return APIResponseCodeUpstream
	default:
		return APIResponseCodeError
	}
}
