// Package apperr defines the service-wide error taxonomy. Handlers map
// these sentinels to response codes; services wrap them with context via
// fmt.Errorf("...: %w", ...).
package apperr

import "errors"

var (
	// ErrUnauthorized means a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound means a missing session, payment, or user.
	ErrNotFound = errors.New("not found")
	// ErrExpired means a session TTL has elapsed.
	ErrExpired = errors.New("expired")
	// ErrValidation means a required field is missing or malformed.
	ErrValidation = errors.New("validation error")
	// ErrUpstream means a payment-gateway call failed.
	ErrUpstream = errors.New("upstream failure")
)
