package response

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novaai/backend/pkg/apperr"
)

func TestCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want APIResponseCode
	}{
		{"nil", nil, APIResponseCodeOK},
		{"validation", apperr.ErrValidation, APIResponseCodeBadRequest},
		{"unauthorized", apperr.ErrUnauthorized, APIResponseCodeUnauthorized},
		{"not found", apperr.ErrNotFound, APIResponseCodeNotFound},
		{"expired", apperr.ErrExpired, APIResponseCodeExpired},
		{"upstream", apperr.ErrUpstream, APIResponseCodeUpstream},
		{"wrapped", fmt.Errorf("loading user: %w", apperr.ErrNotFound), APIResponseCodeNotFound},
		{"unknown", fmt.Errorf("boom"), APIResponseCodeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeFor(tt.err))
		})
	}
}

func TestEnvelopes(t *testing.T) {
	ok := OKT(map[string]string{"k": "v"})
	assert.Equal(t, APIResponseCodeOK, ok.Code)
	assert.Equal(t, "ok", ok.Message)
	assert.Equal(t, "v", ok.Data["k"])

	er := ErrorT[any](APIResponseCodeNotFound, "session gone")
	assert.Equal(t, APIResponseCodeNotFound, er.Code)
	assert.Equal(t, "not found", er.Message)
	assert.Equal(t, "session gone", er.Data)
}
