package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomerKey(t *testing.T) {
	key := NewCustomerKey("user_123")
	assert.Equal(t, "cus_v1_user_123", key)

	uid, err := ParseCustomerKey(key)
	require.NoError(t, err)
	assert.Equal(t, "user_123", uid)
}

func TestParseCustomerKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"structured key", "cus_v1_abc123", "abc123", false},
		{"legacy key with suffix", "customer_abc123_20240101", "abc123", false},
		{"legacy key without suffix", "customer_abc123", "abc123", false},
		{"empty structured uid", "cus_v1_", "", true},
		{"bare prefix", "customer_", "", true},
		{"email-looking string", "someone@example.com", "", true},
		{"random string", "billing_xyz", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, err := ParseCustomerKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, uid)
		})
	}
}
