package types

import (
	"fmt"
	"strings"
)

// Customer keys identify a user's saved payment instrument at the
// gateway. Keys issued by this service use a versioned structured format
// so webhook handling never has to guess which user a key belongs to.
// The previous deployment issued keys as "customer_<uid>_<suffix>"; those
// still arrive in webhook events and are parsed by prefix.
const customerKeyPrefixV1 = "cus_v1_"

const legacyCustomerKeyPrefix = "customer_"

// NewCustomerKey issues a structured customer key for a user.
func NewCustomerKey(userID string) string {
	return customerKeyPrefixV1 + userID
}

// ParseCustomerKey extracts the owning user id from a customer key.
// Returns an error when the key matches neither the structured nor the
// legacy format; callers must abandon processing in that case.
func ParseCustomerKey(key string) (string, error) {
	if uid, ok := strings.CutPrefix(key, customerKeyPrefixV1); ok && uid != "" {
		return uid, nil
	}
	if rest, ok := strings.CutPrefix(key, legacyCustomerKeyPrefix); ok {
		if uid, _, found := strings.Cut(rest, "_"); found && uid != "" {
			return uid, nil
		}
		if rest != "" {
			return rest, nil
		}
	}
	return "", fmt.Errorf("unrecognized customer key format: %q", key)
}
