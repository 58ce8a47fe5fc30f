package helpers

import (
	"fmt"
	"strings"
	"time"

	"xui-shop-bot/internal/constants"
)

// FormatExpiry renders the time left until an epoch-millisecond expiry.
// -1 means the subscription never expires.
func FormatExpiry(expiryTime int64) string {
	return formatExpiryAt(expiryTime, time.Now().UTC())
}

// HasExpired reports whether an epoch-millisecond expiry is in the past.
// A -1 expiry never expires.
func HasExpired(expiryTime int64) bool {
	if expiryTime == constants.Unlimited {
		return false
	}
	return time.Now().UTC().UnixMilli() > expiryTime
}

func formatExpiryAt(expiryTime int64, now time.Time) string {
	if expiryTime == constants.Unlimited {
		return unlimitedLabel
	}

	left := time.UnixMilli(expiryTime).Sub(now)
	if left <= 0 {
		return "expired"
	}

	days := int64(left.Hours()) / 24
	hours := int64(left.Hours()) % 24
	minutes := int64(left.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	return strings.Join(parts, " ")
}
