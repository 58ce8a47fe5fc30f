package helpers

import (
	"fmt"

	"xui-shop-bot/internal/constants"
)

const unlimitedLabel = "∞"

var sizeUnits = []string{"MB", "GB", "TB", "PB"}

// FormatTraffic renders a byte count for display. -1 means unlimited; values
// below one megabyte round up to 1 MB so tiny quotas stay visible.
func FormatTraffic(sizeBytes int64) string {
	if sizeBytes == constants.Unlimited {
		return unlimitedLabel
	}
	if sizeBytes == 0 {
		return "0 MB"
	}

	size := float64(sizeBytes) / (1024 * 1024)
	if size < 1 {
		size = 1
	}

	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}

	if size == float64(int64(size)) {
		return fmt.Sprintf("%d %s", int64(size), sizeUnits[unit])
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}
