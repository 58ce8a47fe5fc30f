package constants

const (
	// Traffic constants
	BytesInGB = 1024 * 1024 * 1024

	// Duration constants
	MillisecondsInDay = 24 * 60 * 60 * 1000

	// Unlimited is the sentinel for "no quota" / "no expiry" in derived views
	Unlimited = -1

	// Promocode constants
	MinPromocodeLength = 4
	MaxPromocodeLength = 32

	// Network constants
	DefaultTimeout          = 30
	DefaultRetryCount       = 3
	DefaultRetryWaitTime    = 5
	DefaultRetryMaxWaitTime = 20

	// Cache constants
	CacheExpiration      = 30 // minutes
	CacheCleanupInterval = 10 // minutes

	// Formatting constants
	TimestampFormat = "2006-01-02 15:04:05"
	DateFormat      = "2006-01-02"
)
