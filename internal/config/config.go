package config

// Config represents the application configuration
type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	Panel    PanelConfig
	HTTP     HTTPConfig
	LogLevel string
}

// TelegramConfig holds the Telegram bot configuration
type TelegramConfig struct {
	Token    string
	AdminIDs []int64
}

// DatabaseConfig holds the Postgres configuration
type DatabaseConfig struct {
	DSN string
}

// PanelConfig holds the configuration for the 3X-UI panel
type PanelConfig struct {
	APIURL          string
	Username        string
	Password        string
	SubscriptionURL string
	InboundID       int
	LimitIP         int
	Flow            string
}

// HTTPConfig holds the configuration for the HTTP surface
type HTTPConfig struct {
	Addr string
}
