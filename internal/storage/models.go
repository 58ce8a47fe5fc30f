package storage

// User represents a bot user. Created on first contact; the identity fields
// (TgID, VpnID) are immutable afterward. VpnID doubles as the remote client
// id/sub-id and the subscription key path segment, so it must never be
// regenerated while a remote client exists.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	TgID      int64  `gorm:"uniqueIndex;not null"`
	VpnID     string `gorm:"uniqueIndex;size:36;not null"`
	FirstName string
	Username  string
	ServerID  *uint
	CreatedAt int64 `gorm:"autoCreateTime"`
}

// Promocode represents a one-shot subscription grant. Traffic is in GB,
// Duration in days. Consumption is final.
type Promocode struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"uniqueIndex;not null"`
	Traffic     int    `gorm:"not null"`
	Duration    int    `gorm:"not null"`
	IsActivated bool   `gorm:"default:false;not null"`
	ActivatedBy *int64
	CreatedAt   int64 `gorm:"autoCreateTime"`
}

// Server represents a VPN server available for client placement
type Server struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex;not null"`
	Host         string `gorm:"not null"`
	Subscription string `gorm:"not null"`
	MaxClients   int    `gorm:"not null"`
	Online       bool   `gorm:"default:false;not null"`
}
