package models

import "time"

// PlatformSettings is a singleton row, created lazily with defaults.
// CurrentRoundID is the lifecycle manager's pointer to the one open round;
// nil means no round is open and bet placement must fail.
type PlatformSettings struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	IsActive         bool      `gorm:"default:true" json:"isActive"`
	MinBet           int64     `json:"-"` // paise
	MaxBet           int64     `json:"-"` // paise
	PayoutMultiplier float64   `json:"payoutMultiplier"`
	MaintenanceMode  bool      `json:"maintenanceMode"`
	CurrentRoundID   *uint     `json:"currentRoundId"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
