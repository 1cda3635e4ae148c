package models

import "time"

const (
	RoundOpen   = "open"
	RoundClosed = "closed"
)

type Round struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Status        string     `gorm:"index" json:"status"` // open | closed
	WinningNumber *int       `json:"winning_number"`      // set exactly once, at close
	TotalBets     int64      `json:"-"`                   // paise, filled at settlement
	TotalPayout   int64      `json:"-"`
	Profit        int64      `json:"-"`
	SettledAt     *time.Time `json:"settled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
