package models

import "time"

const (
	BetPending = "pending"
	BetWin     = "win"
	BetLose    = "lose"
	BetVoided  = "voided" // round force-closed before a result; stake refunded
)

type Bet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	RoundID   uint      `gorm:"index" json:"round_id"`
	Number    int       `json:"number"`
	Amount    int64     `json:"-"`                             // paise
	Result    string    `gorm:"default:pending" json:"result"` // pending | win | lose | voided
	Payout    int64     `json:"-"`                             // paise, 0 unless win
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
