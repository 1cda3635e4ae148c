package models

import "time"

const (
	WithdrawPending  = "pending"
	WithdrawApproved = "approved"
	WithdrawRejected = "rejected"
)

// WithdrawRequest holds the user's stake from submission time: the amount
// is debited when the request is created and refunded on rejection.
type WithdrawRequest struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index" json:"user_id"`
	Name          string     `json:"name"`
	AccountNumber string     `json:"account_number"`
	Ifsc          string     `json:"ifsc"`
	Amount        int64      `json:"-"` // paise
	Status        string     `gorm:"default:pending" json:"status"`
	AdminNote     string     `json:"admin_note,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
