package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	UpiPending   = "pending"
	UpiApproved  = "approved"
	UpiRejected  = "rejected"
	UpiCompleted = "completed" // settled by gateway verify/webhook, not by admin
)

// UpiPaymentRequest covers both flows the app supports: a mock gateway
// session (OrderID set, no UTR yet) and a manual UTR submission reviewed
// by an admin.
type UpiPaymentRequest struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	Amount      int64          `json:"-"`                          // paise
	Utr         string         `gorm:"index" json:"utr,omitempty"` // duplicate per user rejected in the handler
	OrderID     string         `gorm:"index" json:"order_id,omitempty"`
	Status      string         `gorm:"default:pending" json:"status"`
	AdminNote   string         `json:"admin_note,omitempty"`
	WebhookData datatypes.JSON `json:"-"` // raw gateway callback payload
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
