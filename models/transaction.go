package models

import "time"

type TransactionType string

const (
	SignupBonusTransaction    TransactionType = "signup_bonus"
	ReferralBonusTransaction  TransactionType = "referral_bonus"
	BetPlaceTransaction       TransactionType = "bet_place"
	BetPayoutTransaction      TransactionType = "bet_payout"
	BetVoidRefundTransaction  TransactionType = "bet_void_refund"
	DepositTransaction        TransactionType = "deposit"
	WithdrawHoldTransaction   TransactionType = "withdraw_hold"
	WithdrawRefundTransaction TransactionType = "withdraw_refund"
)

// Transaction is one ledger entry per balance mutation. Amount is signed
// paise (negative for debits); BalanceAfter is the balance the mutation
// left behind.
type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"index" json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"-"`         // paise, signed
	BalanceAfter int64           `json:"-"`         // paise
	Reference    string          `json:"reference"` // bet id, round id, order id...
	CreatedAt    time.Time       `json:"created_at"`
}
