package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `json:"name"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	Mobile       *string   `gorm:"uniqueIndex" json:"mobile,omitempty"` // nullable so accounts without one don't collide
	PasswordHash string    `json:"-"`
	Balance      int64     `json:"-"` // paise
	IsAdmin      bool      `json:"is_admin"`
	ReferralCode string    `gorm:"uniqueIndex" json:"referral_code"`
	ReferredBy   *uint     `json:"referred_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
