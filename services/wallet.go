package services

import (
	"errors"

	"github.com/sattawala/sattawala-backend/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Credit adds amount paise to the user's balance inside tx and writes a
// ledger entry. Every balance mutation in the system goes through Credit
// or Debit so the transactions table stays a complete ledger. Amounts are
// strictly positive: a credit can never lower a balance.
func Credit(tx *gorm.DB, userID uint, amount int64, txType models.TransactionType, reference string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	res := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}
	return writeLedger(tx, userID, amount, txType, reference)
}

// Debit removes amount paise. The balance precondition lives in the UPDATE's
// WHERE clause, so a concurrent debit can never drive the balance negative:
// the statement either applies in full or matches no row.
func Debit(tx *gorm.DB, userID uint, amount int64, txType models.TransactionType, reference string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	res := tx.Model(&models.User{}).Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, ErrUserNotFound
		}
		return 0, ErrInsufficientBalance
	}
	return writeLedger(tx, userID, -amount, txType, reference)
}

func writeLedger(tx *gorm.DB, userID uint, amount int64, txType models.TransactionType, reference string) (int64, error) {
	var user models.User
	if err := tx.Select("balance").First(&user, userID).Error; err != nil {
		return 0, err
	}
	entry := models.Transaction{
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: user.Balance,
		Reference:    reference,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, err
	}
	return user.Balance, nil
}
