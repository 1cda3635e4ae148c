package services

import (
	"testing"

	"github.com/sattawala/sattawala-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditWritesLedger(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, 100_00)

	newBalance, err := Credit(db, user.ID, 50_00, models.DepositTransaction, "ORDER_1")
	require.NoError(t, err)
	assert.Equal(t, int64(150_00), newBalance)
	assert.Equal(t, int64(150_00), userBalance(t, db, user.ID))

	var entry models.Transaction
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
	assert.Equal(t, models.DepositTransaction, entry.Type)
	assert.Equal(t, int64(50_00), entry.Amount)
	assert.Equal(t, int64(150_00), entry.BalanceAfter)
	assert.Equal(t, "ORDER_1", entry.Reference)
}

func TestCreditUnknownUser(t *testing.T) {
	db := testDB(t)

	_, err := Credit(db, 9999, 10_00, models.DepositTransaction, "x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, 100_00)

	for _, amount := range []int64{0, -50_00} {
		_, err := Credit(db, user.ID, amount, models.BetPayoutTransaction, "bet:1")
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %d", amount)
	}

	// A credit can never lower a balance, and a refused one writes nothing.
	assert.Equal(t, int64(100_00), userBalance(t, db, user.ID))
	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, 100_00)

	for _, amount := range []int64{0, -50_00} {
		_, err := Debit(db, user.ID, amount, models.BetPlaceTransaction, "round:1")
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %d", amount)
	}
	assert.Equal(t, int64(100_00), userBalance(t, db, user.ID))
}

func TestDebit(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, 100_00)

	newBalance, err := Debit(db, user.ID, 30_00, models.BetPlaceTransaction, "round:1")
	require.NoError(t, err)
	assert.Equal(t, int64(70_00), newBalance)

	var entry models.Transaction
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
	assert.Equal(t, int64(-30_00), entry.Amount)
	assert.Equal(t, int64(70_00), entry.BalanceAfter)
}

func TestDebitInsufficientBalance(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, 20_00)

	_, err := Debit(db, user.ID, 20_01, models.BetPlaceTransaction, "round:1")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Balance untouched, no ledger entry written.
	assert.Equal(t, int64(20_00), userBalance(t, db, user.ID))
	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDebitUnknownUser(t *testing.T) {
	db := testDB(t)

	_, err := Debit(db, 9999, 10_00, models.BetPlaceTransaction, "x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLedgerMatchesBalance(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, 0)

	_, err := Credit(db, user.ID, 500_00, models.DepositTransaction, "ORDER_1")
	require.NoError(t, err)
	_, err = Debit(db, user.ID, 120_00, models.BetPlaceTransaction, "round:1")
	require.NoError(t, err)
	_, err = Credit(db, user.ID, 1200_00, models.BetPayoutTransaction, "bet:1")
	require.NoError(t, err)
	_, err = Debit(db, user.ID, 1000_00, models.WithdrawHoldTransaction, "acct")
	require.NoError(t, err)

	assert.Equal(t, userBalance(t, db, user.ID), ledgerSum(t, db, user.ID))
}
