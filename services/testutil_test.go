package services

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/sattawala/sattawala-backend/config"
	"github.com/sattawala/sattawala-backend/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var userSeq atomic.Uint64

// testDB opens a throwaway sqlite database for one test. A file under
// t.TempDir() rather than :memory: so every connection in the pool sees
// the same database.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	InvalidateSettingsCache()
	t.Cleanup(InvalidateSettingsCache)
	return db
}

// createUser inserts a user with the given balance in paise.
func createUser(t *testing.T, db *gorm.DB, balance int64) *models.User {
	t.Helper()

	n := userSeq.Add(1)
	user := models.User{
		Name:         fmt.Sprintf("user%d", n),
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "x",
		Balance:      balance,
		ReferralCode: fmt.Sprintf("REF%06d", n),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// openRound creates a fresh open round via the lifecycle path.
func openRound(t *testing.T, db *gorm.DB) *models.Round {
	t.Helper()

	round, err := OpenNewRound(db)
	require.NoError(t, err)
	return round
}

// userBalance reloads the stored balance in paise.
func userBalance(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()

	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	return user.Balance
}

// ledgerSum adds up the signed ledger amounts for a user.
func ledgerSum(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()

	var sum int64
	err := db.Model(&models.Transaction{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error
	require.NoError(t, err)
	return sum
}
