package controllers

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sattawala/sattawala-backend/config"
	"github.com/sattawala/sattawala-backend/models"
	"github.com/sattawala/sattawala-backend/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var userSeq atomic.Uint64

// testDB wires config.DB to a throwaway sqlite database so the handlers
// run against real storage.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	config.DB = db
	services.InvalidateSettingsCache()
	t.Cleanup(func() {
		config.DB = nil
		services.InvalidateSettingsCache()
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, balance int64) *models.User {
	t.Helper()

	n := userSeq.Add(1)
	user := models.User{
		Name:         fmt.Sprintf("user%d", n),
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "x",
		Balance:      balance,
		ReferralCode: fmt.Sprintf("CREF%06d", n),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}
