package config

import (
	"log"
	"os"
	"strconv"

	"github.com/sattawala/sattawala-backend/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// SetupDatabase connects to DB and runs migrations
func SetupDatabase() *gorm.DB {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("[FATAL] DATABASE_URL is required in .env")
	}

	// Connect to DB
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("[FATAL] Failed to connect to DB: %v", err)
	}
	DB = db

	if err := Migrate(db); err != nil {
		log.Fatalf("[FATAL] Migration failed: %v", err)
	}

	log.Println("✅ Database migration completed")
	return db
}

// Migrate runs AutoMigrate for every persisted model. Shared with the
// migrate binary and the test DB setup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Round{},
		&models.Bet{},
		&models.PlatformSettings{},
		&models.Transaction{},
		&models.UpiPaymentRequest{},
		&models.WithdrawRequest{},
	)
}

// JWTSecret returns the token signing key. Startup fails without it.
func JWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("[FATAL] JWT_SECRET is required in .env")
	}
	return []byte(secret)
}

// NumberRange is the authoritative valid range for bet numbers and winning
// numbers. Both placement and settlement validate against the same pair.
func NumberRange() (int, int) {
	return envInt("NUMBER_MIN", 0), envInt("NUMBER_MAX", 9)
}

// SignupBonusPaise is credited to every new account at registration.
func SignupBonusPaise() int64 {
	return int64(envInt("SIGNUP_BONUS", 25)) * 100
}

// ReferralBonusPaise is credited to the referrer when a referred user signs up.
func ReferralBonusPaise() int64 {
	return int64(envInt("REFERRAL_BONUS", 25)) * 100
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("[FATAL] %s must be an integer, got %q", key, v)
	}
	return n
}
