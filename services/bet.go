package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sattawala/sattawala-backend/config"
	"github.com/sattawala/sattawala-backend/metrics"
	"github.com/sattawala/sattawala-backend/models"

	"gorm.io/gorm"
)

var (
	ErrPlatformClosed  = errors.New("betting is currently closed")
	ErrInvalidNumber   = errors.New("number outside valid range")
	ErrBetBelowMinimum = errors.New("bet amount below minimum")
	ErrBetAboveMaximum = errors.New("bet amount above maximum")
)

// PlacedBet is the placement result: the recorded bet plus the balance the
// debit left behind (paise).
type PlacedBet struct {
	Bet        models.Bet
	NewBalance int64
}

// PlaceBet records a wager against the currently open round.
//
// The whole effect is one DB transaction: locate the round via the settings
// pointer, lock its row, debit the stake (CAS on balance), insert the bet and
// its ledger entry. Any failure rolls the unit back, so there is never a
// partial debit and no bet can attach to a round that settlement has closed.
func PlaceBet(db *gorm.DB, userID uint, number int, amount int64) (*PlacedBet, error) {
	start := time.Now()
	result := "fail"
	defer func() { metrics.RecordBet(result, start) }()

	min, max := config.NumberRange()
	if number < min || number > max {
		return nil, fmt.Errorf("%w (%d-%d)", ErrInvalidNumber, min, max)
	}
	if amount <= 0 {
		return nil, ErrBetBelowMinimum
	}

	var placed PlacedBet
	err := db.Transaction(func(tx *gorm.DB) error {
		settings, err := fetchSettings(tx)
		if err != nil {
			return err
		}
		if !settings.IsActive || settings.MaintenanceMode {
			return ErrPlatformClosed
		}
		if amount < settings.MinBet {
			return ErrBetBelowMinimum
		}
		if amount > settings.MaxBet {
			return ErrBetAboveMaximum
		}
		if settings.CurrentRoundID == nil {
			return ErrNoOpenRound
		}

		// Serialize with settlement on the round row.
		var round models.Round
		if err := lockForUpdate(tx).First(&round, *settings.CurrentRoundID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoOpenRound
			}
			return err
		}
		if round.Status != models.RoundOpen {
			return ErrNoOpenRound
		}

		newBalance, err := Debit(tx, userID, amount, models.BetPlaceTransaction, fmt.Sprintf("round:%d", round.ID))
		if err != nil {
			return err
		}

		bet := models.Bet{
			UserID:  userID,
			RoundID: round.ID,
			Number:  number,
			Amount:  amount,
			Result:  models.BetPending,
			Payout:  0,
		}
		if err := tx.Create(&bet).Error; err != nil {
			return err
		}

		placed = PlacedBet{Bet: bet, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = "success"
	return &placed, nil
}

// UserBets lists a user's bets, newest first.
func UserBets(db *gorm.DB, userID uint, limit int) ([]models.Bet, error) {
	var bets []models.Bet
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&bets).Error
	return bets, err
}
