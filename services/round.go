package services

import (
	"errors"
	"fmt"

	"github.com/sattawala/sattawala-backend/models"
	"github.com/sattawala/sattawala-backend/utils/logger"

	"gorm.io/gorm"
)

var ErrNoOpenRound = errors.New("no open round")

// OpenNewRound force-closes any currently open round and creates a fresh one.
//
// Pending bets under a force-closed round are not silently dropped: each is
// marked voided and its stake refunded to the account, with a ledger entry.
// After this operation exactly one round is open and the settings pointer
// names it.
func OpenNewRound(db *gorm.DB) (*models.Round, error) {
	var newRound models.Round
	err := db.Transaction(func(tx *gorm.DB) error {
		// Lock the settings row so two lifecycle calls cannot both create
		// an "only" open round.
		settings, err := fetchSettings(lockForUpdate(tx))
		if err != nil {
			return err
		}

		// The pointer names the open round, but sweep by status as well so
		// a round orphaned by bad data still gets closed out.
		var openRounds []models.Round
		if err := tx.Where("status = ?", models.RoundOpen).Find(&openRounds).Error; err != nil {
			return err
		}
		for _, r := range openRounds {
			if err := voidRoundBets(tx, r.ID); err != nil {
				return err
			}
			if err := tx.Model(&models.Round{}).Where("id = ?", r.ID).
				Update("status", models.RoundClosed).Error; err != nil {
				return err
			}
			logger.Warnf("round %d force-closed without settlement", r.ID)
		}

		newRound = models.Round{Status: models.RoundOpen}
		if err := tx.Create(&newRound).Error; err != nil {
			return err
		}
		return tx.Model(settings).Update("current_round_id", newRound.ID).Error
	})
	if err != nil {
		return nil, err
	}
	InvalidateSettingsCache()

	logger.Infof("round %d opened", newRound.ID)
	Feed.BroadcastRoundOpened(&newRound)
	return &newRound, nil
}

// voidRoundBets marks every pending bet of the round voided and refunds the
// stake. Missing accounts are logged and skipped, same policy as settlement.
func voidRoundBets(tx *gorm.DB, roundID uint) error {
	var bets []models.Bet
	if err := tx.Where("round_id = ? AND result = ?", roundID, models.BetPending).Find(&bets).Error; err != nil {
		return err
	}
	for _, bet := range bets {
		res := tx.Model(&models.Bet{}).
			Where("id = ? AND result = ?", bet.ID, models.BetPending).
			Update("result", models.BetVoided)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}
		_, err := Credit(tx, bet.UserID, bet.Amount, models.BetVoidRefundTransaction, fmt.Sprintf("bet:%d", bet.ID))
		if errors.Is(err, ErrUserNotFound) {
			logger.Errorf("void refund: user %d missing for bet %d (%d paise)", bet.UserID, bet.ID, bet.Amount)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// CurrentRound returns the open round, or ErrNoOpenRound.
func CurrentRound(db *gorm.DB) (*models.Round, error) {
	settings, err := GetSettings(db)
	if err != nil {
		return nil, err
	}
	if settings.CurrentRoundID == nil {
		return nil, ErrNoOpenRound
	}
	var round models.Round
	if err := db.First(&round, *settings.CurrentRoundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenRound
		}
		return nil, err
	}
	if round.Status != models.RoundOpen {
		return nil, ErrNoOpenRound
	}
	return &round, nil
}

// CurrentRoundBets lists the pending bets of the open round.
func CurrentRoundBets(db *gorm.DB) (*models.Round, []models.Bet, error) {
	round, err := CurrentRound(db)
	if err != nil {
		return nil, nil, err
	}
	var bets []models.Bet
	if err := db.Where("round_id = ?", round.ID).Order("id").Find(&bets).Error; err != nil {
		return nil, nil, err
	}
	return round, bets, nil
}
