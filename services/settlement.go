package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sattawala/sattawala-backend/config"
	"github.com/sattawala/sattawala-backend/metrics"
	"github.com/sattawala/sattawala-backend/models"
	"github.com/sattawala/sattawala-backend/utils/logger"
	"github.com/sattawala/sattawala-backend/utils/money"

	"gorm.io/gorm"
)

// SettlementSummary reports the aggregates of one settled round.
// Money fields are paise. FailedCredits lists bets whose winner credit
// could not be applied (missing account) — unresolved money that needs
// manual follow-up.
type SettlementSummary struct {
	RoundID       uint
	WinningNumber int
	TotalBets     int64
	TotalPayout   int64
	Profit        int64
	WinCount      int
	LoseCount     int
	FailedCredits []uint
}

// AnnounceResult closes the open round and resolves every bet under it.
//
// Everything runs in a single DB transaction. The close itself is a CAS on
// status=open: a second announce (admin double-click, or the cron trigger
// racing the admin) matches zero rows and fails with ErrNoOpenRound instead
// of crediting anyone twice. A crash mid-loop rolls the whole round back to
// open with every bet still pending.
func AnnounceResult(db *gorm.DB, winningNumber int) (*SettlementSummary, error) {
	start := time.Now()
	outcome := "fail"
	defer func() { metrics.RecordSettlement(outcome, start) }()

	min, max := config.NumberRange()
	if winningNumber < min || winningNumber > max {
		return nil, fmt.Errorf("%w (%d-%d)", ErrInvalidNumber, min, max)
	}

	var summary SettlementSummary
	err := db.Transaction(func(tx *gorm.DB) error {
		settings, err := fetchSettings(tx)
		if err != nil {
			return err
		}
		if settings.CurrentRoundID == nil {
			return ErrNoOpenRound
		}
		roundID := *settings.CurrentRoundID

		now := time.Now()
		res := tx.Model(&models.Round{}).
			Where("id = ? AND status = ?", roundID, models.RoundOpen).
			Updates(map[string]interface{}{
				"winning_number": winningNumber,
				"status":         models.RoundClosed,
				"settled_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoOpenRound
		}

		var bets []models.Bet
		if err := tx.Where("round_id = ? AND result = ?", roundID, models.BetPending).
			Order("id").Find(&bets).Error; err != nil {
			return err
		}

		summary = SettlementSummary{RoundID: roundID, WinningNumber: winningNumber}
		for _, bet := range bets {
			summary.TotalBets += bet.Amount

			if bet.Number == winningNumber {
				payout := money.MultiplyPaise(bet.Amount, settings.PayoutMultiplier)
				res := tx.Model(&models.Bet{}).
					Where("id = ? AND result = ?", bet.ID, models.BetPending).
					Updates(map[string]interface{}{"result": models.BetWin, "payout": payout})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					continue // already resolved, never pay twice
				}
				summary.WinCount++
				summary.TotalPayout += payout

				_, err := Credit(tx, bet.UserID, payout, models.BetPayoutTransaction, fmt.Sprintf("bet:%d", bet.ID))
				if errors.Is(err, ErrUserNotFound) {
					// Best-effort per bet: one orphaned account must not
					// block the rest of the round. Logged loudly — this is
					// money owed with nowhere to go.
					logger.Errorf("settlement: failed to credit user %d for bet %d (payout %d paise): %v",
						bet.UserID, bet.ID, payout, err)
					summary.FailedCredits = append(summary.FailedCredits, bet.ID)
					continue
				}
				if err != nil {
					return err
				}
			} else {
				res := tx.Model(&models.Bet{}).
					Where("id = ? AND result = ?", bet.ID, models.BetPending).
					Updates(map[string]interface{}{"result": models.BetLose, "payout": 0})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected > 0 {
					summary.LoseCount++
				}
			}
		}

		summary.Profit = summary.TotalBets - summary.TotalPayout

		if err := tx.Model(&models.Round{}).Where("id = ?", roundID).
			Updates(map[string]interface{}{
				"total_bets":   summary.TotalBets,
				"total_payout": summary.TotalPayout,
				"profit":       summary.Profit,
			}).Error; err != nil {
			return err
		}

		// No round is open until the lifecycle manager creates one.
		return tx.Model(settings).Update("current_round_id", nil).Error
	})
	if err != nil {
		return nil, err
	}
	InvalidateSettingsCache()

	outcome = "success"
	logger.Infof("round %d settled: winning=%d bets=%d payout=%d profit=%d wins=%d losses=%d failed_credits=%d",
		summary.RoundID, summary.WinningNumber, summary.TotalBets, summary.TotalPayout,
		summary.Profit, summary.WinCount, summary.LoseCount, len(summary.FailedCredits))
	Feed.BroadcastResultAnnounced(&summary)
	return &summary, nil
}
