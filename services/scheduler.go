package services

import (
	"errors"
	"math/rand"

	"github.com/robfig/cron/v3"
	"github.com/sattawala/sattawala-backend/config"
	"github.com/sattawala/sattawala-backend/utils/logger"
	"gorm.io/gorm"
)

// Result times match the admin panel's reminder schedule: 11:00, 15:00, 21:00.
const resultCronSpec = "0 0 11,15,21 * * *"

// SetupCron starts the scheduled settlement trigger. At each result time the
// open round (if any) settles with a random winning number and the next round
// opens — the same code path the admin announce uses.
func SetupCron(db *gorm.DB) *cron.Cron {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(resultCronSpec, func() {
		AutoSettle(db)
	})
	if err != nil {
		logger.Errorf("cron setup failed: %v", err)
		return c
	}
	c.Start()
	logger.Infof("result scheduler started (%s)", resultCronSpec)
	return c
}

// AutoSettle announces a random winning number and opens the next round.
func AutoSettle(db *gorm.DB) {
	min, max := config.NumberRange()
	winning := min + rand.Intn(max-min+1)

	summary, err := AnnounceResult(db, winning)
	switch {
	case errors.Is(err, ErrNoOpenRound):
		logger.Infof("auto settle: no open round, skipping announce")
	case err != nil:
		logger.Errorf("auto settle failed: %v", err)
		return
	default:
		logger.Infof("auto settle: round %d settled with number %d", summary.RoundID, winning)
	}

	if _, err := OpenNewRound(db); err != nil {
		logger.Errorf("auto settle: failed to open next round: %v", err)
	}
}
