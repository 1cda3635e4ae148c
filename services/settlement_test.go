package services

import (
	"sync"
	"testing"

	"github.com/sattawala/sattawala-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnounceResult(t *testing.T) {
	db := testDB(t)
	u1 := createUser(t, db, 1000_00)
	u2 := createUser(t, db, 1000_00)
	u3 := createUser(t, db, 1000_00)
	round := openRound(t, db)

	_, err := PlaceBet(db, u1.ID, 4, 100_00)
	require.NoError(t, err)
	_, err = PlaceBet(db, u2.ID, 7, 50_00)
	require.NoError(t, err)
	_, err = PlaceBet(db, u3.ID, 4, 200_00)
	require.NoError(t, err)

	summary, err := AnnounceResult(db, 4)
	require.NoError(t, err)

	assert.Equal(t, round.ID, summary.RoundID)
	assert.Equal(t, 4, summary.WinningNumber)
	assert.Equal(t, int64(350_00), summary.TotalBets)
	assert.Equal(t, int64(3000_00), summary.TotalPayout)
	assert.Equal(t, int64(-2650_00), summary.Profit)
	assert.Equal(t, 2, summary.WinCount)
	assert.Equal(t, 1, summary.LoseCount)
	assert.Empty(t, summary.FailedCredits)

	// Winners got stake times multiplier, the loser got nothing back.
	assert.Equal(t, int64(1900_00), userBalance(t, db, u1.ID))
	assert.Equal(t, int64(950_00), userBalance(t, db, u2.ID))
	assert.Equal(t, int64(2800_00), userBalance(t, db, u3.ID))

	// Every bet left the pending state.
	var pending int64
	require.NoError(t, db.Model(&models.Bet{}).Where("result = ?", models.BetPending).Count(&pending).Error)
	assert.Zero(t, pending)

	var winners []models.Bet
	require.NoError(t, db.Where("result = ?", models.BetWin).Order("id").Find(&winners).Error)
	require.Len(t, winners, 2)
	assert.Equal(t, int64(1000_00), winners[0].Payout)
	assert.Equal(t, int64(2000_00), winners[1].Payout)

	// Round row carries the persisted aggregates.
	var settled models.Round
	require.NoError(t, db.First(&settled, round.ID).Error)
	assert.Equal(t, models.RoundClosed, settled.Status)
	require.NotNil(t, settled.WinningNumber)
	assert.Equal(t, 4, *settled.WinningNumber)
	assert.NotNil(t, settled.SettledAt)
	assert.Equal(t, int64(350_00), settled.TotalBets)
	assert.Equal(t, int64(3000_00), settled.TotalPayout)
	assert.Equal(t, int64(-2650_00), settled.Profit)

	// No round is open until the next one is created.
	settings, err := GetSettings(db)
	require.NoError(t, err)
	assert.Nil(t, settings.CurrentRoundID)
}

func TestAnnounceResultTwice(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, 1000_00)
	openRound(t, db)

	_, err := PlaceBet(db, user.ID, 4, 100_00)
	require.NoError(t, err)

	_, err = AnnounceResult(db, 4)
	require.NoError(t, err)

	_, err = AnnounceResult(db, 4)
	assert.ErrorIs(t, err, ErrNoOpenRound)

	// The winner was paid exactly once.
	assert.Equal(t, int64(1900_00), userBalance(t, db, user.ID))
}

func TestAnnounceResultNoOpenRound(t *testing.T) {
	db := testDB(t)

	_, err := AnnounceResult(db, 4)
	assert.ErrorIs(t, err, ErrNoOpenRound)
}

func TestAnnounceResultNumberOutOfRange(t *testing.T) {
	db := testDB(t)
	openRound(t, db)

	_, err := AnnounceResult(db, 10)
	assert.ErrorIs(t, err, ErrInvalidNumber)

	// The round is still open and settleable.
	summary, err := AnnounceResult(db, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, summary.WinningNumber)
}

func TestAnnounceResultEmptyRound(t *testing.T) {
	db := testDB(t)
	openRound(t, db)

	summary, err := AnnounceResult(db, 0)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalBets)
	assert.Zero(t, summary.TotalPayout)
	assert.Zero(t, summary.Profit)
}

func TestAnnounceResultFractionalMultiplier(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, 1000_00)
	openRound(t, db)

	multiplier := 9.5
	_, err := UpdateSettings(db, SettingsUpdate{PayoutMultiplier: &multiplier})
	require.NoError(t, err)

	_, err = PlaceBet(db, user.ID, 3, 100_00)
	require.NoError(t, err)

	summary, err := AnnounceResult(db, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(950_00), summary.TotalPayout)
	assert.Equal(t, int64(900_00+950_00), userBalance(t, db, user.ID))
}

func TestAnnounceResultSkipsMissingAccount(t *testing.T) {
	db := testDB(t)
	gone := createUser(t, db, 1000_00)
	stays := createUser(t, db, 1000_00)
	openRound(t, db)

	ghostBet, err := PlaceBet(db, gone.ID, 4, 100_00)
	require.NoError(t, err)
	_, err = PlaceBet(db, stays.ID, 4, 100_00)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.User{}, gone.ID).Error)

	summary, err := AnnounceResult(db, 4)
	require.NoError(t, err)

	// One credit failed but was recorded; the other winner was still paid.
	assert.Equal(t, []uint{ghostBet.Bet.ID}, summary.FailedCredits)
	assert.Equal(t, 2, summary.WinCount)
	assert.Equal(t, int64(900_00+1000_00), userBalance(t, db, stays.ID))
}

func TestAnnounceResultCorruptMultiplierRollsBack(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, DefaultMinBet)
	openRound(t, db)

	_, err := PlaceBet(db, user.ID, 4, DefaultMinBet)
	require.NoError(t, err)

	// A negative multiplier cannot get in through UpdateSettings; plant it
	// directly to prove settlement still refuses to move negative money.
	require.NoError(t, db.Model(&models.PlatformSettings{}).Where("1 = 1").
		Update("payout_multiplier", -5.0).Error)
	InvalidateSettingsCache()

	_, err = AnnounceResult(db, 4)
	require.Error(t, err)

	// The whole round rolled back: still open, bet still pending, and the
	// balance never went below zero.
	var round models.Round
	require.NoError(t, db.Where("status = ?", models.RoundOpen).First(&round).Error)
	var bet models.Bet
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&bet).Error)
	assert.Equal(t, models.BetPending, bet.Result)
	assert.GreaterOrEqual(t, userBalance(t, db, user.ID), int64(0))
}

func TestConcurrentAnnounceSettlesOnce(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, 1000_00)
	openRound(t, db)

	_, err := PlaceBet(db, user.ID, 4, 100_00)
	require.NoError(t, err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := AnnounceResult(db, 4)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)

	// The losing claim never credited: one payout entry, one payout's worth
	// of balance.
	assert.Equal(t, int64(1900_00), userBalance(t, db, user.ID))
	var payouts int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", user.ID, models.BetPayoutTransaction).
		Count(&payouts).Error)
	assert.Equal(t, int64(1), payouts)
}

func TestSettlementLedgerConservation(t *testing.T) {
	db := testDB(t)
	u1 := createUser(t, db, 1000_00)
	u2 := createUser(t, db, 1000_00)
	openRound(t, db)

	_, err := PlaceBet(db, u1.ID, 2, 300_00)
	require.NoError(t, err)
	_, err = PlaceBet(db, u2.ID, 8, 400_00)
	require.NoError(t, err)

	_, err = AnnounceResult(db, 2)
	require.NoError(t, err)

	// Every balance equals the sum of its ledger entries plus the opening
	// balance, for winner and loser alike.
	assert.Equal(t, int64(1000_00)+ledgerSum(t, db, u1.ID), userBalance(t, db, u1.ID))
	assert.Equal(t, int64(1000_00)+ledgerSum(t, db, u2.ID), userBalance(t, db, u2.ID))
}
