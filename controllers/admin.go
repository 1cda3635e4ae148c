package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sattawala/sattawala-backend/config"
	"github.com/sattawala/sattawala-backend/models"
	"github.com/sattawala/sattawala-backend/services"
	"github.com/sattawala/sattawala-backend/utils/money"
)

type AnnounceRequest struct {
	WinningNumber *int `json:"winningNumber" binding:"required"`
}

// AnnounceResult closes the open round with the given winning number.
func AnnounceResult(c *gin.Context) {
	var req AnnounceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Winning number is required"})
		return
	}

	summary, err := services.AnnounceResult(config.DB, *req.WinningNumber)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoOpenRound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "No open round found"})
		case errors.Is(err, services.ErrInvalidNumber):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to announce result"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Result announced successfully",
		"winningNumber": summary.WinningNumber,
		"totalBets":     money.Rupees(summary.TotalBets),
		"totalPayout":   money.Rupees(summary.TotalPayout),
		"profit":        money.Rupees(summary.Profit),
		"failedCredits": len(summary.FailedCredits),
	})
}

// CreateRound force-closes any open round (voiding and refunding its pending
// bets) and opens a new one.
func CreateRound(c *gin.Context) {
	round, err := services.OpenNewRound(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create new round"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "New round created successfully", "round": round})
}

// GetRounds lists the last 50 rounds with their financials.
func GetRounds(c *gin.Context) {
	var rounds []models.Round
	if err := config.DB.Order("created_at DESC").Limit(50).Find(&rounds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch rounds"})
		return
	}

	out := make([]gin.H, 0, len(rounds))
	for i := range rounds {
		r := &rounds[i]
		var betCount int64
		config.DB.Model(&models.Bet{}).Where("round_id = ?", r.ID).Count(&betCount)
		out = append(out, gin.H{
			"id":            r.ID,
			"status":        r.Status,
			"winningNumber": r.WinningNumber,
			"totalBets":     money.Rupees(r.TotalBets),
			"totalPayout":   money.Rupees(r.TotalPayout),
			"profit":        money.Rupees(r.Profit),
			"betCount":      betCount,
			"createdAt":     r.CreatedAt,
			"settledAt":     r.SettledAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"rounds": out})
}

// ListUsers returns all users, newest first.
func ListUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch users"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userJSON(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// GetStats returns platform-wide totals for the admin dashboard.
func GetStats(c *gin.Context) {
	var totalUsers, totalBets, totalRounds, activeRounds, completedRounds int64
	config.DB.Model(&models.User{}).Count(&totalUsers)
	config.DB.Model(&models.Bet{}).Count(&totalBets)
	config.DB.Model(&models.Round{}).Count(&totalRounds)
	config.DB.Model(&models.Round{}).Where("status = ?", models.RoundOpen).Count(&activeRounds)
	config.DB.Model(&models.Round{}).Where("status = ?", models.RoundClosed).Count(&completedRounds)

	var revenue, payouts int64
	config.DB.Model(&models.Bet{}).Select("COALESCE(SUM(amount), 0)").Scan(&revenue)
	config.DB.Model(&models.Bet{}).Where("result = ?", models.BetWin).
		Select("COALESCE(SUM(payout), 0)").Scan(&payouts)

	settings, err := services.GetSettings(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch stats"})
		return
	}

	profit := revenue - payouts
	profitMargin := 0.0
	if revenue > 0 {
		profitMargin = float64(profit) / float64(revenue) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"totalUsers":      totalUsers,
		"totalBets":       totalBets,
		"totalRounds":     totalRounds,
		"totalRevenue":    money.Rupees(revenue),
		"totalPayouts":    money.Rupees(payouts),
		"totalProfit":     money.Rupees(profit),
		"profitMargin":    profitMargin,
		"activeRounds":    activeRounds,
		"completedRounds": completedRounds,
		"platformStatus":  settingsJSON(settings),
	})
}

// GetCurrentRoundBets lists the open round's bets with the bettor's mobile.
func GetCurrentRoundBets(c *gin.Context) {
	_, bets, err := services.CurrentRoundBets(config.DB)
	if errors.Is(err, services.ErrNoOpenRound) {
		c.JSON(http.StatusOK, gin.H{"bets": []gin.H{}})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch bets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bets": betsWithUsers(bets)})
}

// GetCurrentRoundBetStats returns the open round's bets plus quick totals.
func GetCurrentRoundBetStats(c *gin.Context) {
	_, bets, err := services.CurrentRoundBets(config.DB)
	if errors.Is(err, services.ErrNoOpenRound) {
		c.JSON(http.StatusOK, gin.H{"bets": []gin.H{}, "totalBets": 0, "totalAmount": 0})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch bet stats"})
		return
	}

	var totalAmount int64
	for i := range bets {
		totalAmount += bets[i].Amount
	}
	c.JSON(http.StatusOK, gin.H{
		"bets":        betsWithUsers(bets),
		"totalBets":   len(bets),
		"totalAmount": money.Rupees(totalAmount),
	})
}

// UpdateSettings applies the recognized settings keys.
func UpdateSettings(c *gin.Context) {
	var req services.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid settings payload"})
		return
	}

	settings, err := services.UpdateSettings(config.DB, req)
	if errors.Is(err, services.ErrInvalidSettings) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully", "settings": settingsJSON(settings)})
}

// Result times the admin panel reminds about; kept in sync with the
// scheduler's cron expression.
var resultHours = []int{11, 15, 21}

// GetResultReminder tells the admin panel when the next result is due.
func GetResultReminder(c *gin.Context) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var next time.Time
	for _, h := range resultHours {
		t := today.Add(time.Duration(h) * time.Hour)
		if t.After(now) {
			next = t
			break
		}
	}
	if next.IsZero() {
		next = today.AddDate(0, 0, 1).Add(time.Duration(resultHours[0]) * time.Hour)
	}

	minutesUntil := int(next.Sub(now).Minutes())
	c.JSON(http.StatusOK, gin.H{
		"nextResultTime":     next.Format(time.RFC3339),
		"minutesUntilResult": minutesUntil,
		"shouldAnnounce":     minutesUntil <= 5,
		"isResultTime":       minutesUntil == 0,
	})
}

// betsWithUsers decorates bets with the owning user's mobile/name.
func betsWithUsers(bets []models.Bet) []gin.H {
	ids := make([]uint, 0, len(bets))
	for i := range bets {
		ids = append(ids, bets[i].UserID)
	}
	userByID := make(map[uint]models.User, len(ids))
	if len(ids) > 0 {
		var users []models.User
		config.DB.Where("id IN ?", ids).Find(&users)
		for i := range users {
			userByID[users[i].ID] = users[i]
		}
	}

	out := make([]gin.H, 0, len(bets))
	for i := range bets {
		b := &bets[i]
		entry := betJSON(b)
		if u, ok := userByID[b.UserID]; ok {
			entry["user"] = gin.H{"id": u.ID, "name": u.Name, "mobile": u.Mobile}
		}
		out = append(out, entry)
	}
	return out
}

func settingsJSON(s *models.PlatformSettings) gin.H {
	return gin.H{
		"isActive":         s.IsActive,
		"minBet":           money.Rupees(s.MinBet),
		"maxBet":           money.Rupees(s.MaxBet),
		"payoutMultiplier": s.PayoutMultiplier,
		"maintenanceMode":  s.MaintenanceMode,
		"currentRoundId":   s.CurrentRoundID,
	}
}
