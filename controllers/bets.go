package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sattawala/sattawala-backend/config"
	"github.com/sattawala/sattawala-backend/middleware"
	"github.com/sattawala/sattawala-backend/models"
	"github.com/sattawala/sattawala-backend/services"
	"github.com/sattawala/sattawala-backend/utils/money"
)

type PlaceBetRequest struct {
	Number *int     `json:"number" binding:"required"`
	Amount *float64 `json:"amount" binding:"required"`
}

// PlaceBet places a wager on the open round for the authenticated user.
func PlaceBet(c *gin.Context) {
	var req PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Number and amount are required"})
		return
	}

	amount, ok := money.ToPaise(*req.Amount)
	if !ok || amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid amount"})
		return
	}

	placed, err := services.PlaceBet(config.DB, middleware.UserID(c), *req.Number, amount)
	if err != nil {
		status, msg := betErrorResponse(err)
		c.JSON(status, gin.H{"message": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Bet placed successfully",
		"bet":     betJSON(&placed.Bet),
		"balance": money.Rupees(placed.NewBalance),
	})
}

// GetCurrentRound returns the open round plus the platform's bet bounds;
// the betting UI builds its form from this.
func GetCurrentRound(c *gin.Context) {
	settings, err := services.GetSettings(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	numberMin, numberMax := config.NumberRange()

	round, err := services.CurrentRound(config.DB)
	if errors.Is(err, services.ErrNoOpenRound) {
		c.JSON(http.StatusOK, gin.H{
			"round":     nil,
			"minBet":    money.Rupees(settings.MinBet),
			"maxBet":    money.Rupees(settings.MaxBet),
			"numberMin": numberMin,
			"numberMax": numberMax,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"round":     round,
		"minBet":    money.Rupees(settings.MinBet),
		"maxBet":    money.Rupees(settings.MaxBet),
		"numberMin": numberMin,
		"numberMax": numberMax,
	})
}

// GetMyBets lists the authenticated user's bets, newest first.
func GetMyBets(c *gin.Context) {
	bets, err := services.UserBets(config.DB, middleware.UserID(c), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch bets"})
		return
	}

	out := make([]gin.H, 0, len(bets))
	for i := range bets {
		out = append(out, betJSON(&bets[i]))
	}
	c.JSON(http.StatusOK, gin.H{"bets": out})
}

func betJSON(b *models.Bet) gin.H {
	return gin.H{
		"id":        b.ID,
		"round_id":  b.RoundID,
		"number":    b.Number,
		"amount":    money.Rupees(b.Amount),
		"result":    b.Result,
		"payout":    money.Rupees(b.Payout),
		"createdAt": b.CreatedAt,
	}
}

func betErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrPlatformClosed):
		return http.StatusForbidden, "Betting is currently closed"
	case errors.Is(err, services.ErrNoOpenRound):
		return http.StatusBadRequest, "No open round, please wait for the next round"
	case errors.Is(err, services.ErrInsufficientBalance):
		return http.StatusBadRequest, "Insufficient balance"
	case errors.Is(err, services.ErrInvalidNumber),
		errors.Is(err, services.ErrBetBelowMinimum),
		errors.Is(err, services.ErrBetAboveMaximum):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	default:
		return http.StatusInternalServerError, "Failed to place bet"
	}
}
