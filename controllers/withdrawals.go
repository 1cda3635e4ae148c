package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sattawala/sattawala-backend/config"
	"github.com/sattawala/sattawala-backend/middleware"
	"github.com/sattawala/sattawala-backend/models"
	"github.com/sattawala/sattawala-backend/services"
	"github.com/sattawala/sattawala-backend/utils/money"
	"gorm.io/gorm"
)

const minWithdrawPaise = 100_00

// errAlreadyProcessed is returned from request transactions when the
// status CAS matched no row, meaning another admin got there first.
var errAlreadyProcessed = errors.New("request already processed")

// respondRequestError writes the response for admin request actions.
// Returns true if an error response was written.
func respondRequestError(c *gin.Context, err error, fallback string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Request not found"})
	case errors.Is(err, errAlreadyProcessed):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Request already processed"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
	return true
}

type WithdrawRequestBody struct {
	Name            string   `json:"name" binding:"required"`
	AccountNumber   string   `json:"accountNumber" binding:"required"`
	ReAccountNumber string   `json:"reAccountNumber" binding:"required"`
	Ifsc            string   `json:"ifsc" binding:"required"`
	Amount          *float64 `json:"amount" binding:"required"`
}

// CreateWithdrawRequest debits the stake up front and files the request
// for admin review. Rejection refunds; approval pays out off-platform.
func CreateWithdrawRequest(c *gin.Context) {
	var req WithdrawRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}
	if req.AccountNumber != req.ReAccountNumber {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Account numbers do not match"})
		return
	}
	amount, ok := money.ToPaise(*req.Amount)
	if !ok || amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid amount"})
		return
	}
	if amount < minWithdrawPaise {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Minimum withdrawal is ₹100"})
		return
	}

	userID := middleware.UserID(c)

	var withdraw models.WithdrawRequest
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		withdraw = models.WithdrawRequest{
			UserID:        userID,
			Name:          req.Name,
			AccountNumber: req.AccountNumber,
			Ifsc:          req.Ifsc,
			Amount:        amount,
			Status:        models.WithdrawPending,
		}
		if err := tx.Create(&withdraw).Error; err != nil {
			return err
		}
		_, err := services.Debit(tx, userID, amount, models.WithdrawHoldTransaction, withdraw.AccountNumber)
		return err
	})
	if errors.Is(err, services.ErrInsufficientBalance) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient balance"})
		return
	}
	if errors.Is(err, services.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit withdrawal request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "request": withdrawJSON(&withdraw)})
}

// GetMyWithdrawRequests lists the user's withdrawal requests, newest first.
func GetMyWithdrawRequests(c *gin.Context) {
	var requests []models.WithdrawRequest
	err := config.DB.Where("user_id = ?", middleware.UserID(c)).
		Order("created_at DESC").Limit(50).Find(&requests).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch withdrawal requests"})
		return
	}

	out := make([]gin.H, 0, len(requests))
	for i := range requests {
		out = append(out, withdrawJSON(&requests[i]))
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

// ListWithdrawRequests lists all withdrawal requests for the admin panel,
// optionally filtered by status.
func ListWithdrawRequests(c *gin.Context) {
	q := config.DB.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []models.WithdrawRequest
	if err := q.Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch withdrawal requests"})
		return
	}

	out := make([]gin.H, 0, len(requests))
	for i := range requests {
		entry := withdrawJSON(&requests[i])
		var u models.User
		if err := config.DB.First(&u, requests[i].UserID).Error; err == nil {
			entry["user"] = gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "mobile": u.Mobile}
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requests": out})
}

// ApproveWithdrawRequest marks the request approved. The stake was already
// debited at submission; the actual transfer happens off-platform.
func ApproveWithdrawRequest(c *gin.Context) {
	id := c.Param("id")
	var body RejectBody
	_ = c.ShouldBindJSON(&body)

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var withdraw models.WithdrawRequest
		if err := tx.First(&withdraw, "id = ?", id).Error; err != nil {
			return err
		}
		now := time.Now()
		res := tx.Model(&models.WithdrawRequest{}).
			Where("id = ? AND status = ?", withdraw.ID, models.WithdrawPending).
			Updates(map[string]interface{}{
				"status":       models.WithdrawApproved,
				"admin_note":   body.AdminNote,
				"processed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyProcessed
		}
		return nil
	})
	if respondRequestError(c, err, "Failed to approve request") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Request approved"})
}

// RejectWithdrawRequest marks the request rejected and refunds the held
// amount to the user's balance.
func RejectWithdrawRequest(c *gin.Context) {
	id := c.Param("id")
	var body RejectBody
	_ = c.ShouldBindJSON(&body)

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var withdraw models.WithdrawRequest
		if err := tx.First(&withdraw, "id = ?", id).Error; err != nil {
			return err
		}
		now := time.Now()
		res := tx.Model(&models.WithdrawRequest{}).
			Where("id = ? AND status = ?", withdraw.ID, models.WithdrawPending).
			Updates(map[string]interface{}{
				"status":       models.WithdrawRejected,
				"admin_note":   body.AdminNote,
				"processed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyProcessed
		}
		_, err := services.Credit(tx, withdraw.UserID, withdraw.Amount, models.WithdrawRefundTransaction, withdraw.AccountNumber)
		return err
	})
	if respondRequestError(c, err, "Failed to reject request") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Request rejected and amount refunded"})
}

func withdrawJSON(w *models.WithdrawRequest) gin.H {
	return gin.H{
		"id":            w.ID,
		"name":          w.Name,
		"accountNumber": w.AccountNumber,
		"ifsc":          w.Ifsc,
		"amount":        money.Rupees(w.Amount),
		"status":        w.Status,
		"adminNote":     w.AdminNote,
		"processedAt":   w.ProcessedAt,
		"createdAt":     w.CreatedAt,
	}
}
