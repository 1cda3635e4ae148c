package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sattawala/sattawala-backend/config"
	"github.com/sattawala/sattawala-backend/middleware"
	"github.com/sattawala/sattawala-backend/models"
	"github.com/sattawala/sattawala-backend/services"
	"github.com/sattawala/sattawala-backend/utils/logger"
	"github.com/sattawala/sattawala-backend/utils/money"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Mock UPI collection account; the gateway integration is stubbed.
const platformUpiID = "sattawala@paytm"

const minDepositPaise = 10_00

type CreateSessionRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}

// CreatePaymentSession opens a mock gateway session and returns the UPI
// deep link the frontend renders as a QR code.
func CreatePaymentSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Amount is missing or empty"})
		return
	}
	amount, ok := money.ToPaise(*req.Amount)
	if !ok || amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid amount"})
		return
	}
	if amount < minDepositPaise {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Minimum amount is ₹10"})
		return
	}

	userID := middleware.UserID(c)
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	payment := models.UpiPaymentRequest{
		UserID:  userID,
		Amount:  amount,
		OrderID: fmt.Sprintf("PAY_%d_%s", time.Now().Unix(), strings.ReplaceAll(uuid.New().String(), "-", "")[:9]),
		Status:  models.UpiPending,
	}
	if err := config.DB.Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create payment session"})
		return
	}

	paymentURL := fmt.Sprintf("upi://pay?pa=%s&pn=SattaWala&am=%.2f&tn=Add Money&cu=INR&ref=%s",
		platformUpiID, money.Rupees(amount), payment.OrderID)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"paymentUrl": paymentURL,
		"orderId":    payment.OrderID,
		"amount":     money.Rupees(amount),
		"upiId":      platformUpiID,
		"payment":    paymentJSON(&payment),
	})
}

type VerifyPaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// VerifyPayment marks a pending session completed and credits the balance.
// Verification against the real gateway is mocked.
func VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order ID is required"})
		return
	}
	userID := middleware.UserID(c)

	var newBalance int64
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.UpiPaymentRequest
		err := tx.Where("order_id = ? AND user_id = ? AND status = ?", req.OrderID, userID, models.UpiPending).
			First(&payment).Error
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.UpiPaymentRequest{}).
			Where("id = ? AND status = ?", payment.ID, models.UpiPending).
			Updates(map[string]interface{}{"status": models.UpiCompleted, "processed_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound // raced with webhook/admin, treat as processed
		}

		newBalance, err = services.Credit(tx, userID, payment.Amount, models.DepositTransaction, payment.OrderID)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Payment not found or already processed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to verify payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Payment verified successfully",
		"newBalance": money.Rupees(newBalance),
	})
}

type WebhookPayload struct {
	OrderID       string  `json:"order_id"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Signature     string  `json:"signature"`
}

// PaymentWebhook handles the mock gateway's callback. The raw payload is
// kept on the payment row for audit.
func PaymentWebhook(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}
	c.Request.Body = io.NopCloser(strings.NewReader(string(raw)))

	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.UpiPaymentRequest
		if err := tx.Where("order_id = ?", payload.OrderID).First(&payment).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.UpiPaymentRequest{}).Where("id = ?", payment.ID).
			Update("webhook_data", datatypes.JSON(raw)).Error; err != nil {
			return err
		}
		if payload.Status != "success" {
			return nil
		}

		// Status CAS: concurrent deliveries of the same order (or a race
		// with verify/admin) settle it exactly once.
		now := time.Now()
		res := tx.Model(&models.UpiPaymentRequest{}).
			Where("id = ? AND status = ?", payment.ID, models.UpiPending).
			Updates(map[string]interface{}{"status": models.UpiCompleted, "processed_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // already settled, never credit twice
		}
		_, err := services.Credit(tx, payment.UserID, payment.Amount, models.DepositTransaction, payment.OrderID)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Payment not found"})
		return
	}
	if err != nil {
		logger.Errorf("payment webhook for order %s failed: %v", payload.OrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Webhook processed successfully"})
}

// GetPaymentHistory lists the user's payment requests, newest first.
func GetPaymentHistory(c *gin.Context) {
	var payments []models.UpiPaymentRequest
	err := config.DB.Where("user_id = ?", middleware.UserID(c)).
		Order("created_at DESC").Limit(50).Find(&payments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch payment history"})
		return
	}

	out := make([]gin.H, 0, len(payments))
	for i := range payments {
		out = append(out, paymentJSON(&payments[i]))
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}

type UpiRequestBody struct {
	Amount *float64 `json:"amount" binding:"required"`
	Utr    string   `json:"utr" binding:"required"`
}

// CreateUpiRequest records a manual UPI transfer (identified by UTR) for
// admin review.
func CreateUpiRequest(c *gin.Context) {
	var req UpiRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Amount and UTR are required"})
		return
	}
	amount, ok := money.ToPaise(*req.Amount)
	if !ok || amount < 1_00 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid amount"})
		return
	}
	if len(req.Utr) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid UTR/Transaction ID"})
		return
	}

	userID := middleware.UserID(c)

	// Prevent duplicate UTR for same user
	var existing models.UpiPaymentRequest
	if err := config.DB.Where("user_id = ? AND utr = ?", userID, req.Utr).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "This UTR has already been submitted."})
		return
	}

	payment := models.UpiPaymentRequest{
		UserID: userID,
		Amount: amount,
		Utr:    req.Utr,
		Status: models.UpiPending,
	}
	if err := config.DB.Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit payment request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "request": paymentJSON(&payment)})
}

// ListUpiRequests lists all UPI payment requests, optionally by status.
func ListUpiRequests(c *gin.Context) {
	q := config.DB.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []models.UpiPaymentRequest
	if err := q.Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch UPI payment requests"})
		return
	}

	out := make([]gin.H, 0, len(requests))
	for i := range requests {
		entry := paymentJSON(&requests[i])
		var u models.User
		if err := config.DB.First(&u, requests[i].UserID).Error; err == nil {
			entry["user"] = gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "mobile": u.Mobile}
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requests": out})
}

// ApproveUpiRequest credits the user and marks the request approved.
// The status CAS keeps a double-click from crediting twice.
func ApproveUpiRequest(c *gin.Context) {
	id := c.Param("id")

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.UpiPaymentRequest
		if err := tx.First(&payment, "id = ?", id).Error; err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.UpiPaymentRequest{}).
			Where("id = ? AND status = ?", payment.ID, models.UpiPending).
			Updates(map[string]interface{}{"status": models.UpiApproved, "processed_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyProcessed
		}

		_, err := services.Credit(tx, payment.UserID, payment.Amount, models.DepositTransaction, payment.Utr)
		return err
	})
	if respondRequestError(c, err, "Failed to approve request") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Request approved"})
}

type RejectBody struct {
	AdminNote string `json:"adminNote"`
}

// RejectUpiRequest marks the request rejected; no balance change.
func RejectUpiRequest(c *gin.Context) {
	id := c.Param("id")
	var body RejectBody
	_ = c.ShouldBindJSON(&body)

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.UpiPaymentRequest
		if err := tx.First(&payment, "id = ?", id).Error; err != nil {
			return err
		}
		now := time.Now()
		res := tx.Model(&models.UpiPaymentRequest{}).
			Where("id = ? AND status = ?", payment.ID, models.UpiPending).
			Updates(map[string]interface{}{
				"status":       models.UpiRejected,
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
	if respondRequestError(c, err, "Failed to reject request") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Request rejected"})
}

func paymentJSON(p *models.UpiPaymentRequest) gin.H {
	return gin.H{
		"id":          p.ID,
		"amount":      money.Rupees(p.Amount),
		"utr":         p.Utr,
		"orderId":     p.OrderID,
		"status":      p.Status,
		"adminNote":   p.AdminNote,
		"processedAt": p.ProcessedAt,
		"createdAt":   p.CreatedAt,
	}
}

// signPayload reproduces the gateway's signature scheme: sorted key=value
// pairs joined with & plus the secret, sha256-hexed. Used by the webhook
// mock in tests and kept for the day a real gateway replaces it.
func signPayload(data map[string]string, secretKey string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+data[k])
	}
	sum := sha256.Sum256([]byte(strings.Join(pairs, "&") + secretKey))
	return hex.EncodeToString(sum[:])
}
