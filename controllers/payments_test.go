package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sattawala/sattawala-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postWebhook(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPaymentWebhookCreditsOnce(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, 0)

	payment := models.UpiPaymentRequest{
		UserID:  user.ID,
		Amount:  500_00,
		OrderID: "PAY_1700000000_abc123def",
		Status:  models.UpiPending,
	}
	require.NoError(t, db.Create(&payment).Error)

	r := gin.New()
	r.POST("/api/payment/webhook", PaymentWebhook)
	body := `{"order_id":"PAY_1700000000_abc123def","transaction_id":"TXN42","amount":500,"status":"success"}`

	// Gateways redeliver; only the first success settles the order.
	assert.Equal(t, http.StatusOK, postWebhook(r, body).Code)
	assert.Equal(t, http.StatusOK, postWebhook(r, body).Code)

	var reloaded models.UpiPaymentRequest
	require.NoError(t, db.First(&reloaded, payment.ID).Error)
	assert.Equal(t, models.UpiCompleted, reloaded.Status)
	assert.NotNil(t, reloaded.ProcessedAt)
	assert.NotEmpty(t, reloaded.WebhookData)

	var reloadedUser models.User
	require.NoError(t, db.First(&reloadedUser, user.ID).Error)
	assert.Equal(t, int64(500_00), reloadedUser.Balance)

	var deposits int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", user.ID, models.DepositTransaction).
		Count(&deposits).Error)
	assert.Equal(t, int64(1), deposits)
}

func TestPaymentWebhookFailureStatusDoesNotCredit(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, 0)

	payment := models.UpiPaymentRequest{
		UserID:  user.ID,
		Amount:  500_00,
		OrderID: "PAY_1700000001_def456abc",
		Status:  models.UpiPending,
	}
	require.NoError(t, db.Create(&payment).Error)

	r := gin.New()
	r.POST("/api/payment/webhook", PaymentWebhook)
	body := `{"order_id":"PAY_1700000001_def456abc","status":"failed"}`
	assert.Equal(t, http.StatusOK, postWebhook(r, body).Code)

	// Payload stored for audit, nothing settled, nothing credited.
	var reloaded models.UpiPaymentRequest
	require.NoError(t, db.First(&reloaded, payment.ID).Error)
	assert.Equal(t, models.UpiPending, reloaded.Status)
	assert.NotEmpty(t, reloaded.WebhookData)

	var reloadedUser models.User
	require.NoError(t, db.First(&reloadedUser, user.ID).Error)
	assert.Zero(t, reloadedUser.Balance)
}

func TestSignPayload(t *testing.T) {
	payload := map[string]string{
		"order_id":       "PAY_1700000000_abc123def",
		"amount":         "100.00",
		"status":         "success",
		"transaction_id": "TXN42",
	}

	sig := signPayload(payload, "secret")

	// Deterministic regardless of map iteration order.
	assert.Equal(t, sig, signPayload(payload, "secret"))
	assert.Len(t, sig, 64)

	// Any change to payload or key produces a different signature.
	assert.NotEqual(t, sig, signPayload(payload, "other-secret"))
	payload["amount"] = "100.01"
	assert.NotEqual(t, sig, signPayload(payload, "secret"))
}
