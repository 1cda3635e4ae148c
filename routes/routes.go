package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sattawala/sattawala-backend/controllers"
	"github.com/sattawala/sattawala-backend/middleware"
)

func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// ----------------------
	// Auth routes
	// ----------------------
	auth := api.Group("/auth")
	auth.POST("/register", controllers.Register)
	auth.POST("/login", controllers.Login)
	auth.GET("/user", middleware.RequireAuth(), controllers.GetCurrentUser)

	// ----------------------
	// Betting routes
	// ----------------------
	bet := api.Group("/bet", middleware.RequireAuth())
	bet.GET("/round", controllers.GetCurrentRound)
	bet.POST("/place", controllers.PlaceBet)
	bet.GET("/my", controllers.GetMyBets)

	// ----------------------
	// Payment routes (webhook is unauthenticated, called by the gateway)
	// ----------------------
	api.POST("/payment/webhook", controllers.PaymentWebhook)

	payment := api.Group("/payment", middleware.RequireAuth())
	payment.POST("/create-session", controllers.CreatePaymentSession)
	payment.POST("/verify", controllers.VerifyPayment)
	payment.GET("/history", controllers.GetPaymentHistory)
	payment.POST("/upi-request", controllers.CreateUpiRequest)
	payment.POST("/withdraw", controllers.CreateWithdrawRequest)
	payment.GET("/withdrawals", controllers.GetMyWithdrawRequests)

	paymentAdmin := api.Group("/payment", middleware.RequireAuth(), middleware.RequireAdmin())
	paymentAdmin.GET("/upi-requests", controllers.ListUpiRequests)
	paymentAdmin.POST("/upi-requests/:id/approve", controllers.ApproveUpiRequest)
	paymentAdmin.POST("/upi-requests/:id/reject", controllers.RejectUpiRequest)
	paymentAdmin.GET("/withdraw-requests", controllers.ListWithdrawRequests)
	paymentAdmin.POST("/withdraw-requests/:id/approve", controllers.ApproveWithdrawRequest)
	paymentAdmin.POST("/withdraw-requests/:id/reject", controllers.RejectWithdrawRequest)

	// ----------------------
	// Admin routes
	// ----------------------
	admin := api.Group("/admin", middleware.RequireAuth(), middleware.RequireAdmin())
	admin.POST("/announce", controllers.AnnounceResult)
	admin.POST("/rounds/new", controllers.CreateRound)
	admin.GET("/rounds", controllers.GetRounds)
	admin.GET("/bets", controllers.GetCurrentRoundBets)
	admin.GET("/current-round-bet-stats", controllers.GetCurrentRoundBetStats)
	admin.GET("/users", controllers.ListUsers)
	admin.GET("/stats", controllers.GetStats)
	admin.PUT("/settings", controllers.UpdateSettings)
	admin.GET("/result-reminder", controllers.GetResultReminder)
}
