package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sattawala/sattawala-backend/config"
	"github.com/sattawala/sattawala-backend/middleware"
	"github.com/sattawala/sattawala-backend/models"
	"github.com/sattawala/sattawala-backend/services"
	"github.com/sattawala/sattawala-backend/utils/money"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Mobile   string `json:"mobile"`
	Ref      string `json:"ref"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a user, credits the signup bonus and, when a referral
// code matches, credits the referrer too. Both credits are ledger entries.
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email and password are required"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password must be at least 6 characters long"})
		return
	}

	// check if already exists
	var existing models.User
	if err := config.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User with this email already exists"})
		return
	}
	if req.Mobile != "" {
		if err := config.DB.Where("mobile = ?", req.Mobile).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User with this mobile number already exists"})
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	var referrer *models.User
	if req.Ref != "" {
		var r models.User
		if err := config.DB.Where("referral_code = ?", req.Ref).First(&r).Error; err == nil {
			referrer = &r
		}
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		ReferralCode: newReferralCode(),
	}
	if req.Mobile != "" {
		user.Mobile = &req.Mobile
	}
	if referrer != nil {
		user.ReferredBy = &referrer.ID
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if bonus := config.SignupBonusPaise(); bonus > 0 {
			if _, err := services.Credit(tx, user.ID, bonus, models.SignupBonusTransaction, "signup"); err != nil {
				return err
			}
		}
		if referrer != nil {
			if bonus := config.ReferralBonusPaise(); bonus > 0 {
				if _, err := services.Credit(tx, referrer.ID, bonus, models.ReferralBonusTransaction, user.ReferralCode); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	token, err := middleware.SignToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	// reload for the post-bonus balance
	config.DB.First(&user, user.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    userJSON(&user),
	})
}

// Login authenticates by email+password and issues a token.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email or password"})
		return
	}

	// older accounts may predate referral codes
	if user.ReferralCode == "" {
		user.ReferralCode = newReferralCode()
		config.DB.Model(&user).Update("referral_code", user.ReferralCode)
	}

	token, err := middleware.SignToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    userJSON(&user),
	})
}

// GetCurrentUser returns the authenticated user's profile and balance.
func GetCurrentUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, middleware.UserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userJSON(&user)})
}

func userJSON(u *models.User) gin.H {
	out := gin.H{
		"id":           u.ID,
		"name":         u.Name,
		"email":        u.Email,
		"balance":      money.Rupees(u.Balance),
		"isAdmin":      u.IsAdmin,
		"referralCode": u.ReferralCode,
		"createdAt":    u.CreatedAt,
	}
	if u.Mobile != nil {
		out["mobile"] = *u.Mobile
	}
	return out
}

func newReferralCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}
