package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"crypto_tracker_backend/config"
	"crypto_tracker_backend/middleware"
	"crypto_tracker_backend/models"
	"crypto_tracker_backend/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const adminTokenTTL = 24 * time.Hour

// AdminController handles operator login and the manual refresh trigger
type AdminController struct {
	db      *gorm.DB
	refresh *services.RefreshService
}

// NewAdminController creates a new admin controller
func NewAdminController(db *gorm.DB, refresh *services.RefreshService) *AdminController {
	return &AdminController{db: db, refresh: refresh}
}

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates an operator and issues an access token
// POST /api/v1/admin/login
func (ac *AdminController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	ip := c.ClientIP()

	var admin models.AdminUser
	if err := ac.db.Where("username = ? AND is_active = ?", req.Username, true).First(&admin).Error; err != nil {
		log.Printf("Admin login failed for user %s: user not found", req.Username)
		middleware.RecordLoginAttempt(ip, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	if !admin.CheckPassword(req.Password) {
		log.Printf("Admin login failed for user %s: invalid password", req.Username)
		middleware.RecordLoginAttempt(ip, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := ac.issueToken(&admin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	middleware.RecordLoginAttempt(ip, true)

	now := time.Now()
	ac.db.Model(&admin).Update("last_login_at", &now)

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(adminTokenTTL.Seconds()),
	})
}

// TriggerRefresh starts a refresh cycle in the background
// POST /api/v1/admin/refresh
func (ac *AdminController) TriggerRefresh(c *gin.Context) {
	log.Printf("Manual refresh triggered by %v", c.GetString("admin_username"))
	go ac.refresh.RunCycle(context.Background())

	c.JSON(http.StatusAccepted, gin.H{"message": "Refresh cycle started"})
}

func (ac *AdminController) issueToken(admin *models.AdminUser) (string, error) {
	now := time.Now()
	claims := middleware.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenTTL)),
		},
		Username: admin.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}
