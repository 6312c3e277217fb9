package handlers

import (
	"net/http"
	"time"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/internal/services"
	"github.com/Asantha20535/docuverify-sub000/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthHandler struct {
	sessions *services.SessionService
	db       *gorm.DB
	logger   *zap.Logger
}

func NewAuthHandler(sessions *services.SessionService, db *gorm.DB, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		db:       db,
		logger:   logger.With(zap.String("handler", "auth")),
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	var user models.User
	if err := ah.db.First(&user, "username = ?", req.Username).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if ok, _ := utils.VerifyPassword(user.PasswordHash, req.Password); !ok {
		ah.logger.Warn("Failed login attempt",
			zap.String("username", req.Username),
			zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !user.ActiveStatus {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}

	token := ah.sessions.CreateSession(user.ID, c.ClientIP(), c.Request.UserAgent())
	c.SetCookie("session_token", token, int((24 * time.Hour).Seconds()), "/", "", false, true)

	ah.db.Model(&user).Update("last_login", time.Now())

	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"role":     user.Role,
	})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie("session_token"); err == nil {
		ah.sessions.DestroySession(token)
	}
	c.SetCookie("session_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
