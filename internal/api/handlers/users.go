package handlers

import (
	"net/http"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserHandler(db *gorm.DB, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		db:     db,
		logger: logger.With(zap.String("handler", "user")),
	}
}

type userSummary struct {
	ID         uint            `json:"id"`
	Username   string          `json:"username"`
	Role       models.UserRole `json:"role"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Department string          `json:"department"`
}

func (uh *UserHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := uh.db.Order("username ASC").Find(&users).Error; err != nil {
		uh.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}

	summaries := make([]userSummary, len(users))
	for i, u := range users {
		summaries[i] = userSummary{
			ID:         u.ID,
			Username:   u.Username,
			Role:       u.Role,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			Department: u.Department,
		}
	}
	c.JSON(http.StatusOK, gin.H{"users": summaries})
}

func (uh *UserHandler) Profile(c *gin.Context) {
	userID := c.GetUint("userID")

	var user models.User
	if err := uh.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, userSummary{
		ID:         user.ID,
		Username:   user.Username,
		Role:       user.Role,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Department: user.Department,
	})
}
