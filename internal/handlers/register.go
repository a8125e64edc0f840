package handlers

import (
	"errors"
	"net/http"

	"todo-app/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db          *gorm.DB
	authService services.AuthService
}

func NewRegisterHandler(db *gorm.DB, authService services.AuthService) *RegisterHandler {
	return &RegisterHandler{db: db, authService: authService}
}

type RegistrationResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *RegisterHandler) Registration(c *gin.Context) {
	var req services.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	user, err := h.authService.RegisterUser(h.db, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateUsername), errors.Is(err, services.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "duplicate_account",
				"message": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "registration_failed",
				"message": "Failed to register user",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		Message:  "User registered successfully",
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	})
}
