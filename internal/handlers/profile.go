package handlers

import (
	"errors"
	"net/http"

	"todo-app/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	db             *gorm.DB
	profileService services.ProfileService
}

func NewProfileHandler(db *gorm.DB, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{db: db, profileService: profileService}
}

type CompleteProfileRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	FullName string `json:"full_name" binding:"required,min=1,max=100"`
}

// CheckProfile backs the profile gate: clients call it on every mount
// of a protected view and redirect to completion when false.
func (h *ProfileHandler) CheckProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	has, err := h.profileService.HasProfile(h.db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to check profile",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_profile": has})
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(h.db, userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Profile not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load profile",
		})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) CompleteProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	profile, err := h.profileService.CompleteProfile(h.db, userID, req.Username, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "username_taken",
				"message": "Username already taken",
			})
		case errors.Is(err, services.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_error",
				"message": "Username must not be empty",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to complete profile",
			})
		}
		return
	}
	c.JSON(http.StatusCreated, profile)
}
