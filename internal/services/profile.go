package services

import (
	"errors"
	"strings"

	"todo-app/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidUsername = errors.New("username must not be empty")
)

// ProfileService backs the profile gate: a user without a completed
// profile is redirected to profile completion before reaching todos.
type ProfileService interface {
	HasProfile(db *gorm.DB, userID uuid.UUID) (bool, error)
	GetProfile(db *gorm.DB, userID uuid.UUID) (models.Profile, error)
	CompleteProfile(db *gorm.DB, userID uuid.UUID, username, fullName string) (models.Profile, error)
}

type ProfileServiceImpl struct{}

func NewProfileService() *ProfileServiceImpl {
	return &ProfileServiceImpl{}
}

func (s *ProfileServiceImpl) HasProfile(db *gorm.DB, userID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.Profile{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (s *ProfileServiceImpl) GetProfile(db *gorm.DB, userID uuid.UUID) (models.Profile, error) {
	var profile models.Profile
	result := db.Where("id = ?", userID).First(&profile)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, result.Error
}

func (s *ProfileServiceImpl) CompleteProfile(db *gorm.DB, userID uuid.UUID, username, fullName string) (models.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Profile{}, ErrInvalidUsername
	}

	var existing models.Profile
	err := db.Where("username = ? AND id <> ?", username, userID).First(&existing).Error
	if err == nil {
		return models.Profile{}, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, err
	}

	profile := models.Profile{
		ID:       userID,
		Username: username,
		FullName: strings.TrimSpace(fullName),
	}
	if err := db.Save(&profile).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}
