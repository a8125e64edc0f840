package services

import (
	"errors"
	"strings"

	"todo-app/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

var (
	ErrTodoNotFound = errors.New("todo not found")
	ErrEmptyTitle   = errors.New("title must not be empty")
)

// TodoPatch carries a partial update. Nil fields are left untouched.
type TodoPatch struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// TodoService scopes every operation by owner. A todo belonging to a
// different user is indistinguishable from a missing one.
type TodoService interface {
	ListByOwner(db *gorm.DB, ownerID uuid.UUID) ([]models.Todo, error)
	GetByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Todo, error)
	Create(db *gorm.DB, ownerID uuid.UUID, title string) (models.Todo, error)
	Update(db *gorm.DB, ownerID, id uuid.UUID, patch TodoPatch) (models.Todo, error)
	Delete(db *gorm.DB, ownerID, id uuid.UUID) error
}

type TodoServiceImpl struct{}

func NewTodoService() *TodoServiceImpl {
	return &TodoServiceImpl{}
}

func (s *TodoServiceImpl) ListByOwner(db *gorm.DB, ownerID uuid.UUID) ([]models.Todo, error) {
	todos := []models.Todo{}
	result := db.Where("user_id = ?", ownerID).Order("created_at desc").Find(&todos)
	return todos, result.Error
}

func (s *TodoServiceImpl) GetByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Todo, error) {
	var todo models.Todo
	result := db.Where("id = ? AND user_id = ?", id, ownerID).First(&todo)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return models.Todo{}, ErrTodoNotFound
	}
	return todo, result.Error
}

func (s *TodoServiceImpl) Create(db *gorm.DB, ownerID uuid.UUID, title string) (models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Todo{}, ErrEmptyTitle
	}

	id, err := uuid.NewV4()
	if err != nil {
		return models.Todo{}, err
	}

	todo := models.Todo{
		ID:     id,
		UserID: ownerID,
		Title:  title,
	}
	if err := db.Create(&todo).Error; err != nil {
		return models.Todo{}, err
	}
	return todo, nil
}

func (s *TodoServiceImpl) Update(db *gorm.DB, ownerID, id uuid.UUID, patch TodoPatch) (models.Todo, error) {
	todo, err := s.GetByID(db, ownerID, id)
	if err != nil {
		return models.Todo{}, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Todo{}, ErrEmptyTitle
		}
		todo.Title = title
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}

	if err := db.Save(&todo).Error; err != nil {
		return models.Todo{}, err
	}
	return todo, nil
}

func (s *TodoServiceImpl) Delete(db *gorm.DB, ownerID, id uuid.UUID) error {
	result := db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Todo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}
