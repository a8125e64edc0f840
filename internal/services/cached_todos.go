package services

import (
	"fmt"
	"time"

	"todo-app/backend/internal/cache"
	"todo-app/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	todoListTTL = 10 * time.Minute
	todoItemTTL = 30 * time.Minute
)

// CachedTodoService decorates a TodoService with a per-user cache.
// Every mutation invalidates the owner's list so reads never serve
// another user's rows from a stale key.
type CachedTodoService struct {
	todoService TodoService
	cache       cache.Cache
}

func NewCachedTodoService(todoService TodoService, cacheInstance cache.Cache) *CachedTodoService {
	return &CachedTodoService{
		todoService: todoService,
		cache:       cacheInstance,
	}
}

func userTodosKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("user_todos:%s", ownerID.String())
}

func todoKey(ownerID, id uuid.UUID) string {
	return fmt.Sprintf("todo:%s:%s", ownerID.String(), id.String())
}

func (s *CachedTodoService) ListByOwner(db *gorm.DB, ownerID uuid.UUID) ([]models.Todo, error) {
	var cached []models.Todo
	if err := s.cache.Get(userTodosKey(ownerID), &cached); err == nil {
		return cached, nil
	}

	todos, err := s.todoService.ListByOwner(db, ownerID)
	if err != nil {
		return todos, err
	}

	s.cache.Set(userTodosKey(ownerID), todos, todoListTTL)
	return todos, nil
}

func (s *CachedTodoService) GetByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Todo, error) {
	var cached models.Todo
	if err := s.cache.Get(todoKey(ownerID, id), &cached); err == nil {
		return cached, nil
	}

	todo, err := s.todoService.GetByID(db, ownerID, id)
	if err != nil {
		return todo, err
	}

	s.cache.Set(todoKey(ownerID, id), todo, todoItemTTL)
	return todo, nil
}

func (s *CachedTodoService) Create(db *gorm.DB, ownerID uuid.UUID, title string) (models.Todo, error) {
	todo, err := s.todoService.Create(db, ownerID, title)
	if err != nil {
		return todo, err
	}

	s.cache.Set(todoKey(ownerID, todo.ID), todo, todoItemTTL)
	s.cache.Delete(userTodosKey(ownerID))
	return todo, nil
}

func (s *CachedTodoService) Update(db *gorm.DB, ownerID, id uuid.UUID, patch TodoPatch) (models.Todo, error) {
	todo, err := s.todoService.Update(db, ownerID, id, patch)
	if err != nil {
		return todo, err
	}

	s.cache.Set(todoKey(ownerID, id), todo, todoItemTTL)
	s.cache.Delete(userTodosKey(ownerID))
	return todo, nil
}

func (s *CachedTodoService) Delete(db *gorm.DB, ownerID, id uuid.UUID) error {
	if err := s.todoService.Delete(db, ownerID, id); err != nil {
		return err
	}

	s.cache.Delete(todoKey(ownerID, id))
	s.cache.Delete(userTodosKey(ownerID))
	return nil
}
