package handlers

import (
	"errors"
	"net/http"

	"todo-app/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TodoHandler struct {
	db          *gorm.DB
	todoService services.TodoService
}

func NewTodoHandler(db *gorm.DB, todoService services.TodoService) *TodoHandler {
	return &TodoHandler{db: db, todoService: todoService}
}

// currentUserID reads the principal stamped by the auth middleware.
// The owner id is never taken from request input.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "not_authenticated",
			"message": "User not authenticated",
		})
		return uuid.Nil, false
	}
	userIDStr, ok := userIDInterface.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "invalid_principal",
			"message": "Invalid user ID format",
		})
		return uuid.Nil, false
	}
	userID := uuid.FromStringOrNil(userIDStr)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "not_authenticated",
			"message": "User not authenticated",
		})
		return uuid.Nil, false
	}
	return userID, true
}

func (h *TodoHandler) ListTodos(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	todos, err := h.todoService.ListByOwner(h.db, ownerID)
	if err != nil {
		handleTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) CreateTodo(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
		})
		return
	}

	todo, err := h.todoService.Create(h.db, ownerID, input.Title)
	if err != nil {
		handleTodoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) GetTodoByID(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Todo not found",
		})
		return
	}

	todo, err := h.todoService.GetByID(h.db, ownerID, id)
	if err != nil {
		handleTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Todo not found",
		})
		return
	}

	var patch services.TodoPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
		})
		return
	}

	todo, err := h.todoService.Update(h.db, ownerID, id, patch)
	if err != nil {
		handleTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Todo not found",
		})
		return
	}

	if err := h.todoService.Delete(h.db, ownerID, id); err != nil {
		handleTodoError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func handleTodoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Todo not found",
		})
	case errors.Is(err, services.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": "Title must not be empty",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to process todo request",
		})
	}
}
