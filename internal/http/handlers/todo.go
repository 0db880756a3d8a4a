package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"todoapp/internal/domain"
	"todoapp/internal/http/middleware"
	"todoapp/internal/logger"

	"github.com/gin-gonic/gin"
)

type createTodoRequest struct {
	Text   string `json:"text"`
	Detail string `json:"detail"`
}

// ListTodos handles GET /api/todos. The body is always a JSON array, never
// null.
func (h *Handler) ListTodos(c *gin.Context) {
	todos, err := h.Store.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list todos", err)
		return
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	c.JSON(http.StatusOK, todos)
}

// CreateTodo handles POST /api/todos.
func (h *Handler) CreateTodo(c *gin.Context) {
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	todo, err := h.Store.Create(c.Request.Context(), req.Text, req.Detail)
	if err != nil {
		h.fail(c, "create todo", err)
		return
	}
	h.Hub.Created(todo)
	c.JSON(http.StatusCreated, todo)
}

// GetTodo handles GET /api/todos/:id.
func (h *Handler) GetTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}
	todo, err := h.Store.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get todo", err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// UpdateTodo handles PUT /api/todos/:id. The body is any subset of
// {text, detail, completed}; the response is the full post-merge record.
func (h *Handler) UpdateTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	var changes domain.Changes
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	todo, err := h.Store.Update(c.Request.Context(), id, changes)
	if err != nil {
		h.fail(c, "update todo", err)
		return
	}
	h.Hub.Updated(todo)
	c.JSON(http.StatusOK, todo)
}

// DeleteTodo handles DELETE /api/todos/:id and responds with {"id": N}.
func (h *Handler) DeleteTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	deleted, err := h.Store.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "delete todo", err)
		return
	}
	h.Hub.Deleted(deleted)
	c.JSON(http.StatusOK, gin.H{"id": deleted})
}

func todoID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo id"})
		return 0, false
	}
	return id, true
}

// fail maps store errors to status codes: validation 400, not found 404,
// everything else 500.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyText):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		reqID, _ := c.Get(middleware.RequestIDKey)
		logger.Error("storage failure", "op", op, "error", err, "request_id", reqID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	}
}
