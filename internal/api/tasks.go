package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkovalyov/focusaid/internal/db"
	"github.com/mkovalyov/focusaid/internal/models"
)

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *Handler) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Completed:   false,
		DueDate:     req.DueDate,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.tasks.InsertTask(c.Request.Context(), task); err != nil {
		h.logger.Error("create task failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to create task", err)
		return
	}

	h.taskCache.InvalidateTaskList(c.Request.Context())

	c.JSON(http.StatusOK, task)
}

func (h *Handler) handleListTasks(c *gin.Context) {
	ctx := c.Request.Context()

	if tasks, ok := h.taskCache.GetTaskList(ctx); ok {
		c.JSON(http.StatusOK, tasks)
		return
	}

	tasks, err := h.tasks.ListTasks(ctx)
	if err != nil {
		h.logger.Error("list tasks failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to list tasks", err)
		return
	}

	h.taskCache.SetTaskList(ctx, tasks)

	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) handleUpdateTask(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	patch, err := validateTaskPatch(body)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid task update", err)
		return
	}

	if err := h.tasks.UpdateTask(c.Request.Context(), c.Param("id"), patch); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "Task not found", err)
			return
		}
		h.logger.Error("update task failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to update task", err)
		return
	}

	h.taskCache.InvalidateTaskList(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "Task updated"})
}

func (h *Handler) handleDeleteTask(c *gin.Context) {
	if err := h.tasks.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "Task not found", err)
			return
		}
		h.logger.Error("delete task failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to delete task", err)
		return
	}

	h.taskCache.InvalidateTaskList(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// validateTaskPatch checks a merge-patch body against the allow-list of
// mutable task fields and their types. Unknown fields and wrong types are
// rejected rather than passed through to the store.
func validateTaskPatch(body map[string]interface{}) (map[string]interface{}, error) {
	patch := make(map[string]interface{}, len(body))

	for field, value := range body {
		switch field {
		case "title":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("field %q must be a string", field)
			}
			patch[field] = s
		case "description":
			if value == nil {
				patch[field] = nil
				continue
			}
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("field %q must be a string or null", field)
			}
			patch[field] = s
		case "completed":
			b, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("field %q must be a boolean", field)
			}
			patch[field] = b
		case "due_date":
			if value == nil {
				patch[field] = nil
				continue
			}
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("field %q must be an RFC 3339 timestamp or null", field)
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, fmt.Errorf("field %q must be an RFC 3339 timestamp: %w", field, err)
			}
			patch[field] = t.UTC()
		default:
			return nil, fmt.Errorf("field %q is not updatable", field)
		}
	}

	return patch, nil
}
