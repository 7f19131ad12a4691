package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"taskboard/internal/domain"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

type taskListResponse struct {
	Items []*domain.Task `json:"items"`
	Total int64          `json:"total"`
}

// CreateTask handles POST /tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var in service.CreateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), in)
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ListTasks handles GET /tasks with filter, sort and pagination parameters.
func (h *Handler) ListTasks(c *gin.Context) {
	fields := map[string]string{}
	var in service.ListTasksInput

	if raw, ok := c.GetQuery("id"); ok && raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fields["id"] = "must be an integer"
		} else {
			in.ID = &id
		}
	}

	in.TitleQuery = c.Query("q")

	// status is repeatable; an empty value still marks the filter as present
	if values, ok := c.GetQueryArray("status"); ok {
		in.StatusFilter = true
		for _, v := range values {
			if v != "" {
				in.Statuses = append(in.Statuses, v)
			}
		}
	}

	in.Sort = c.Query("sort")
	in.Order = c.Query("order")

	if raw, ok := c.GetQuery("limit"); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields["limit"] = "must be an integer"
		} else {
			in.Limit = &n
		}
	}
	if raw, ok := c.GetQuery("offset"); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields["offset"] = "must be an integer"
		} else {
			in.Offset = &n
		}
	}

	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
		return
	}

	items, total, err := h.Tasks.List(c.Request.Context(), in)
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskListResponse{Items: items, Total: total})
}

// GetTask handles GET /tasks/:id
func (h *Handler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask handles PATCH /tasks/:id with a partial body.
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var in service.UpdateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), id, in)
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/:id
func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), id); err != nil {
		h.taskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"fields": gin.H{"id": "must be an integer"},
		})
		return 0, false
	}
	return id, true
}

// taskError maps service/store errors onto HTTP status codes.
func (h *Handler) taskError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	default:
		logger.Error("task storage failure", "error", err, "method", c.Request.Method, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
