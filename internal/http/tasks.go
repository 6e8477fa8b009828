package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskhub/internal/domain"
)

type createTaskRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description *string             `json:"description"`
	Status      domain.TaskStatus   `json:"status" binding:"omitempty,oneof=pending in-progress completed"`
	Priority    domain.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo  *int64              `json:"assignedTo"`
	DueDate     *time.Time          `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string              `json:"title"`
	Description nullable[string]     `json:"description"`
	Status      *domain.TaskStatus   `json:"status" binding:"omitempty,oneof=pending in-progress completed"`
	Priority    *domain.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo  nullable[int64]      `json:"assignedTo"`
	DueDate     nullable[time.Time]  `json:"dueDate"`
}

type listTasksQuery struct {
	Skip  int `form:"skip" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=1,max=1000"`
}

// nullable distinguishes an absent JSON field from an explicit null.
type nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

type TaskResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	AssignedTo  *int64              `json:"assignedTo"`
	DueDate     *string             `json:"dueDate"`
	OwnerID     int64               `json:"owner_id"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), currentPrincipal(c), domain.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, taskToResponse(*task))
}

func (h *Handler) listTasks(c *gin.Context) {
	var q listTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	tasks, err := h.tasks.ListTasks(c.Request.Context(), currentPrincipal(c), q.Skip, q.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = taskToResponse(tasks[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), currentPrincipal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) updateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), currentPrincipal(c), id, domain.TaskPatch{
		Title:          req.Title,
		Status:         req.Status,
		Priority:       req.Priority,
		DescriptionSet: req.Description.Set,
		Description:    req.Description.Value,
		AssigneeSet:    req.AssignedTo.Set,
		AssigneeID:     req.AssignedTo.Value,
		DueDateSet:     req.DueDate.Set,
		DueDate:        req.DueDate.Value,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), currentPrincipal(c), id); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func taskToResponse(task domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		AssignedTo:  task.AssigneeID,
		OwnerID:     task.OwnerID,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339Nano),
	}
	if task.DueDate != nil {
		v := task.DueDate.Format(time.RFC3339Nano)
		resp.DueDate = &v
	}
	return resp
}
