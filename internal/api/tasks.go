package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/realtime"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/store"
)

// TaskHandler handles task CRUD. Moves are the hot path for the realtime
// board: the committed task is rebroadcast so every open board follows.
type TaskHandler struct {
	store    *store.Store
	notifier *realtime.Notifier
}

func (h *TaskHandler) List(c *gin.Context) {
	projectID := c.Param("id")
	if !h.requireMember(c, projectID) {
		return
	}
	tasks, err := h.store.ListTasks(c.Request.Context(), projectID)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to list tasks")
		return
	}
	standardResponse(c, http.StatusOK, "ok", tasks, "")
}

func (h *TaskHandler) Create(c *gin.Context) {
	projectID := c.Param("id")
	if !h.requireMember(c, projectID) {
		return
	}
	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description"`
		Status      string  `json:"status"`
		Position    int     `json:"position"`
		AssigneeID  *string `json:"assigneeId"`
	}
	if err := c.BindJSON(&req); err != nil {
		standardResponse(c, http.StatusBadRequest, "error", nil, "invalid task payload")
		return
	}
	if req.Status == "" {
		req.Status = "todo"
	}

	task, err := h.store.CreateTask(c.Request.Context(), projectID, req.Title, req.Description, req.Status, req.Position, req.AssigneeID)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to create task")
		return
	}

	h.notifier.TaskCreated(projectID, task)
	standardResponse(c, http.StatusCreated, "created", task, "")
}

func (h *TaskHandler) Update(c *gin.Context) {
	task, ok := h.memberTask(c)
	if !ok {
		return
	}
	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description"`
		AssigneeID  *string `json:"assigneeId"`
	}
	if err := c.BindJSON(&req); err != nil {
		standardResponse(c, http.StatusBadRequest, "error", nil, "invalid task payload")
		return
	}

	updated, err := h.store.UpdateTask(c.Request.Context(), task.ID, req.Title, req.Description, req.AssigneeID)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to update task")
		return
	}

	h.notifier.TaskUpdated(updated.ProjectID, updated)
	standardResponse(c, http.StatusOK, "ok", updated, "")
}

func (h *TaskHandler) Move(c *gin.Context) {
	task, ok := h.memberTask(c)
	if !ok {
		return
	}
	var req struct {
		Status   string `json:"status" binding:"required"`
		Position int    `json:"position"`
	}
	if err := c.BindJSON(&req); err != nil {
		standardResponse(c, http.StatusBadRequest, "error", nil, "invalid move payload")
		return
	}

	moved, err := h.store.MoveTask(c.Request.Context(), task.ID, req.Status, req.Position)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to move task")
		return
	}

	h.notifier.TaskMoved(moved.ProjectID, moved)
	standardResponse(c, http.StatusOK, "ok", moved, "")
}

func (h *TaskHandler) Delete(c *gin.Context) {
	task, ok := h.memberTask(c)
	if !ok {
		return
	}
	if err := h.store.DeleteTask(c.Request.Context(), task.ID); err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to delete task")
		return
	}

	h.notifier.TaskDeleted(task.ProjectID, task)
	standardResponse(c, http.StatusOK, "deleted", nil, "")
}

func (h *TaskHandler) requireMember(c *gin.Context, projectID string) bool {
	isMember, err := h.store.IsMember(c.Request.Context(), projectID, identityFrom(c).ID)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to check membership")
		return false
	}
	if !isMember {
		standardResponse(c, http.StatusForbidden, "error", nil, "not a project member")
		return false
	}
	return true
}

// memberTask loads the task from the :id parameter and enforces membership
// of its project.
func (h *TaskHandler) memberTask(c *gin.Context) (*store.Task, bool) {
	task, err := h.store.GetTask(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		standardResponse(c, http.StatusNotFound, "error", nil, "task not found")
		return nil, false
	}
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to load task")
		return nil, false
	}
	if !h.requireMember(c, task.ProjectID) {
		return nil, false
	}
	return task, true
}
