package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/realtime"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/store"
)

// ProjectHandler handles project CRUD and membership management.
type ProjectHandler struct {
	store    *store.Store
	notifier *realtime.Notifier
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.store.ListProjectsForUser(c.Request.Context(), identityFrom(c).ID)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to list projects")
		return
	}
	standardResponse(c, http.StatusOK, "ok", projects, "")
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.BindJSON(&req); err != nil {
		standardResponse(c, http.StatusBadRequest, "error", nil, "invalid project payload")
		return
	}

	project, err := h.store.CreateProject(c.Request.Context(), identityFrom(c).ID, req.Name, req.Description)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to create project")
		return
	}
	standardResponse(c, http.StatusCreated, "created", project, "")
}

func (h *ProjectHandler) Get(c *gin.Context) {
	project, ok := h.memberProject(c)
	if !ok {
		return
	}
	standardResponse(c, http.StatusOK, "ok", project, "")
}

func (h *ProjectHandler) Update(c *gin.Context) {
	if _, ok := h.memberProject(c); !ok {
		return
	}
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.BindJSON(&req); err != nil {
		standardResponse(c, http.StatusBadRequest, "error", nil, "invalid project payload")
		return
	}

	project, err := h.store.UpdateProject(c.Request.Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to update project")
		return
	}

	h.notifier.ProjectUpdated(project.ID, project)
	standardResponse(c, http.StatusOK, "ok", project, "")
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	project, ok := h.memberProject(c)
	if !ok {
		return
	}
	if project.OwnerID != identityFrom(c).ID {
		standardResponse(c, http.StatusForbidden, "error", nil, "only the owner may delete a project")
		return
	}
	if err := h.store.DeleteProject(c.Request.Context(), project.ID); err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to delete project")
		return
	}

	h.notifier.ProjectDeleted(project.ID, project)
	standardResponse(c, http.StatusOK, "deleted", nil, "")
}

func (h *ProjectHandler) AddMember(c *gin.Context) {
	project, ok := h.memberProject(c)
	if !ok {
		return
	}
	var req struct {
		UserID string `json:"userId" binding:"required"`
		Role   string `json:"role"`
	}
	if err := c.BindJSON(&req); err != nil {
		standardResponse(c, http.StatusBadRequest, "error", nil, "invalid member payload")
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}

	member, err := h.store.AddMember(c.Request.Context(), project.ID, req.UserID, req.Role)
	if errors.Is(err, store.ErrDuplicate) {
		standardResponse(c, http.StatusConflict, "error", nil, "user is already a member")
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		standardResponse(c, http.StatusNotFound, "error", nil, "user not found")
		return
	}
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to add member")
		return
	}

	h.notifier.MemberAdded(project.ID, member)
	standardResponse(c, http.StatusCreated, "created", member, "")
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	project, ok := h.memberProject(c)
	if !ok {
		return
	}
	userID := c.Param("userId")
	if err := h.store.RemoveMember(c.Request.Context(), project.ID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			standardResponse(c, http.StatusNotFound, "error", nil, "member not found")
			return
		}
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to remove member")
		return
	}

	h.notifier.MemberRemoved(project.ID, gin.H{"projectId": project.ID, "userId": userID})
	standardResponse(c, http.StatusOK, "removed", nil, "")
}

// memberProject loads the project from the :id parameter and enforces that
// the caller is a member. Writes the error response itself on failure.
func (h *ProjectHandler) memberProject(c *gin.Context) (*store.Project, bool) {
	project, err := h.store.GetProject(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		standardResponse(c, http.StatusNotFound, "error", nil, "project not found")
		return nil, false
	}
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to load project")
		return nil, false
	}

	isMember, err := h.store.IsMember(c.Request.Context(), project.ID, identityFrom(c).ID)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to check membership")
		return nil, false
	}
	if !isMember {
		standardResponse(c, http.StatusForbidden, "error", nil, "not a project member")
		return nil, false
	}
	return project, true
}
