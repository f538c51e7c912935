package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/realtime"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/store"
)

// InvitationHandler handles inviting users to projects and recording their
// response. Both sides of the flow push realtime notifications: the invitee
// hears about the invitation, the project room hears about the response.
type InvitationHandler struct {
	store    *store.Store
	notifier *realtime.Notifier
}

func (h *InvitationHandler) Create(c *gin.Context) {
	projectID := c.Param("id")
	caller := identityFrom(c)

	isMember, err := h.store.IsMember(c.Request.Context(), projectID, caller.ID)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to check membership")
		return
	}
	if !isMember {
		standardResponse(c, http.StatusForbidden, "error", nil, "not a project member")
		return
	}

	var req struct {
		InviteeID string `json:"inviteeId" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		standardResponse(c, http.StatusBadRequest, "error", nil, "invalid invitation payload")
		return
	}
	if _, err := h.store.GetUser(c.Request.Context(), req.InviteeID); err != nil {
		standardResponse(c, http.StatusNotFound, "error", nil, "invitee not found")
		return
	}

	inv, err := h.store.CreateInvitation(c.Request.Context(), projectID, caller.ID, req.InviteeID)
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to create invitation")
		return
	}

	// Persist the notification, then push it to the invitee's live sessions.
	notification, err := h.store.CreateNotification(c.Request.Context(), req.InviteeID, "invitation", inv)
	if err == nil {
		h.notifier.NotifyUser(req.InviteeID, notification)
	}
	standardResponse(c, http.StatusCreated, "created", inv, "")
}

func (h *InvitationHandler) Respond(c *gin.Context) {
	caller := identityFrom(c)

	inv, err := h.store.GetInvitation(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		standardResponse(c, http.StatusNotFound, "error", nil, "invitation not found")
		return
	}
	if err != nil {
		standardResponse(c, http.StatusInternalServerError, "error", nil, "failed to load invitation")
		return
	}
	if inv.InviteeID != caller.ID {
		standardResponse(c, http.StatusForbidden, "error", nil, "not your invitation")
		return
	}

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := c.BindJSON(&req); err != nil {
		standardResponse(c, http.StatusBadRequest, "error", nil, "invalid response payload")
		return
	}

	responded, err := h.store.RespondInvitation(c.Request.Context(), inv.ID, req.Accept)
	if err != nil {
		standardResponse(c, http.StatusConflict, "error", nil, "invitation already responded")
		return
	}

	h.notifier.InvitationResponded(responded.ProjectID, responded)
	if req.Accept {
		if member, err := h.store.GetMember(c.Request.Context(), responded.ProjectID, caller.ID); err == nil {
			h.notifier.MemberAdded(responded.ProjectID, member)
		}
	}

	// Tell the inviter how it went.
	notification, err := h.store.CreateNotification(c.Request.Context(), responded.InviterID, "invitation-response", responded)
	if err == nil {
		h.notifier.NotifyUser(responded.InviterID, notification)
	}
	standardResponse(c, http.StatusOK, "ok", responded, "")
}
