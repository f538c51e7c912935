package realtime

import (
	"time"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
)

// Inbound event names (client -> server). Each payload carries the room key
// (projectId or userId) plus the fields listed next to it.
const (
	EventJoinRoom         = "join-room"          // projectId
	EventLeaveRoom        = "leave-room"         // projectId
	EventStartEdit        = "start-edit"         // projectId, taskId
	EventStopEdit         = "stop-edit"          // projectId, taskId
	EventDrag             = "drag"               // projectId, taskId, position
	EventDragEnd          = "drag-end"           // projectId, taskId
	EventTyping           = "typing"             // projectId, taskId
	EventStopTyping       = "stop-typing"        // projectId, taskId
	EventCursorMove       = "cursor-move"        // projectId, position
	EventSendNotification = "send-notification"  // userId, notification
)

// Outbound ephemeral event names (server -> room peers). These are
// fire-and-forget: the server keeps no record of who is editing or typing.
// A client that saw an indicator and receives no refresh or stop signal for
// 10 seconds must discard it; the server synthesizes terminal stop signals
// only on disconnect.
const (
	EventRoomMembers          = "room-members"
	EventUserJoined           = "user-joined"
	EventUserLeft             = "user-left"
	EventUserEditing          = "user-editing"
	EventUserStoppedEditing   = "user-stopped-editing"
	EventTaskBeingDragged     = "task-being-dragged"
	EventDragEnded            = "drag-ended"
	EventUserTyping           = "user-typing"
	EventUserStoppedTyping    = "user-stopped-typing"
	EventCursorUpdated        = "cursor-updated"
	EventNotificationReceived = "notification-received"
)

// Outbound durable-change event names, broadcast after the CRUD layer has
// committed. Payloads carry the full updated entity.
const (
	EventTaskCreated         = "task-created"
	EventTaskUpdated         = "task-updated"
	EventTaskMoved           = "task-moved"
	EventTaskDeleted         = "task-deleted"
	EventProjectUpdated      = "project-updated"
	EventProjectDeleted      = "project-deleted"
	EventMemberAdded         = "member-added"
	EventMemberRemoved       = "member-removed"
	EventInvitationResponded = "invitation-responded"
)

// ServerMessage is the outbound wire envelope. Actor is the public identity
// fragment of the originating user; it is nil on durable-change events,
// whose payload is the committed entity itself. TS is set on point-in-time
// events (join, leave, notifications).
type ServerMessage struct {
	Event   string          `json:"event"`
	Actor   *state.Identity `json:"actor,omitempty"`
	Payload any             `json:"payload,omitempty"`
	TS      *time.Time      `json:"ts,omitempty"`
}

// stamped marks a message as a point-in-time occurrence.
func stamped(msg ServerMessage) ServerMessage {
	now := time.Now().UTC()
	msg.TS = &now
	return msg
}

// ProjectRoom derives the collaboration room name for a project. The ids are
// the persistence layer's ids, so names are stable and collision-free.
func ProjectRoom(projectID string) string {
	return "project-" + projectID
}

// UserRoom derives the direct-notification room name for a user. Every
// session auto-joins its own user room at admission.
func UserRoom(userID string) string {
	return "user-" + userID
}
