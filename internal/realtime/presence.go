package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
)

// Presence and ephemeral-state handlers. Every signal is scoped to a project
// room, excludes its sender, and leaves no server-side state behind.

func (r *EventRouter) registerPresenceHandlers() {
	r.Register(EventJoinRoom, r.handleJoinRoom)
	r.Register(EventLeaveRoom, r.handleLeaveRoom)
	r.Register(EventStartEdit, r.relay(EventUserEditing, "taskId"))
	r.Register(EventStopEdit, r.relay(EventUserStoppedEditing, "taskId"))
	r.Register(EventDrag, r.relay(EventTaskBeingDragged, "taskId", "position"))
	r.Register(EventDragEnd, r.relay(EventDragEnded, "taskId"))
	r.Register(EventTyping, r.relay(EventUserTyping, "taskId"))
	r.Register(EventStopTyping, r.relay(EventUserStoppedTyping, "taskId"))
	r.Register(EventCursorMove, r.relay(EventCursorUpdated, "position"))
	r.Register(EventSendNotification, r.handleSendNotification)
}

func (r *EventRouter) handleJoinRoom(_ context.Context, sess *state.Session, payload gjson.Result) {
	projectID := payload.Get("projectId").String()
	if projectID == "" {
		r.logger.Warn("join-room without projectId", slog.String("sessionID", sess.ID.String()))
		return
	}
	roomName := ProjectRoom(projectID)
	if err := r.state.Join(sess.ID, roomName); err != nil {
		r.logger.Warn("Failed to join room",
			slog.String("sessionID", sess.ID.String()),
			slog.String("room", roomName),
			slog.Any("error", err),
		)
		return
	}
	r.broadcaster.ToRoom(roomName, stamped(ServerMessage{
		Event:   EventUserJoined,
		Actor:   &sess.Identity,
		Payload: rawPayload(payload),
	}), sess.ID)

	// The joiner gets the current presence snapshot directly; only peers get
	// the join announcement.
	if raw, err := json.Marshal(stamped(ServerMessage{
		Event:   EventRoomMembers,
		Payload: r.state.RoomMembers(roomName),
	})); err == nil {
		sess.Transport.Send(raw)
	}
}

func (r *EventRouter) handleLeaveRoom(_ context.Context, sess *state.Session, payload gjson.Result) {
	projectID := payload.Get("projectId").String()
	if projectID == "" {
		r.logger.Warn("leave-room without projectId", slog.String("sessionID", sess.ID.String()))
		return
	}
	roomName := ProjectRoom(projectID)
	if !r.state.InRoom(sess.ID, roomName) {
		// Not a member; nothing to announce.
		r.logger.Debug("leave-room for a room the sender never joined",
			slog.String("sessionID", sess.ID.String()),
			slog.String("room", roomName),
		)
		return
	}
	if err := r.state.Leave(sess.ID, roomName); err != nil {
		r.logger.Warn("Failed to leave room",
			slog.String("sessionID", sess.ID.String()),
			slog.String("room", roomName),
			slog.Any("error", err),
		)
		return
	}
	r.broadcaster.ToRoom(roomName, stamped(ServerMessage{
		Event:   EventUserLeft,
		Actor:   &sess.Identity,
		Payload: rawPayload(payload),
	}), sess.ID)
}

// relay builds a handler that validates the room target and the required
// payload fields, then rebroadcasts the payload to the sender's room peers
// under the outbound event name.
func (r *EventRouter) relay(outEvent string, requiredFields ...string) HandlerFunc {
	return func(_ context.Context, sess *state.Session, payload gjson.Result) {
		projectID := payload.Get("projectId").String()
		if projectID == "" {
			r.logger.Warn("Signal without projectId",
				slog.String("event", outEvent),
				slog.String("sessionID", sess.ID.String()),
			)
			return
		}
		for _, field := range requiredFields {
			if !payload.Get(field).Exists() {
				r.logger.Warn("Signal missing required field",
					slog.String("event", outEvent),
					slog.String("field", field),
					slog.String("sessionID", sess.ID.String()),
				)
				return
			}
		}
		roomName := ProjectRoom(projectID)
		if !r.state.InRoom(sess.ID, roomName) {
			// Room target invalid: dropped from a broadcast perspective.
			r.logger.Debug("Dropping signal for unjoined room",
				slog.String("event", outEvent),
				slog.String("sessionID", sess.ID.String()),
				slog.String("room", roomName),
			)
			return
		}
		r.broadcaster.ToRoom(roomName, ServerMessage{
			Event:   outEvent,
			Actor:   &sess.Identity,
			Payload: rawPayload(payload),
		}, sess.ID)
	}
}

func (r *EventRouter) handleSendNotification(_ context.Context, sess *state.Session, payload gjson.Result) {
	userID := payload.Get("userId").String()
	if userID == "" {
		r.logger.Warn("send-notification without userId", slog.String("sessionID", sess.ID.String()))
		return
	}
	notification := payload.Get("notification")
	if !notification.Exists() {
		r.logger.Warn("send-notification without notification body", slog.String("sessionID", sess.ID.String()))
		return
	}
	r.broadcaster.ToUser(userID, stamped(ServerMessage{
		Event:   EventNotificationReceived,
		Actor:   &sess.Identity,
		Payload: json.RawMessage(notification.Raw),
	}))
}

// rawPayload relays the inbound payload bytes untouched.
func rawPayload(payload gjson.Result) any {
	if !payload.Exists() {
		return nil
	}
	return json.RawMessage(payload.Raw)
}
