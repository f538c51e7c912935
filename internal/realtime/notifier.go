package realtime

import (
	"log/slog"

	"github.com/google/uuid"
)

// Notifier is the one-way door the CRUD layer walks through after a
// persisted mutation has committed. Each call performs exactly one
// best-effort broadcast of the opaque committed entity and returns without
// waiting for receivers; the HTTP response to the original caller remains
// the source of truth.
type Notifier struct {
	logger      *slog.Logger
	broadcaster *Broadcaster
}

func NewNotifier(logger *slog.Logger, broadcaster *Broadcaster) *Notifier {
	return &Notifier{
		logger:      logger.With(slog.String("component", "change_notifier")),
		broadcaster: broadcaster,
	}
}

func (n *Notifier) TaskCreated(projectID string, task any) {
	n.toProject(projectID, EventTaskCreated, task)
}

func (n *Notifier) TaskUpdated(projectID string, task any) {
	n.toProject(projectID, EventTaskUpdated, task)
}

func (n *Notifier) TaskMoved(projectID string, task any) {
	n.toProject(projectID, EventTaskMoved, task)
}

func (n *Notifier) TaskDeleted(projectID string, task any) {
	n.toProject(projectID, EventTaskDeleted, task)
}

func (n *Notifier) ProjectUpdated(projectID string, project any) {
	n.toProject(projectID, EventProjectUpdated, project)
}

func (n *Notifier) ProjectDeleted(projectID string, project any) {
	n.toProject(projectID, EventProjectDeleted, project)
}

func (n *Notifier) MemberAdded(projectID string, member any) {
	n.toProject(projectID, EventMemberAdded, member)
}

func (n *Notifier) MemberRemoved(projectID string, member any) {
	n.toProject(projectID, EventMemberRemoved, member)
}

func (n *Notifier) InvitationResponded(projectID string, invitation any) {
	n.toProject(projectID, EventInvitationResponded, invitation)
}

// NotifyUser pushes a persisted notification to every live session of one
// user, via their direct-notification room.
func (n *Notifier) NotifyUser(userID string, notification any) {
	delivered := n.broadcaster.ToUser(userID, stamped(ServerMessage{
		Event:   EventNotificationReceived,
		Payload: notification,
	}))
	n.logger.Debug("User notification pushed",
		slog.String("userID", userID),
		slog.Int("sessions", delivered),
	)
}

func (n *Notifier) toProject(projectID, event string, payload any) {
	delivered := n.broadcaster.ToRoom(ProjectRoom(projectID), ServerMessage{
		Event:   event,
		Payload: payload,
	}, uuid.Nil)
	n.logger.Debug("Durable change broadcast",
		slog.String("projectID", projectID),
		slog.String("event", event),
		slog.Int("peers", delivered),
	)
}
